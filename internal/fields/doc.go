// Package fields содержит типы полей анкеты.
//
// Каждый тип реализует интерфейс Kind и приводит присланные
// респондентом значения к каноническому виду:
//
//	text, textarea   строка
//	number           float64 (числовые строки принимаются)
//	select, radio    значение одного из вариантов
//	checkbox         bool, либо список значений при наличии вариантов
//	date             строка YYYY-MM-DD
//	bmi              составное поле: height_ft, height_in, weight
//	                 и рассчитанный {"bmi", "category"} под именем поля
//
// Registry выдаёт Kind по типу поля:
//
//	registry := fields.DefaultRegistry()
//	values, errs := registry.NormalizeAnswers(step.Fields, raw)
package fields
