package engine

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Truthy сообщает, считается ли значение ответа истинным.
//
// Ложны: nil, false, 0, NaN и пустая строка. Всё остальное истинно,
// включая пустые списки и пустые объекты.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := numeric(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// ToNumber приводит присутствующее значение ответа к числу.
//
// Правила приведения:
//
//	nil              → 0
//	bool             → 1 / 0
//	число            → само число
//	строка           → число после обрезки пробелов; "" → 0;
//	                   допускаются 0x/0o/0b и Infinity; иначе NaN
//	пустой список    → 0
//	список из одного → число из строкового вида элемента
//	остальное        → NaN
//
// Отсутствующий ответ в вызывающем коде приводится к NaN.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return stringToNumber(x)
	}
	if f, ok := numeric(v); ok {
		return f
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		switch rv.Len() {
		case 0:
			return 0
		case 1:
			return stringToNumber(valueString(rv.Index(0).Interface()))
		}
	}
	return math.NaN()
}

// Equal сравнивает два значения ответа.
//
// Числа сравниваются по значению независимо от Go-типа, поэтому 5 из
// JSON (float64) равно int(5) из кода. Списки и объекты сравниваются
// структурно. Строки с числами не приводятся: "5" не равно 5.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if fa, ok := numeric(a); ok {
		fb, ok := numeric(b)
		return ok && fa == fb
	}

	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isList(ra) && isList(rb) {
		if ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !Equal(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	if isStringMap(ra) && isStringMap(rb) {
		if ra.Len() != rb.Len() {
			return false
		}
		iter := ra.MapRange()
		for iter.Next() {
			key := reflect.ValueOf(iter.Key().String()).Convert(rb.Type().Key())
			other := rb.MapIndex(key)
			if !other.IsValid() || !Equal(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

func isList(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func isStringMap(v reflect.Value) bool {
	return v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// isNumberPadding пробельные символы, включая BOM, которые отбрасываются
// вокруг числа в строке.
func isNumberPadding(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func stringToNumber(s string) float64 {
	s = strings.TrimFunc(s, isNumberPadding)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			digits := s[2:]
			if digits[0] == '+' || digits[0] == '-' {
				return math.NaN()
			}
			n, ok := new(big.Int).SetString(digits, base)
			if !ok {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f
		}
	}

	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	// Переполнение даёт ±Inf вместе с ошибкой диапазона; значение верное.
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// valueString возвращает строковый вид значения, как его видит
// приведение одноэлементного списка к числу.
func valueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := numeric(v); ok {
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "Infinity"
		case math.IsInf(f, -1):
			return "-Infinity"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = valueString(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Map:
		return "[object Object]"
	}
	return "NaN"
}
