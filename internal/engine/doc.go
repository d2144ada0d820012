// Package engine содержит движок условной анкеты.
//
// Включает:
//   - value.go        правдивость, приведение к числу и равенство ответов
//   - condition.go    вычисление примитивных условий
//   - visibility.go   видимость полей и проверка обязательных ответов
//   - traversal.go    выбор следующего и предыдущего шага
//   - reachability.go статический анализ достижимости шагов
//   - parser.go       разбор и структурная валидация анкеты
//   - bmi.go          вычисление индекса массы тела
//
// Все функции чистые: они не изменяют анкету и ответы и могут
// вызываться конкурентно.
package engine
