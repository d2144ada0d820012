package engine

import (
	"math"

	"github.com/shaiso/Pathway/internal/domain"
)

// EvaluateCondition вычисляет примитивное условие над плоским набором ответов.
//
// Отсутствующий ответ отличается от nil: eq с отсутствующим полем ложно
// даже при литерале null. Нераспознанное условие всегда истинно.
// Числовые сравнения с NaN ложны.
func EvaluateCondition(cond domain.Condition, answers domain.Answers) bool {
	value, present := answers.Lookup(cond.Field)

	switch cond.Op {
	case domain.OpEq:
		return present && Equal(value, cond.Value)

	case domain.OpNe:
		return !(present && Equal(value, cond.Value))

	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		return compare(cond.Op, answerNumber(value, present), ToNumber(cond.Value))

	case domain.OpIn:
		if !present {
			return false
		}
		for _, candidate := range cond.Values {
			if Equal(value, candidate) {
				return true
			}
		}
		return false

	case domain.OpTruthy:
		return present && Truthy(value)

	case domain.OpFalsy:
		return !(present && Truthy(value))

	default:
		return true
	}
}

func answerNumber(value any, present bool) float64 {
	if !present {
		return math.NaN()
	}
	return ToNumber(value)
}

func compare(op domain.Operator, a, b float64) bool {
	switch op {
	case domain.OpGt:
		return a > b
	case domain.OpGte:
		return a >= b
	case domain.OpLt:
		return a < b
	case domain.OpLte:
		return a <= b
	}
	return false
}
