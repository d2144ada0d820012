package engine

import (
	"math"

	"github.com/shaiso/Pathway/internal/domain"
)

// Имена вложенных ответов поля типа bmi.
const (
	BMIHeightFeetField   = "height_ft"
	BMIHeightInchesField = "height_in"
	BMIWeightField       = "weight"
)

const (
	metersPerInch = 0.0254
	kgPerPound    = 0.453592
)

// BMI рассчитанный индекс массы тела.
type BMI struct {
	Value    float64 `json:"bmi"`
	Category string  `json:"category"`
}

// ComputeBMI рассчитывает индекс по росту в футах и дюймах и весу в фунтах.
// Дюймы необязательны. Возвращает false, если рост или вес не положительны.
func ComputeBMI(answers domain.Answers) (BMI, bool) {
	feet := answerNumber(answers.Lookup(BMIHeightFeetField))
	weight := answerNumber(answers.Lookup(BMIWeightField))
	inches := 0.0
	if v, ok := answers.Lookup(BMIHeightInchesField); ok {
		if n := ToNumber(v); !math.IsNaN(n) {
			inches = n
		}
	}

	if !(feet > 0) || !(weight > 0) {
		return BMI{}, false
	}

	meters := (feet*12 + inches) * metersPerInch
	if !(meters > 0) {
		return BMI{}, false
	}
	kg := weight * kgPerPound
	value := kg / (meters * meters)

	return BMI{
		Value:    math.Round(value*10) / 10,
		Category: bmiCategory(value),
	}, true
}

func bmiCategory(v float64) string {
	switch {
	case v < 18.5:
		return "Underweight"
	case v < 25:
		return "Normal Range"
	case v < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}
