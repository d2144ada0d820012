package fields

import (
	"fmt"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/engine"
)

// BMIKind составное поле роста и веса.
//
// Респондент вводит height_ft, height_in и weight; под именем поля
// сохраняется рассчитанный индекс:
//
//	{"bmi": 23.0, "category": "Normal Range"}
type BMIKind struct {
	number *NumberKind
}

// NewBMIKind создаёт тип bmi.
func NewBMIKind() *BMIKind {
	return &BMIKind{number: NewNumberKind()}
}

// Type возвращает тип поля.
func (k *BMIKind) Type() domain.FieldType {
	return domain.FieldTypeBMI
}

// Inputs возвращает имена вложенных ответов.
func (k *BMIKind) Inputs() []string {
	return []string{engine.BMIHeightFeetField, engine.BMIHeightInchesField, engine.BMIWeightField}
}

// Normalize принимает объект с вложенными ответами.
func (k *BMIKind) Normalize(field *domain.Field, value any) (any, error) {
	inputs, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects height and weight", ErrInvalidValue, field.Name)
	}
	expanded, err := k.Expand(field, inputs)
	if err != nil {
		return nil, err
	}
	return expanded[field.Name], nil
}

// Expand нормализует рост и вес и добавляет рассчитанный индекс.
// Пока данных недостаточно, индекс не сохраняется.
func (k *BMIKind) Expand(field *domain.Field, inputs map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(inputs)+1)
	for _, name := range k.Inputs() {
		v, present := inputs[name]
		if !present {
			continue
		}
		sub := domain.Field{Name: name, Type: domain.FieldTypeNumber}
		n, err := k.number.Normalize(&sub, v)
		if err != nil {
			return nil, err
		}
		if f, ok := n.(float64); ok && f < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, name)
		}
		out[name] = n
	}

	if bmi, ok := engine.ComputeBMI(domain.Answers(out)); ok {
		out[field.Name] = map[string]any{"bmi": bmi.Value, "category": bmi.Category}
	}
	return out, nil
}
