package fields

import (
	"fmt"
	"math"
	"strings"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/engine"
)

// NumberKind числовое поле.
type NumberKind struct{}

// NewNumberKind создаёт числовой тип.
func NewNumberKind() *NumberKind {
	return &NumberKind{}
}

// Type возвращает тип поля.
func (k *NumberKind) Type() domain.FieldType {
	return domain.FieldTypeNumber
}

// Normalize приводит число или числовую строку к float64.
// Пустая строка очищает ответ.
func (k *NumberKind) Normalize(field *domain.Field, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return nil, fmt.Errorf("%w: %s expects a number, got bool", ErrInvalidValue, field.Name)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
	}

	n := engine.ToNumber(value)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%w: %s expects a number, got %v", ErrInvalidValue, field.Name, value)
	}
	return n, nil
}
