package fields

import (
	"fmt"
	"strconv"

	"github.com/shaiso/Pathway/internal/domain"
)

// TextKind однострочное или многострочное текстовое поле.
type TextKind struct {
	typ domain.FieldType
}

// NewTextKind создаёт текстовый тип для text или textarea.
func NewTextKind(typ domain.FieldType) *TextKind {
	return &TextKind{typ: typ}
}

// Type возвращает тип поля.
func (k *TextKind) Type() domain.FieldType {
	return k.typ
}

// Normalize принимает строки как есть; числа и булевы значения
// переводит в строку.
func (k *TextKind) Normalize(field *domain.Field, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, fmt.Errorf("%w: %s expects text, got %T", ErrInvalidValue, field.Name, value)
	}
}
