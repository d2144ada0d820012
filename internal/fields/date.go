package fields

import (
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/Pathway/internal/domain"
)

// dateLayouts принимаемые форматы даты.
var dateLayouts = []string{time.DateOnly, time.RFC3339, "01/02/2006"}

// DateKind поле даты. Хранится строкой в формате YYYY-MM-DD.
type DateKind struct{}

// NewDateKind создаёт тип даты.
func NewDateKind() *DateKind {
	return &DateKind{}
}

// Type возвращает тип поля.
func (k *DateKind) Type() domain.FieldType {
	return domain.FieldTypeDate
}

// Normalize разбирает дату и возвращает её в формате YYYY-MM-DD.
func (k *DateKind) Normalize(field *domain.Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a date string, got %T", ErrInvalidValue, field.Name, value)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}
	return nil, fmt.Errorf("%w: %s has unparseable date %q", ErrInvalidValue, field.Name, s)
}
