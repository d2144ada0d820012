package fields

import (
	"fmt"
	"strconv"

	"github.com/shaiso/Pathway/internal/domain"
)

// ChoiceKind поле с выбором одного варианта (select, radio).
type ChoiceKind struct {
	typ domain.FieldType
}

// NewChoiceKind создаёт тип выбора для select или radio.
func NewChoiceKind(typ domain.FieldType) *ChoiceKind {
	return &ChoiceKind{typ: typ}
}

// Type возвращает тип поля.
func (k *ChoiceKind) Type() domain.FieldType {
	return k.typ
}

// Normalize проверяет, что значение входит в варианты поля.
func (k *ChoiceKind) Normalize(field *domain.Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := optionString(value)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects an option, got %T", ErrInvalidValue, field.Name, value)
	}
	if s == "" {
		return nil, nil
	}
	if len(field.Options) > 0 && !field.HasOption(s) {
		return nil, fmt.Errorf("%w: %s has no option %q", ErrInvalidValue, field.Name, s)
	}
	return s, nil
}

// CheckboxKind флажок или группа флажков.
//
// Без вариантов поле хранит bool. С вариантами хранит список
// выбранных значений в порядке первого выбора.
type CheckboxKind struct{}

// NewCheckboxKind создаёт тип checkbox.
func NewCheckboxKind() *CheckboxKind {
	return &CheckboxKind{}
}

// Type возвращает тип поля.
func (k *CheckboxKind) Type() domain.FieldType {
	return domain.FieldTypeCheckbox
}

// Normalize приводит значение к bool или к списку вариантов.
func (k *CheckboxKind) Normalize(field *domain.Field, value any) (any, error) {
	if field.IsMultiChoice() {
		return k.normalizeMulti(field, value)
	}

	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case string:
		switch v {
		case "true", "on", "yes", "1":
			return true, nil
		case "false", "off", "no", "0", "":
			return false, nil
		}
	}
	return nil, fmt.Errorf("%w: %s expects true or false, got %v", ErrInvalidValue, field.Name, value)
}

func (k *CheckboxKind) normalizeMulti(field *domain.Field, value any) (any, error) {
	var items []any
	switch v := value.(type) {
	case nil:
		return []any{}, nil
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		items = []any{v}
	}

	selected := make([]any, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		s, ok := optionString(item)
		if !ok || !field.HasOption(s) {
			return nil, fmt.Errorf("%w: %s has no option %v", ErrInvalidValue, field.Name, item)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		selected = append(selected, s)
	}
	return selected, nil
}

func optionString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}
