package engine

import (
	"reflect"
	"strings"

	"github.com/shaiso/Pathway/internal/domain"
)

// EvaluateVisibility вычисляет составное выражение.
//
// nil означает "всегда истинно". При нескольких ключах срабатывает
// первый присутствующий в порядке any, all, not.
func EvaluateVisibility(expr *domain.Expression, answers domain.Answers) bool {
	if expr == nil {
		return true
	}

	switch {
	case expr.HasAny():
		for _, c := range expr.Any {
			if EvaluateCondition(c, answers) {
				return true
			}
		}
		return false

	case expr.HasAll():
		for _, c := range expr.All {
			if !EvaluateCondition(c, answers) {
				return false
			}
		}
		return true

	case expr.Not != nil:
		return !EvaluateVisibility(expr.Not, answers)
	}

	return true
}

// IsVisible сообщает, показывается ли поле при данных ответах.
func IsVisible(field *domain.Field, answers domain.Answers) bool {
	return EvaluateVisibility(field.Visibility, answers)
}

// VisibleFields возвращает имена видимых полей в порядке их объявления.
func VisibleFields(fields []domain.Field, answers domain.Answers) []string {
	names := make([]string, 0, len(fields))
	for i := range fields {
		if IsVisible(&fields[i], answers) {
			names = append(names, fields[i].Name)
		}
	}
	return names
}

// ValidationResult результат проверки обязательных полей.
type ValidationResult struct {
	Valid bool `json:"valid"`

	// Errors сообщение об ошибке по имени поля.
	Errors map[string]string `json:"errors,omitempty"`
}

// ValidateVisibleFields проверяет, что все видимые обязательные поля заполнены.
// Скрытые поля не проверяются, даже если помечены обязательными.
func ValidateVisibleFields(fields []domain.Field, answers domain.Answers) ValidationResult {
	errs := make(map[string]string)

	for i := range fields {
		f := &fields[i]
		if !f.Required || !IsVisible(f, answers) {
			continue
		}
		if !isAnswered(f, answers) {
			errs[f.Name] = requiredMessage(f)
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func requiredMessage(f *domain.Field) string {
	label := f.Label
	if label == "" {
		label = f.Name
	}
	return label + " is required"
}

func isAnswered(f *domain.Field, answers domain.Answers) bool {
	if f.Type == domain.FieldTypeBMI {
		_, ok := ComputeBMI(answers)
		return ok
	}

	value, present := answers.Lookup(f.Name)
	if !present || value == nil {
		return false
	}

	// Одиночный флажок считается отмеченным только при true.
	if f.Type == domain.FieldTypeCheckbox && !f.IsMultiChoice() {
		b, ok := value.(bool)
		return ok && b
	}

	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) != ""
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}
