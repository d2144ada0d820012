package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shaiso/Pathway/internal/domain"
)

// Parse разбирает JSON-документ анкеты и валидирует его.
func Parse(data []byte) (*domain.Questionnaire, error) {
	var q domain.Questionnaire
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := Validate(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Validate выполняет структурную валидацию анкеты.
//
// Проверяет:
// - Наличие шагов в первой группе (точка входа)
// - Идентификаторы групп и шагов
// - Ссылки групп на таблицу шагов (без повторов и сирот)
// - Поля каждого шага и синтаксис шаблонов в текстах
// - Цели правил перехода и FallbackNext
//
// Возвращает первую найденную ошибку.
func Validate(q *domain.Questionnaire) error {
	if _, ok := q.FirstStepID(); !ok {
		return ErrEmptyGroups
	}

	for _, key := range q.Steps.Keys() {
		step, _ := q.Steps.Get(key)
		if step.ID == "" {
			return NewValidationError(key, "id", "step has empty ID", ErrEmptyStepID)
		}
		if step.ID != key {
			return NewValidationError(key, "id",
				fmt.Sprintf("table key %q does not match step ID %q", key, step.ID), ErrStepIDMismatch)
		}
	}

	if err := validateGroups(q); err != nil {
		return err
	}

	for _, key := range q.Steps.Keys() {
		step, _ := q.Steps.Get(key)
		if err := ValidateStep(step, q); err != nil {
			return err
		}
	}

	return nil
}

func validateGroups(q *domain.Questionnaire) error {
	groupIDs := make(map[string]bool)
	placed := make(map[string]bool)

	for _, g := range q.Groups {
		if g.ID == "" {
			return NewValidationError("", "groups", "group has empty ID", ErrEmptyGroupID)
		}
		if groupIDs[g.ID] {
			return NewValidationError("", "groups",
				fmt.Sprintf("duplicate group ID: %s", g.ID), ErrDuplicateGroupID)
		}
		groupIDs[g.ID] = true

		for _, ref := range g.Steps {
			if !q.Steps.Has(ref.ID) {
				return NewValidationError(ref.ID, "groups",
					fmt.Sprintf("group %s references unknown step", g.ID), ErrUnknownStepRef)
			}
			if placed[ref.ID] {
				return NewValidationError(ref.ID, "groups",
					fmt.Sprintf("step referenced again in group %s", g.ID), ErrDuplicateStepRef)
			}
			placed[ref.ID] = true
		}
	}

	for _, key := range q.Steps.Keys() {
		if !placed[key] {
			return NewValidationError(key, "groups", "step is not placed in any group", ErrOrphanStep)
		}
	}

	return nil
}

// ValidateStep валидирует поля и переходы одного шага.
func ValidateStep(step *domain.Step, q *domain.Questionnaire) error {
	names := make(map[string]bool)
	for _, f := range step.Fields {
		if f.Name == "" {
			return NewValidationError(step.ID, "fields", "field has empty name", ErrEmptyFieldName)
		}
		if names[f.Name] {
			return NewValidationError(step.ID, "fields",
				fmt.Sprintf("duplicate field name: %s", f.Name), ErrDuplicateFieldName)
		}
		names[f.Name] = true

		if !f.Type.IsValid() {
			return NewValidationError(step.ID, "fields",
				fmt.Sprintf("field %s has unknown type: %s", f.Name, f.Type), ErrUnknownFieldType)
		}
		if (f.Type == domain.FieldTypeSelect || f.Type == domain.FieldTypeRadio) && len(f.Options) == 0 {
			return NewValidationError(step.ID, "fields",
				fmt.Sprintf("field %s has no options", f.Name), ErrMissingOptions)
		}
	}

	if err := CheckTemplates(step); errors.Is(err, ErrTemplateParse) {
		return NewValidationError(step.ID, "text", err.Error(), ErrTemplateParse)
	}

	for i, rule := range step.Traversal {
		if err := validateDestination(step.ID, fmt.Sprintf("traversal[%d].go", i), rule.Go, q); err != nil {
			return err
		}
	}

	if step.FallbackNext != nil {
		if err := validateDestination(step.ID, "fallbackNext", *step.FallbackNext, q); err != nil {
			return err
		}
	}

	return nil
}

func validateDestination(stepID, field string, dest domain.Destination, q *domain.Questionnaire) error {
	switch dest.Type {
	case domain.DestinationEnd:
		return nil

	case domain.DestinationStep:
		if dest.ID == "" {
			return NewValidationError(stepID, field, "step destination has empty ID", ErrMissingDestinationID)
		}
		if !q.Steps.Has(dest.ID) {
			return NewValidationError(stepID, field,
				fmt.Sprintf("destination step does not exist: %s", dest.ID), ErrUnknownDestination)
		}
		return nil

	case domain.DestinationGroup:
		if dest.ID == "" {
			return NewValidationError(stepID, field, "group destination has empty ID", ErrMissingDestinationID)
		}
		if _, ok := q.Group(dest.ID); !ok {
			return NewValidationError(stepID, field,
				fmt.Sprintf("destination group does not exist: %s", dest.ID), ErrUnknownDestination)
		}
		return nil

	default:
		return NewValidationError(stepID, field,
			fmt.Sprintf("unknown destination type: %q", dest.Type), ErrUnknownDestinationType)
	}
}

// LintReport объединяет результат валидации и анализа достижимости.
type LintReport struct {
	// Err ошибка структурной валидации, nil если анкета корректна.
	Err error

	// Reachability отчёт о достижимости шагов.
	Reachability Report
}

// OK возвращает true, если анкета валидна и все шаги достижимы.
func (r LintReport) OK() bool {
	return r.Err == nil && len(r.Reachability.Unreachable) == 0 && len(r.Reachability.Dangling) == 0
}

// Lint проверяет анкету целиком. Анализ достижимости выполняется
// даже для невалидной анкеты: он не требует корректных ссылок.
func Lint(q *domain.Questionnaire) LintReport {
	return LintReport{
		Err:          Validate(q),
		Reachability: Analyze(q),
	}
}
