package engine

import "errors"

// Ошибки структуры анкеты.
var (
	// ErrEmptyGroups: первая группа пуста или групп нет, анкету не с чего начать.
	ErrEmptyGroups = errors.New("questionnaire has no entry step: first group is empty")

	// ErrEmptyGroupID: группа без идентификатора.
	ErrEmptyGroupID = errors.New("group has empty ID")

	// ErrDuplicateGroupID: несколько групп с одинаковым идентификатором.
	ErrDuplicateGroupID = errors.New("duplicate group ID")

	// ErrEmptyStepID: шаг не имеет ID.
	ErrEmptyStepID = errors.New("step has empty ID")

	// ErrStepIDMismatch: ключ в таблице шагов не совпадает с ID шага.
	ErrStepIDMismatch = errors.New("step table key does not match step ID")

	// ErrUnknownStepRef: группа ссылается на шаг, которого нет в таблице.
	ErrUnknownStepRef = errors.New("group references unknown step")

	// ErrDuplicateStepRef: шаг упомянут в группах более одного раза.
	ErrDuplicateStepRef = errors.New("step referenced more than once")

	// ErrOrphanStep: шаг есть в таблице, но не входит ни в одну группу.
	ErrOrphanStep = errors.New("step is not placed in any group")
)

// Ошибки полей.
var (
	// ErrEmptyFieldName: поле без имени.
	ErrEmptyFieldName = errors.New("field has empty name")

	// ErrDuplicateFieldName: два поля шага с одинаковым именем.
	ErrDuplicateFieldName = errors.New("duplicate field name")

	// ErrUnknownFieldType: неизвестный тип поля.
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrMissingOptions: поле выбора без вариантов.
	ErrMissingOptions = errors.New("choice field has no options")
)

// Ошибки переходов.
var (
	// ErrUnknownDestinationType: неизвестный вид цели перехода.
	ErrUnknownDestinationType = errors.New("unknown destination type")

	// ErrMissingDestinationID: переход на шаг или группу без ID.
	ErrMissingDestinationID = errors.New("destination has empty ID")

	// ErrUnknownDestination: переход на несуществующий шаг или группу.
	ErrUnknownDestination = errors.New("destination does not exist")
)

// Ошибки подстановки ответов в тексты.
var (
	// ErrTemplateParse: текст шага содержит некорректный шаблон.
	ErrTemplateParse = errors.New("template parse failed")

	// ErrTemplateRender: шаблон не удалось выполнить.
	ErrTemplateRender = errors.New("template render failed")
)

// ErrInvalidDefinition: документ анкеты не является корректным JSON.
var ErrInvalidDefinition = errors.New("invalid questionnaire definition")

// ValidationError ошибка валидации с контекстом.
type ValidationError struct {
	StepID  string // ID шага, где произошла ошибка
	Field   string // поле документа, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.StepID != "" {
		return "step " + e.StepID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(stepID, field, message string, err error) *ValidationError {
	return &ValidationError{
		StepID:  stepID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
