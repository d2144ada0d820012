package player

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Ошибки прохождения.
var (
	// ErrNotPublished: сессию можно начать только по опубликованному опроснику.
	ErrNotPublished = errors.New("assessment is not published")

	// ErrSessionFinished: сессия уже завершена или просрочена.
	ErrSessionFinished = errors.New("session is finished")

	// ErrBrokenReference: текущий шаг или цель перехода отсутствует в анкете.
	ErrBrokenReference = errors.New("broken step reference")

	// ErrStepIncomplete: не заполнены обязательные видимые поля.
	ErrStepIncomplete = errors.New("step is incomplete")

	// ErrInvalidAnswers: ответы не прошли нормализацию по типам полей.
	ErrInvalidAnswers = errors.New("invalid answers")

	// ErrAtFirstStep: перед текущим шагом нет предыдущего.
	ErrAtFirstStep = errors.New("already at the first step")
)

// FieldErrors ошибка с сообщениями по именам полей.
//
// Err указывает причину: ErrStepIncomplete или ErrInvalidAnswers.
type FieldErrors struct {
	Err    error
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return fmt.Sprintf("%v: %s", e.Err, strings.Join(parts, "; "))
}

func (e *FieldErrors) Unwrap() error {
	return e.Err
}
