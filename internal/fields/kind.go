package fields

import (
	"errors"

	"github.com/shaiso/Pathway/internal/domain"
)

// Ошибки полей.
var (
	// ErrKindNotFound: тип поля не найден в реестре.
	ErrKindNotFound = errors.New("field kind not found")

	// ErrInvalidValue: значение не подходит для типа поля.
	ErrInvalidValue = errors.New("invalid field value")
)

// Kind интерфейс для типов полей.
//
// Каждый тип поля (text, number, select, ...) знает, как привести
// присланное значение к каноническому виду, в котором оно хранится
// в сессии и участвует в условиях.
type Kind interface {
	// Type возвращает тип поля.
	Type() domain.FieldType

	// Normalize приводит значение к каноническому виду.
	// nil означает "ответ очищен".
	Normalize(field *domain.Field, value any) (any, error)
}

// Composite тип поля, который собирается из нескольких ответов шага.
type Composite interface {
	Kind

	// Inputs возвращает имена вложенных ответов.
	Inputs() []string

	// Expand нормализует вложенные ответы и добавляет вычисленное
	// значение под именем поля.
	Expand(field *domain.Field, inputs map[string]any) (map[string]any, error)
}
