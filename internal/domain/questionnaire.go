package domain

import (
	"github.com/google/uuid"
)

// Questionnaire описывает анкету: группы задают порядок шагов,
// таблица шагов хранит их содержимое.
//
// Естественный порядок анкеты получается обходом групп по порядку
// и шагов внутри каждой группы. Правила перехода позволяют отклоняться
// от него.
type Questionnaire struct {
	// Groups упорядоченный список групп.
	Groups []Group `json:"groups"`

	// Steps таблица шагов по идентификатору.
	Steps StepTable `json:"steps"`
}

// Group объединяет шаги в раздел анкеты.
type Group struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Steps       []StepRef `json:"steps"`
}

// StepRef ссылается на шаг из таблицы.
type StepRef struct {
	ID string `json:"id"`
}

// Step описывает одну страницу анкеты.
type Step struct {
	// ID должен совпадать с ключом в таблице шагов.
	ID string `json:"id"`

	// Key ключ, под которым в сессии сохраняются ответы шага.
	// Пустой Key означает использование ID.
	Key string `json:"key,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Fields поля ввода в порядке отображения.
	Fields []Field `json:"fields"`

	// Traversal правила перехода, проверяются по порядку.
	Traversal []TraversalRule `json:"traversal,omitempty"`

	// FallbackNext переход, если ни одно правило не сработало.
	FallbackNext *Destination `json:"fallbackNext,omitempty"`
}

// AnswerKey возвращает ключ, под которым хранятся ответы шага.
func (s *Step) AnswerKey() string {
	if s.Key != "" {
		return s.Key
	}
	return s.ID
}

// Field возвращает поле шага по имени.
func (s *Step) Field(name string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// FieldType тип поля ввода.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeDate     FieldType = "date"

	// FieldTypeBMI составное поле: рост в футах и дюймах и вес в фунтах.
	FieldTypeBMI FieldType = "bmi"
)

// FieldTypes перечисляет все известные типы полей.
var FieldTypes = []FieldType{
	FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeSelect,
	FieldTypeCheckbox, FieldTypeRadio, FieldTypeDate, FieldTypeBMI,
}

// IsValid возвращает true для известного типа.
func (t FieldType) IsValid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Field описывает поле ввода.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`

	// Options варианты выбора для select, radio и checkbox-группы.
	Options  []Option `json:"options,omitempty"`
	HelpText string   `json:"helpText,omitempty"`

	// Visibility условие показа поля. nil означает "всегда видно".
	Visibility *Expression `json:"visibility,omitempty"`
}

// IsMultiChoice возвращает true для checkbox с вариантами:
// его ответ представляет собой список выбранных значений.
func (f *Field) IsMultiChoice() bool {
	return f.Type == FieldTypeCheckbox && len(f.Options) > 0
}

// HasOption возвращает true, если value входит в варианты поля.
func (f *Field) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Option вариант выбора.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TraversalRule условный переход.
type TraversalRule struct {
	When Expression  `json:"when"`
	Go   Destination `json:"go"`
}

// DestinationType вид цели перехода.
type DestinationType string

const (
	DestinationStep  DestinationType = "step"
	DestinationGroup DestinationType = "group"
	DestinationEnd   DestinationType = "end"
)

// IsValid возвращает true для известного вида цели.
func (t DestinationType) IsValid() bool {
	switch t {
	case DestinationStep, DestinationGroup, DestinationEnd:
		return true
	default:
		return false
	}
}

// Destination цель перехода.
type Destination struct {
	Type DestinationType `json:"type"`

	// ID идентификатор шага или группы. Для end не используется.
	ID string `json:"id,omitempty"`
}

// StepDestination возвращает переход на шаг.
func StepDestination(id string) Destination {
	return Destination{Type: DestinationStep, ID: id}
}

// GroupDestination возвращает переход на группу.
func GroupDestination(id string) Destination {
	return Destination{Type: DestinationGroup, ID: id}
}

// EndDestination возвращает завершение анкеты.
func EndDestination() Destination {
	return Destination{Type: DestinationEnd}
}

func (d Destination) IsEnd() bool   { return d.Type == DestinationEnd }
func (d Destination) IsStep() bool  { return d.Type == DestinationStep }
func (d Destination) IsGroup() bool { return d.Type == DestinationGroup }

// Answers плоский набор ответов: имя поля → значение.
type Answers map[string]any

// Lookup возвращает значение и признак присутствия.
func (a Answers) Lookup(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// Step возвращает шаг по идентификатору.
func (q *Questionnaire) Step(id string) (*Step, bool) {
	if q == nil {
		return nil, false
	}
	return q.Steps.Get(id)
}

// Group возвращает группу по идентификатору.
func (q *Questionnaire) Group(id string) (*Group, bool) {
	if q == nil {
		return nil, false
	}
	for i := range q.Groups {
		if q.Groups[i].ID == id {
			return &q.Groups[i], true
		}
	}
	return nil, false
}

// FirstStepID возвращает первый шаг первой группы, единственную точку
// входа в анкету. Если первая группа пуста, точки входа нет.
func (q *Questionnaire) FirstStepID() (string, bool) {
	if q == nil || len(q.Groups) == 0 || len(q.Groups[0].Steps) == 0 {
		return "", false
	}
	return q.Groups[0].Steps[0].ID, true
}

// StepIDs возвращает идентификаторы шагов в естественном порядке.
func (q *Questionnaire) StepIDs() []string {
	if q == nil {
		return nil
	}
	var ids []string
	for _, g := range q.Groups {
		for _, ref := range g.Steps {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// NewQuestionnaire возвращает стартовый шаблон для нового опросника:
// одна группа с приветственным шагом и обязательным полем имени.
func NewQuestionnaire() Questionnaire {
	const stepID = "welcome-step"
	welcome := Step{
		ID:          stepID,
		Key:         "welcome",
		Title:       "Welcome",
		Description: "Let's start with some basic information",
		Fields: []Field{
			{Name: "name", Label: "What's your name?", Type: FieldTypeText, Required: true},
		},
	}
	return Questionnaire{
		Groups: []Group{
			{
				ID:          "group-" + uuid.NewString()[:8],
				Title:       "Getting Started",
				Description: "Introduction and basic information",
				Steps:       []StepRef{{ID: stepID}},
			},
		},
		Steps: NewStepTable(welcome),
	}
}
