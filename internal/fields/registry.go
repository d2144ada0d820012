package fields

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Pathway/internal/domain"
)

// Registry реестр типов полей.
//
// Позволяет регистрировать и получать реализации Kind по типу.
// Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	kinds map[domain.FieldType]Kind
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[domain.FieldType]Kind),
	}
}

// DefaultRegistry создаёт реестр со всеми стандартными типами полей.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewTextKind(domain.FieldTypeText))
	r.Register(NewTextKind(domain.FieldTypeTextarea))
	r.Register(NewNumberKind())
	r.Register(NewChoiceKind(domain.FieldTypeSelect))
	r.Register(NewChoiceKind(domain.FieldTypeRadio))
	r.Register(NewCheckboxKind())
	r.Register(NewDateKind())
	r.Register(NewBMIKind())

	return r
}

// Register регистрирует тип поля.
// Если тип уже существует, он будет перезаписан.
func (r *Registry) Register(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind.Type()] = kind
}

// Get возвращает реализацию по типу поля.
// Возвращает ErrKindNotFound, если тип не зарегистрирован.
func (r *Registry) Get(fieldType domain.FieldType) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kind, exists := r.kinds[fieldType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrKindNotFound, fieldType)
	}

	return kind, nil
}

// Has проверяет, зарегистрирован ли тип.
func (r *Registry) Has(fieldType domain.FieldType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.kinds[fieldType]
	return exists
}

// Types возвращает список зарегистрированных типов.
func (r *Registry) Types() []domain.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.FieldType, 0, len(r.kinds))
	for t := range r.kinds {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Count возвращает количество зарегистрированных типов.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.kinds)
}

// Unregister удаляет тип из реестра.
func (r *Registry) Unregister(fieldType domain.FieldType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.kinds, fieldType)
}

// NormalizeAnswers приводит ответы шага к каноническому виду.
//
// Обрабатываются только перечисленные поля; ключи, не относящиеся ни
// к одному полю, отбрасываются. Ошибки возвращаются по имени поля,
// остальные значения всё равно нормализуются.
func (r *Registry) NormalizeAnswers(fields []domain.Field, raw map[string]any) (map[string]any, map[string]string) {
	out := make(map[string]any)
	errs := make(map[string]string)

	for i := range fields {
		f := &fields[i]

		kind, err := r.Get(f.Type)
		if err != nil {
			errs[f.Name] = err.Error()
			continue
		}

		if comp, ok := kind.(Composite); ok {
			inputs := make(map[string]any)
			for _, name := range comp.Inputs() {
				if v, present := raw[name]; present {
					inputs[name] = v
				}
			}
			if len(inputs) == 0 {
				continue
			}
			expanded, err := comp.Expand(f, inputs)
			if err != nil {
				errs[f.Name] = err.Error()
				continue
			}
			for k, v := range expanded {
				out[k] = v
			}
			continue
		}

		value, present := raw[f.Name]
		if !present {
			continue
		}
		normalized, err := kind.Normalize(f, value)
		if err != nil {
			errs[f.Name] = err.Error()
			continue
		}
		out[f.Name] = normalized
	}

	return out, errs
}

// AnswerKeys возвращает ключи ответов, которые занимает поле:
// имя поля и, для составных типов, имена вложенных ответов.
func (r *Registry) AnswerKeys(field *domain.Field) []string {
	keys := []string{field.Name}
	kind, err := r.Get(field.Type)
	if err != nil {
		return keys
	}
	if comp, ok := kind.(Composite); ok {
		keys = append(keys, comp.Inputs()...)
	}
	return keys
}
