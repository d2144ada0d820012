package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StepTable хранит шаги по идентификатору и помнит порядок вставки.
//
// Порядок важен: отчёт о достижимости перечисляет недостижимые шаги
// в порядке таблицы, а JSON-представление сохраняет исходный порядок ключей.
type StepTable struct {
	order []string
	steps map[string]*Step
}

// NewStepTable создаёт таблицу из шагов, используя Step.ID как ключ.
func NewStepTable(steps ...Step) StepTable {
	var t StepTable
	for _, s := range steps {
		t.Put(s)
	}
	return t
}

// Put добавляет или заменяет шаг под ключом step.ID.
func (t *StepTable) Put(step Step) {
	t.PutAs(step.ID, step)
}

// PutAs добавляет шаг под произвольным ключом.
// Ключ может не совпадать с step.ID; такую таблицу отвергнет валидация.
func (t *StepTable) PutAs(key string, step Step) {
	if t.steps == nil {
		t.steps = make(map[string]*Step)
	}
	if _, exists := t.steps[key]; !exists {
		t.order = append(t.order, key)
	}
	s := step
	t.steps[key] = &s
}

// Get возвращает шаг по ключу.
func (t StepTable) Get(key string) (*Step, bool) {
	s, ok := t.steps[key]
	return s, ok
}

// Has возвращает true, если ключ есть в таблице.
func (t StepTable) Has(key string) bool {
	_, ok := t.steps[key]
	return ok
}

// Keys возвращает ключи в порядке таблицы.
func (t StepTable) Keys() []string {
	keys := make([]string, len(t.order))
	copy(keys, t.order)
	return keys
}

// Len возвращает количество шагов.
func (t StepTable) Len() int {
	return len(t.order)
}

// MarshalJSON кодирует таблицу как объект с ключами в порядке таблицы.
func (t StepTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(t.steps[key])
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON читает объект шагов, сохраняя порядок ключей документа.
// Повторный ключ заменяет шаг, но сохраняет позицию первого вхождения.
func (t *StepTable) UnmarshalJSON(data []byte) error {
	*t = StepTable{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("steps: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("steps: expected key, got %v", tok)
		}
		var step Step
		if err := dec.Decode(&step); err != nil {
			return fmt.Errorf("step %q: %w", key, err)
		}
		t.PutAs(key, step)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
