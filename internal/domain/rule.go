package domain

import (
	"bytes"
	"encoding/json"
)

// Operator определяет вид примитивного условия.
type Operator string

const (
	OpEq     Operator = "eq"
	OpNe     Operator = "ne"
	OpGt     Operator = "gt"
	OpGte    Operator = "gte"
	OpLt     Operator = "lt"
	OpLte    Operator = "lte"
	OpIn     Operator = "in"
	OpTruthy Operator = "truthy"
	OpFalsy  Operator = "falsy"

	// OpUnknown: условие не распознано (пустой объект, чужой ключ,
	// неверная арность). Такое условие всегда истинно.
	OpUnknown Operator = ""
)

// operatorOrder задаёт порядок проверки ключей при разборе условия.
// Если в объекте несколько ключей-операторов, побеждает первый в этом списке.
var operatorOrder = []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpTruthy, OpFalsy}

// IsUnary возвращает true для операторов с одним аргументом (имя поля).
func (o Operator) IsUnary() bool {
	return o == OpTruthy || o == OpFalsy
}

// Condition описывает примитивный тест над одним ответом.
//
// В JSON условие записывается объектом с единственным ключом-оператором:
//
//	{"eq": ["age", 5]}
//	{"in": ["color", ["red", "blue"]]}
//	{"truthy": ["hasPet"]}
type Condition struct {
	// Op вид условия. OpUnknown для нераспознанных форм.
	Op Operator

	// Field имя поля в плоском наборе ответов.
	Field string

	// Value литерал для eq, ne, gt, gte, lt, lte.
	Value any

	// Values допустимое множество для in.
	Values []any

	// raw исходный JSON нераспознанного условия, чтобы вернуть его как есть.
	raw json.RawMessage
}

func Eq(field string, value any) Condition  { return Condition{Op: OpEq, Field: field, Value: value} }
func Ne(field string, value any) Condition  { return Condition{Op: OpNe, Field: field, Value: value} }
func Gt(field string, value any) Condition  { return Condition{Op: OpGt, Field: field, Value: value} }
func Gte(field string, value any) Condition { return Condition{Op: OpGte, Field: field, Value: value} }
func Lt(field string, value any) Condition  { return Condition{Op: OpLt, Field: field, Value: value} }
func Lte(field string, value any) Condition { return Condition{Op: OpLte, Field: field, Value: value} }

// In строит условие принадлежности множеству.
func In(field string, values ...any) Condition {
	if values == nil {
		values = []any{}
	}
	return Condition{Op: OpIn, Field: field, Values: values}
}

func Truthy(field string) Condition { return Condition{Op: OpTruthy, Field: field} }
func Falsy(field string) Condition  { return Condition{Op: OpFalsy, Field: field} }

// Unknown возвращает нераспознанное условие с заданным исходным JSON.
func Unknown(raw json.RawMessage) Condition {
	return Condition{Op: OpUnknown, raw: append(json.RawMessage(nil), raw...)}
}

// IsUnknown возвращает true для нераспознанного условия.
func (c Condition) IsUnknown() bool {
	return c.Op == OpUnknown
}

// MarshalJSON кодирует условие в форму {"op": [field, value]}.
func (c Condition) MarshalJSON() ([]byte, error) {
	var args []any
	switch {
	case c.Op == OpUnknown:
		if len(c.raw) == 0 {
			return []byte("{}"), nil
		}
		return c.raw, nil
	case c.Op.IsUnary():
		args = []any{c.Field}
	case c.Op == OpIn:
		values := c.Values
		if values == nil {
			values = []any{}
		}
		args = []any{c.Field, values}
	default:
		args = []any{c.Field, c.Value}
	}
	return json.Marshal(map[string][]any{string(c.Op): args})
}

// UnmarshalJSON разбирает условие. Ошибок не возвращает: любая
// нераспознанная форма становится OpUnknown с сохранённым исходником.
func (c *Condition) UnmarshalJSON(data []byte) error {
	*c = Unknown(bytes.TrimSpace(data))

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil
	}

	for _, op := range operatorOrder {
		rawArgs, ok := obj[string(op)]
		if !ok {
			continue
		}
		var args []json.RawMessage
		if err := json.Unmarshal(rawArgs, &args); err != nil || args == nil {
			// Ключ есть, но значение не массив: проверяем следующий оператор.
			continue
		}
		if parsed, ok := parseCondition(op, args); ok {
			*c = parsed
		}
		return nil
	}
	return nil
}

func parseCondition(op Operator, args []json.RawMessage) (Condition, bool) {
	want := 2
	if op.IsUnary() {
		want = 1
	}
	if len(args) != want {
		return Condition{}, false
	}

	var field string
	if err := json.Unmarshal(args[0], &field); err != nil {
		return Condition{}, false
	}
	cond := Condition{Op: op, Field: field}
	if op.IsUnary() {
		return cond, true
	}

	if op == OpIn {
		var values []any
		if err := json.Unmarshal(args[1], &values); err != nil || values == nil {
			return Condition{}, false
		}
		cond.Values = values
		return cond, true
	}

	if err := json.Unmarshal(args[1], &cond.Value); err != nil {
		return Condition{}, false
	}
	return cond, true
}

// Expression описывает составное булево выражение над условиями.
//
// Ключи проверяются в порядке any, all, not; срабатывает первый
// присутствующий. Присутствие важнее содержимого: пустой any ложен,
// пустой all истинен. Выражение без ключей истинно.
type Expression struct {
	Any []Condition
	All []Condition
	Not *Expression
}

// HasAny возвращает true, если ключ any присутствует (даже с пустым списком).
func (e *Expression) HasAny() bool { return e != nil && e.Any != nil }

// HasAll возвращает true, если ключ all присутствует.
func (e *Expression) HasAll() bool { return e != nil && e.All != nil }

// AnyOf строит выражение any. Пустой вызов даёт присутствующий пустой список.
func AnyOf(conds ...Condition) Expression {
	if conds == nil {
		conds = []Condition{}
	}
	return Expression{Any: conds}
}

// AllOf строит выражение all.
func AllOf(conds ...Condition) Expression {
	if conds == nil {
		conds = []Condition{}
	}
	return Expression{All: conds}
}

// NotOf строит отрицание выражения.
func NotOf(e Expression) Expression {
	return Expression{Not: &e}
}

type expressionJSON struct {
	Any *[]Condition `json:"any,omitempty"`
	All *[]Condition `json:"all,omitempty"`
	Not *Expression  `json:"not,omitempty"`
}

// MarshalJSON сохраняет присутствующие пустые списки.
func (e Expression) MarshalJSON() ([]byte, error) {
	var out expressionJSON
	if e.Any != nil {
		out.Any = &e.Any
	}
	if e.All != nil {
		out.All = &e.All
	}
	out.Not = e.Not
	return json.Marshal(out)
}

// UnmarshalJSON разбирает выражение снисходительно. Значения неверного
// типа считаются отсутствующими ключами; не-объект даёт пустое выражение.
func (e *Expression) UnmarshalJSON(data []byte) error {
	*e = Expression{}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil
	}

	if raw, ok := obj["any"]; ok {
		e.Any = decodeConditions(raw)
	}
	if raw, ok := obj["all"]; ok {
		e.All = decodeConditions(raw)
	}
	if raw, ok := obj["not"]; ok && !jsonFalsy(raw) {
		var inner Expression
		if err := inner.UnmarshalJSON(raw); err != nil {
			return err
		}
		e.Not = &inner
	}
	return nil
}

func decodeConditions(raw json.RawMessage) []Condition {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}
	conds := make([]Condition, len(items))
	for i, item := range items {
		_ = conds[i].UnmarshalJSON(item)
	}
	return conds
}

// jsonFalsy сообщает, является ли JSON-значение ложным (null, false, 0, "").
func jsonFalsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	default:
		return false
	}
}
