package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCondition_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Condition
	}{
		{
			name: "eq number",
			json: `{"eq":["age",5]}`,
			want: Condition{Op: OpEq, Field: "age", Value: float64(5)},
		},
		{
			name: "ne string",
			json: `{"ne":["color","red"]}`,
			want: Condition{Op: OpNe, Field: "color", Value: "red"},
		},
		{
			name: "in set",
			json: `{"in":["color",["red","blue"]]}`,
			want: Condition{Op: OpIn, Field: "color", Values: []any{"red", "blue"}},
		},
		{
			name: "truthy",
			json: `{"truthy":["hasPet"]}`,
			want: Condition{Op: OpTruthy, Field: "hasPet"},
		},
		{
			name: "eq with null literal",
			json: `{"eq":["x",null]}`,
			want: Condition{Op: OpEq, Field: "x", Value: nil},
		},
		{
			name: "first operator wins",
			json: `{"ne":["a",1],"eq":["b",2]}`,
			want: Condition{Op: OpEq, Field: "b", Value: float64(2)},
		},
		{
			name: "non-array operator value falls through",
			json: `{"eq":"broken","gt":["age",3]}`,
			want: Condition{Op: OpGt, Field: "age", Value: float64(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Condition
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Op != tt.want.Op || got.Field != tt.want.Field {
				t.Errorf("got %s(%q), want %s(%q)", got.Op, got.Field, tt.want.Op, tt.want.Field)
			}
			if !reflect.DeepEqual(got.Value, tt.want.Value) {
				t.Errorf("value = %#v, want %#v", got.Value, tt.want.Value)
			}
			if !reflect.DeepEqual(got.Values, tt.want.Values) {
				t.Errorf("values = %#v, want %#v", got.Values, tt.want.Values)
			}
		})
	}
}

func TestCondition_Malformed(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"between":["age",1,5]}`,
		`{"eq":["age"]}`,
		`{"eq":["age",1,2]}`,
		`{"truthy":["a","b"]}`,
		`{"truthy":[]}`,
		`{"eq":[5,5]}`,
		`{"in":["color","red"]}`,
		`"eq"`,
		`42`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var c Condition
			if err := json.Unmarshal([]byte(in), &c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.IsUnknown() {
				t.Errorf("expected unknown condition, got %s", c.Op)
			}

			out, err := json.Marshal(c)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != in {
				t.Errorf("round trip = %s, want %s", out, in)
			}
		})
	}
}

func TestCondition_MarshalJSON(t *testing.T) {
	tests := []struct {
		cond Condition
		want string
	}{
		{Eq("age", 5), `{"eq":["age",5]}`},
		{Gte("score", 10.5), `{"gte":["score",10.5]}`},
		{In("color", "red", "blue"), `{"in":["color",["red","blue"]]}`},
		{In("color"), `{"in":["color",[]]}`},
		{Falsy("hasPet"), `{"falsy":["hasPet"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			out, err := json.Marshal(tt.cond)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("got %s, want %s", out, tt.want)
			}
		})
	}
}

func TestExpression_PresenceSurvivesRoundTrip(t *testing.T) {
	tests := []string{
		`{"any":[]}`,
		`{"all":[]}`,
		`{"not":{"not":{"any":[{"eq":["x",1]}]}}}`,
		`{"any":[{"truthy":["a"]}],"all":[{"falsy":["b"]}]}`,
		`{}`,
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			var e Expression
			if err := json.Unmarshal([]byte(in), &e); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			out, err := json.Marshal(e)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != in {
				t.Errorf("round trip = %s, want %s", out, in)
			}
		})
	}
}

func TestExpression_LenientDecode(t *testing.T) {
	var e Expression
	if err := json.Unmarshal([]byte(`{"any":"nope","not":false}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.HasAny() {
		t.Error("non-array any should be treated as absent")
	}
	if e.Not != nil {
		t.Error("falsy not should be treated as absent")
	}

	if err := json.Unmarshal([]byte(`"x"`), &e); err != nil {
		t.Fatalf("unmarshal scalar: %v", err)
	}
	if e.HasAny() || e.HasAll() || e.Not != nil {
		t.Error("scalar expression should decode as empty")
	}
}

func TestExpression_Builders(t *testing.T) {
	if !AnyOf().HasAny() {
		t.Error("AnyOf() should produce a present empty list")
	}
	e := AllOf()
	if !e.HasAll() || len(e.All) != 0 {
		t.Error("AllOf() should produce a present empty list")
	}
	n := NotOf(AnyOf(Truthy("a")))
	if n.Not == nil || len(n.Not.Any) != 1 {
		t.Error("NotOf should wrap the inner expression")
	}
}
