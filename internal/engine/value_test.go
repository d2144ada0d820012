package engine

import (
	"math"
	"testing"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero", 0.0, false},
		{"zero int", 0, false},
		{"NaN", math.NaN(), false},
		{"negative", -1.0, true},
		{"empty string", "", false},
		{"space", " ", true},
		{"string zero", "0", true},
		{"empty list", []any{}, true},
		{"empty object", map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.value); got != tt.want {
				t.Errorf("Truthy(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"nil", nil, 0},
		{"true", true, 1},
		{"false", false, 0},
		{"float", 2.5, 2.5},
		{"int", 7, 7},
		{"numeric string", "42", 42},
		{"padded string", "  3.5\n", 3.5},
		{"empty string", "", 0},
		{"blank string", "   ", 0},
		{"byte order mark", "\uFEFF5", 5},
		{"only byte order mark", "\uFEFF", 0},
		{"nbsp padding", "\u00A07\u00A0", 7},
		{"exponent", "1e3", 1000},
		{"leading dot", ".5", 0.5},
		{"trailing dot", "5.", 5},
		{"hex", "0x1F", 31},
		{"binary", "0b101", 5},
		{"octal", "0o17", 15},
		{"infinity", "Infinity", math.Inf(1)},
		{"negative infinity", "-Infinity", math.Inf(-1)},
		{"empty list", []any{}, 0},
		{"single element list", []any{"8"}, 8},
		{"single nil list", []any{nil}, 0},
		{"nested single list", []any{[]any{4.0}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToNumber(tt.value); got != tt.want {
				t.Errorf("ToNumber(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestToNumber_NaN(t *testing.T) {
	values := []any{
		"abc",
		"12px",
		"inf",
		"NaN",
		"0x",
		"-0x10",
		"1_000",
		[]any{1.0, 2.0},
		[]any{true},
		map[string]any{},
		struct{}{},
	}

	for _, v := range values {
		if got := ToNumber(v); !math.IsNaN(got) {
			t.Errorf("ToNumber(%#v) = %v, want NaN", v, got)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil vs zero", nil, 0.0, false},
		{"float vs int", 5.0, 5, true},
		{"different numbers", 5.0, 6.0, false},
		{"NaN never equal", math.NaN(), math.NaN(), false},
		{"string vs number", "5", 5.0, false},
		{"strings", "red", "red", true},
		{"bools", true, true, true},
		{"bool vs number", true, 1.0, false},
		{"lists", []any{"a", 1.0}, []any{"a", 1}, true},
		{"typed list", []any{"a", "b"}, []string{"a", "b"}, true},
		{"list order matters", []any{"a", "b"}, []any{"b", "a"}, false},
		{"list length", []any{"a"}, []any{"a", "b"}, false},
		{"objects", map[string]any{"x": 1.0}, map[string]any{"x": 1}, true},
		{"objects differ", map[string]any{"x": 1.0}, map[string]any{"y": 1.0}, false},
		{"list vs object", []any{}, map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
