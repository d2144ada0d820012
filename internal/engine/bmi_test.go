package engine

import (
	"testing"

	"github.com/shaiso/Pathway/internal/domain"
)

func TestComputeBMI(t *testing.T) {
	tests := []struct {
		name     string
		answers  domain.Answers
		value    float64
		category string
	}{
		{
			name:     "normal range",
			answers:  domain.Answers{"height_ft": "5", "height_in": "10", "weight": "160"},
			value:    23.0,
			category: "Normal Range",
		},
		{
			name:     "underweight",
			answers:  domain.Answers{"height_ft": 6.0, "height_in": 0.0, "weight": 120.0},
			value:    16.3,
			category: "Underweight",
		},
		{
			name:     "overweight without inches",
			answers:  domain.Answers{"height_ft": 5.0, "weight": 150.0},
			value:    29.3,
			category: "Overweight",
		},
		{
			name:     "obese",
			answers:  domain.Answers{"height_ft": "5", "height_in": "2", "weight": "220"},
			value:    40.2,
			category: "Obese",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeBMI(tt.answers)
			if !ok {
				t.Fatal("expected BMI to be computed")
			}
			if got.Value != tt.value {
				t.Errorf("Value = %v, want %v", got.Value, tt.value)
			}
			if got.Category != tt.category {
				t.Errorf("Category = %q, want %q", got.Category, tt.category)
			}
		})
	}
}

func TestComputeBMI_Incomplete(t *testing.T) {
	inputs := []domain.Answers{
		{},
		{"height_ft": "5"},
		{"weight": "150"},
		{"height_ft": "0", "weight": "150"},
		{"height_ft": "abc", "weight": "150"},
		{"height_ft": "5", "weight": "-1"},
	}

	for _, a := range inputs {
		if _, ok := ComputeBMI(a); ok {
			t.Errorf("ComputeBMI(%v) should fail", a)
		}
	}
}
