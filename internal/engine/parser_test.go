package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Pathway/internal/domain"
)

func TestValidate_EmptyGroups(t *testing.T) {
	tests := []struct {
		name string
		q    *domain.Questionnaire
	}{
		{name: "nil questionnaire", q: nil},
		{name: "no groups", q: &domain.Questionnaire{}},
		{name: "only empty groups", q: grouped([]string{}, []string{})},
		{name: "empty first group", q: grouped([]string{}, []string{"a"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.q)
			if !errors.Is(err, ErrEmptyGroups) {
				t.Errorf("expected ErrEmptyGroups, got %v", err)
			}
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	q := scenario()
	mutate(q, "S2", func(s *domain.Step) {
		s.Fields = []domain.Field{
			{Name: "color", Label: "Color", Type: domain.FieldTypeSelect, Options: []domain.Option{{Label: "Red", Value: "red"}}},
			{Name: "agree", Label: "Agree", Type: domain.FieldTypeCheckbox},
		}
		s.Traversal = []domain.TraversalRule{
			{When: domain.AnyOf(domain.Eq("color", "red")), Go: domain.EndDestination()},
			{When: domain.AllOf(), Go: domain.GroupDestination("g0")},
		}
	})

	if err := Validate(q); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *domain.Questionnaire
		want   error
		stepID string
	}{
		{
			name: "empty step id",
			build: func() *domain.Questionnaire {
				q := linear("a")
				q.Steps.PutAs("b", domain.Step{})
				return q
			},
			want:   ErrEmptyStepID,
			stepID: "b",
		},
		{
			name: "key mismatch",
			build: func() *domain.Questionnaire {
				q := linear("a")
				q.Steps.PutAs("b", domain.Step{ID: "c"})
				return q
			},
			want:   ErrStepIDMismatch,
			stepID: "b",
		},
		{
			name: "empty group id",
			build: func() *domain.Questionnaire {
				q := linear("a")
				q.Groups = append(q.Groups, domain.Group{})
				return q
			},
			want: ErrEmptyGroupID,
		},
		{
			name: "duplicate group id",
			build: func() *domain.Questionnaire {
				q := linear("a")
				q.Groups = append(q.Groups, domain.Group{ID: "g0"})
				return q
			},
			want: ErrDuplicateGroupID,
		},
		{
			name: "unknown step ref",
			build: func() *domain.Questionnaire {
				q := linear("a")
				q.Groups[0].Steps = append(q.Groups[0].Steps, domain.StepRef{ID: "ghost"})
				return q
			},
			want:   ErrUnknownStepRef,
			stepID: "ghost",
		},
		{
			name: "duplicate step ref",
			build: func() *domain.Questionnaire {
				q := grouped([]string{"a"}, []string{"b"})
				q.Groups[1].Steps = append(q.Groups[1].Steps, domain.StepRef{ID: "a"})
				return q
			},
			want:   ErrDuplicateStepRef,
			stepID: "a",
		},
		{
			name: "orphan step",
			build: func() *domain.Questionnaire {
				q := linear("a")
				q.Steps.Put(domain.Step{ID: "lonely"})
				return q
			},
			want:   ErrOrphanStep,
			stepID: "lonely",
		},
		{
			name: "empty field name",
			build: func() *domain.Questionnaire {
				q := linear("a")
				mutate(q, "a", func(s *domain.Step) {
					s.Fields = []domain.Field{{Type: domain.FieldTypeText}}
				})
				return q
			},
			want:   ErrEmptyFieldName,
			stepID: "a",
		},
		{
			name: "duplicate field name",
			build: func() *domain.Questionnaire {
				q := linear("a")
				mutate(q, "a", func(s *domain.Step) {
					s.Fields = []domain.Field{
						{Name: "x", Type: domain.FieldTypeText},
						{Name: "x", Type: domain.FieldTypeNumber},
					}
				})
				return q
			},
			want:   ErrDuplicateFieldName,
			stepID: "a",
		},
		{
			name: "unknown field type",
			build: func() *domain.Questionnaire {
				q := linear("a")
				mutate(q, "a", func(s *domain.Step) {
					s.Fields = []domain.Field{{Name: "x", Type: "slider"}}
				})
				return q
			},
			want:   ErrUnknownFieldType,
			stepID: "a",
		},
		{
			name: "radio without options",
			build: func() *domain.Questionnaire {
				q := linear("a")
				mutate(q, "a", func(s *domain.Step) {
					s.Fields = []domain.Field{{Name: "x", Type: domain.FieldTypeRadio}}
				})
				return q
			},
			want:   ErrMissingOptions,
			stepID: "a",
		},
		{
			name: "destination without id",
			build: func() *domain.Questionnaire {
				q := linear("a")
				mutate(q, "a", func(s *domain.Step) {
					s.Traversal = []domain.TraversalRule{{Go: domain.Destination{Type: domain.DestinationStep}}}
				})
				return q
			},
			want:   ErrMissingDestinationID,
			stepID: "a",
		},
		{
			name: "unknown destination step",
			build: func() *domain.Questionnaire {
				q := linear("a")
				d := domain.StepDestination("nowhere")
				mutate(q, "a", func(s *domain.Step) { s.FallbackNext = &d })
				return q
			},
			want:   ErrUnknownDestination,
			stepID: "a",
		},
		{
			name: "unknown destination group",
			build: func() *domain.Questionnaire {
				q := linear("a")
				d := domain.GroupDestination("nowhere")
				mutate(q, "a", func(s *domain.Step) { s.FallbackNext = &d })
				return q
			},
			want:   ErrUnknownDestination,
			stepID: "a",
		},
		{
			name: "unknown destination type",
			build: func() *domain.Questionnaire {
				q := linear("a")
				mutate(q, "a", func(s *domain.Step) {
					s.Traversal = []domain.TraversalRule{{Go: domain.Destination{Type: "teleport"}}}
				})
				return q
			},
			want:   ErrUnknownDestinationType,
			stepID: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.build())
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, vErr.Err)
			}
			if vErr.StepID != tt.stepID {
				t.Errorf("StepID = %q, want %q", vErr.StepID, tt.stepID)
			}
		})
	}
}

func TestParse(t *testing.T) {
	data := []byte(`{
		"groups": [{"id": "g", "title": "G", "steps": [{"id": "s1"}, {"id": "s2"}]}],
		"steps": {
			"s1": {"id": "s1", "title": "One", "fields": [{"name": "age", "label": "Age", "type": "number"}],
			       "traversal": [{"when": {"all": [{"gte": ["age", 18]}]}, "go": {"type": "end"}}]},
			"s2": {"id": "s2", "title": "Two", "fields": []}
		}
	}`)

	q, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s1, _ := q.Step("s1")

	dest, _ := ResolveNext(s1, domain.Answers{"age": 21.0}, q)
	if !dest.IsEnd() {
		t.Errorf("adult should end, got %+v", dest)
	}
	dest, _ = ResolveNext(s1, domain.Answers{"age": 12.0}, q)
	if dest.ID != "s2" {
		t.Errorf("minor should continue to s2, got %+v", dest)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"groups": [`))
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("expected ErrInvalidDefinition, got %v", err)
	}
}

func TestLint(t *testing.T) {
	q := linear("a", "b")
	clean := Lint(q)
	if !clean.OK() {
		t.Errorf("clean questionnaire reported problems: %+v", clean)
	}

	q.Steps.Put(domain.Step{ID: "orphan"})
	dirty := Lint(q)
	if dirty.OK() {
		t.Error("orphan step should fail lint")
	}
	if !errors.Is(dirty.Err, ErrOrphanStep) {
		t.Errorf("Err = %v, want ErrOrphanStep", dirty.Err)
	}
	if len(dirty.Reachability.Unreachable) != 1 || dirty.Reachability.Unreachable[0] != "orphan" {
		t.Errorf("Unreachable = %v", dirty.Reachability.Unreachable)
	}
}
