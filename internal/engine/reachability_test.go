package engine

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shaiso/Pathway/internal/domain"
)

func TestAnalyze_NaturalChain(t *testing.T) {
	q := grouped([]string{"a", "b"}, []string{"c"}, []string{"d"})

	report := Analyze(q)

	for _, id := range []string{"a", "b", "c", "d"} {
		if !report.IsReachable(id) {
			t.Errorf("%s should be reachable", id)
		}
	}
	if len(report.Unreachable) != 0 {
		t.Errorf("Unreachable = %v, want empty", report.Unreachable)
	}
}

func TestAnalyze_UnsatisfiableGuardStillReaches(t *testing.T) {
	q := linear("A", "C")
	q.Steps.Put(domain.Step{ID: "B"})
	mutate(q, "A", func(s *domain.Step) {
		s.Traversal = []domain.TraversalRule{
			{
				When: domain.AllOf(domain.Gt("x", 10), domain.Lt("x", 5)),
				Go:   domain.StepDestination("B"),
			},
		}
	})

	report := Analyze(q)
	if !report.IsReachable("B") {
		t.Error("B should be reachable through a guarded rule")
	}
	if len(report.Unreachable) != 0 {
		t.Errorf("Unreachable = %v, want empty", report.Unreachable)
	}
}

func TestAnalyze_Unreachable(t *testing.T) {
	q := linear("a", "b", "c")
	q.Steps.Put(domain.Step{ID: "z"})
	q.Steps.Put(domain.Step{ID: "y"})
	end := domain.EndDestination()
	mutate(q, "a", func(s *domain.Step) { s.FallbackNext = &end })

	report := Analyze(q)

	// Естественный порядок учитывается независимо от fallback.
	want := []string{"z", "y"}
	if !reflect.DeepEqual(report.Unreachable, want) {
		t.Errorf("Unreachable = %v, want %v", report.Unreachable, want)
	}
	if !report.IsReachable("a") {
		t.Error("start step should be reachable")
	}
}

func TestAnalyze_Cycle(t *testing.T) {
	q := linear("a", "b", "c")
	back := domain.StepDestination("a")
	mutate(q, "b", func(s *domain.Step) {
		s.Traversal = []domain.TraversalRule{{When: domain.AllOf(domain.Truthy("again")), Go: back}}
	})
	mutate(q, "c", func(s *domain.Step) { s.FallbackNext = &back })

	report := Analyze(q)
	if got := report.ReachableIDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Reachable = %v", got)
	}
}

func TestAnalyze_GroupAndEndTerminate(t *testing.T) {
	q := grouped([]string{"a"}, []string{"b"})
	mutate(q, "a", func(s *domain.Step) {
		s.Traversal = []domain.TraversalRule{
			{When: domain.AllOf(), Go: domain.GroupDestination("g1")},
		}
		end := domain.EndDestination()
		s.FallbackNext = &end
	})
	q.Steps.Put(domain.Step{ID: "only-via-natural"})

	report := Analyze(q)
	// a → b через естественный порядок всё равно учитывается.
	if !report.IsReachable("b") {
		t.Error("b should be reachable via natural order")
	}
	if report.IsReachable("only-via-natural") {
		t.Error("step outside groups should be unreachable")
	}
}

func TestAnalyze_Dangling(t *testing.T) {
	q := linear("a", "b")
	mutate(q, "a", func(s *domain.Step) {
		s.Traversal = []domain.TraversalRule{
			{When: domain.AllOf(), Go: domain.StepDestination("missing")},
			{When: domain.AllOf(), Go: domain.StepDestination("missing")},
		}
	})

	report := Analyze(q)
	if !reflect.DeepEqual(report.Dangling, []string{"missing"}) {
		t.Errorf("Dangling = %v", report.Dangling)
	}
	if !report.IsReachable("missing") {
		t.Error("dangling target is recorded as reachable")
	}
	if len(report.Unreachable) != 0 {
		t.Errorf("Unreachable = %v", report.Unreachable)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	for _, q := range []*domain.Questionnaire{nil, {}, grouped([]string{})} {
		report := Analyze(q)
		if len(report.Reachable) != 0 || len(report.Unreachable) != 0 || len(report.Dangling) != 0 {
			t.Errorf("expected empty report, got %+v", report)
		}
	}
}

func TestAnalyze_EmptyGroupHasUnreachableTable(t *testing.T) {
	q := &domain.Questionnaire{
		Groups: []domain.Group{{ID: "g"}},
		Steps:  domain.NewStepTable(domain.Step{ID: "x"}),
	}
	report := Analyze(q)
	if len(report.Reachable) != 0 {
		t.Errorf("Reachable = %v, want empty", report.ReachableIDs())
	}
	if !reflect.DeepEqual(report.Unreachable, []string{"x"}) {
		t.Errorf("Unreachable = %v", report.Unreachable)
	}
}

func TestAnalyze_EmptyGroupsCutNaturalOrder(t *testing.T) {
	tests := []struct {
		name        string
		q           *domain.Questionnaire
		reachable   []string
		unreachable []string
		valid       bool
	}{
		{
			name:        "empty group between",
			q:           grouped([]string{"a"}, []string{}, []string{"b"}),
			reachable:   []string{"a"},
			unreachable: []string{"b"},
			valid:       true,
		},
		{
			name:        "empty first group",
			q:           grouped([]string{}, []string{"a"}, []string{}, []string{"b"}),
			reachable:   []string{},
			unreachable: []string{"a", "b"},
			valid:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Analyze(tt.q)
			if got := report.ReachableIDs(); !reflect.DeepEqual(got, tt.reachable) {
				t.Errorf("Reachable = %v, want %v", got, tt.reachable)
			}
			if !reflect.DeepEqual(report.Unreachable, tt.unreachable) {
				t.Errorf("Unreachable = %v, want %v", report.Unreachable, tt.unreachable)
			}
			if err := Validate(tt.q); (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, valid %v", err, tt.valid)
			}
		})
	}
}

func TestAnalyze_RoundTrip(t *testing.T) {
	q := scenario()
	q.Steps.Put(domain.Step{ID: "island"})

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored domain.Questionnaire
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	before, after := Analyze(q), Analyze(&restored)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("report changed after round trip:\n%+v\n%+v", before, after)
	}
}
