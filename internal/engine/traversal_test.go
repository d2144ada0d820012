package engine

import (
	"encoding/json"
	"testing"

	"github.com/shaiso/Pathway/internal/domain"
)

func TestResolveNext_Scenario(t *testing.T) {
	q := scenario()
	s1, _ := q.Step("S1")

	tests := []struct {
		name    string
		answers domain.Answers
		want    string
	}{
		{"age five jumps", domain.Answers{"age": 5.0}, "S3"},
		{"age seven falls back", domain.Answers{"age": 7.0}, "S2"},
		{"age absent falls back", domain.Answers{}, "S2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, ok := ResolveNext(s1, tt.answers, q)
			if !ok {
				t.Fatal("expected step to resolve")
			}
			if dest != domain.StepDestination(tt.want) {
				t.Errorf("got %+v, want step %s", dest, tt.want)
			}
		})
	}
}

func TestResolveNext_FirstMatchingRuleWins(t *testing.T) {
	q := linear("a", "b", "c", "d")
	mutate(q, "a", func(s *domain.Step) {
		s.Traversal = []domain.TraversalRule{
			{When: domain.AllOf(domain.Gt("n", 100)), Go: domain.StepDestination("b")},
			{When: domain.AllOf(domain.Gt("n", 1)), Go: domain.StepDestination("c")},
			{When: domain.AllOf(domain.Gt("n", 0)), Go: domain.StepDestination("d")},
		}
	})
	a, _ := q.Step("a")

	dest, ok := ResolveNext(a, domain.Answers{"n": 5.0}, q)
	if !ok || dest.ID != "c" {
		t.Errorf("got %+v, %v; want c", dest, ok)
	}
}

func TestResolveNext_NaturalOrder(t *testing.T) {
	q := grouped([]string{"a", "b"}, []string{"c"})

	tests := []struct {
		from string
		want domain.Destination
	}{
		{"a", domain.StepDestination("b")},
		{"b", domain.StepDestination("c")},
		{"c", domain.EndDestination()},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			step, _ := q.Step(tt.from)
			dest, ok := ResolveNext(step, nil, q)
			if !ok {
				t.Fatal("expected step to resolve")
			}
			if dest != tt.want {
				t.Errorf("got %+v, want %+v", dest, tt.want)
			}
		})
	}
}

func TestNaturalOrder_EmptyGroupEnds(t *testing.T) {
	q := grouped([]string{}, []string{"a"}, []string{}, []string{"b"})

	next, ok := NextInOrder("a", q)
	if !ok || !next.IsEnd() {
		t.Errorf("NextInOrder(a) = %+v, %v; want end", next, ok)
	}

	if prev, ok := PreviousInOrder("b", q); ok {
		t.Errorf("PreviousInOrder(b) = %+v, want no previous step", prev)
	}
	if prev, ok := PreviousInOrder("a", q); ok {
		t.Errorf("PreviousInOrder(a) = %+v, want no previous step", prev)
	}
}

func TestResolveNext_LastStepEnds(t *testing.T) {
	q := grouped([]string{"a"}, []string{"S1"})
	s1, _ := q.Step("S1")

	dest, ok := ResolveNext(s1, domain.Answers{"anything": true}, q)
	if !ok || !dest.IsEnd() {
		t.Errorf("got %+v, %v; want end", dest, ok)
	}
}

func TestResolveNext_FallbackEnd(t *testing.T) {
	q := linear("a", "b")
	end := domain.EndDestination()
	mutate(q, "a", func(s *domain.Step) { s.FallbackNext = &end })
	a, _ := q.Step("a")

	dest, ok := ResolveNext(a, nil, q)
	if !ok || !dest.IsEnd() {
		t.Errorf("got %+v, %v; want end", dest, ok)
	}
}

func TestResolveNext_UnlocatableStep(t *testing.T) {
	q := linear("a")
	orphan := &domain.Step{ID: "ghost"}

	if _, ok := ResolveNext(orphan, nil, q); ok {
		t.Error("step outside groups should not resolve")
	}
	if _, ok := ResolveNext(nil, nil, q); ok {
		t.Error("nil step should not resolve")
	}
}

func TestResolvePrevious(t *testing.T) {
	q := grouped([]string{"a", "b"}, []string{"c"}, []string{}, []string{"d"})

	tests := []struct {
		from string
		want string
		ok   bool
	}{
		{"a", "", false},
		{"b", "a", true},
		{"c", "b", true},
		{"d", "", false},
		{"ghost", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			dest, ok := ResolvePrevious(&domain.Step{ID: tt.from}, q)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && dest != domain.StepDestination(tt.want) {
				t.Errorf("got %+v, want %s", dest, tt.want)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	q := grouped([]string{"a"}, []string{"b", "c"})

	pos, ok := Locate("c", q)
	if !ok || pos != (Position{Group: 1, Index: 1}) {
		t.Errorf("Locate(c) = %+v, %v", pos, ok)
	}
	if _, ok := Locate("z", q); ok {
		t.Error("unknown step located")
	}
	if _, ok := Locate("a", nil); ok {
		t.Error("nil questionnaire located a step")
	}
}

func TestResolveNext_RoundTrip(t *testing.T) {
	q := scenario()
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	answerSets := []domain.Answers{{}, {"age": 5.0}, {"age": 7.0}, {"age": "5"}}
	for _, id := range q.Steps.Keys() {
		before, _ := q.Step(id)
		after, _ := restored.Step(id)
		for _, a := range answerSets {
			d1, ok1 := ResolveNext(before, a, q)
			d2, ok2 := ResolveNext(after, a, restored)
			if d1 != d2 || ok1 != ok2 {
				t.Errorf("step %s, answers %v: %+v/%v vs %+v/%v", id, a, d1, ok1, d2, ok2)
			}
		}
	}
}
