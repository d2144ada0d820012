package engine

import (
	"github.com/shaiso/Pathway/internal/domain"
)

// linear строит анкету из одной группы с шагами в заданном порядке.
func linear(ids ...string) *domain.Questionnaire {
	return grouped(ids)
}

// grouped строит анкету, где каждый срез ids становится группой g0, g1, ...
func grouped(groups ...[]string) *domain.Questionnaire {
	q := &domain.Questionnaire{}
	for gi, ids := range groups {
		g := domain.Group{ID: "g" + string(rune('0'+gi)), Title: "Group", Steps: []domain.StepRef{}}
		for _, id := range ids {
			g.Steps = append(g.Steps, domain.StepRef{ID: id})
			q.Steps.Put(domain.Step{ID: id, Title: id, Fields: []domain.Field{}})
		}
		q.Groups = append(q.Groups, g)
	}
	return q
}

// mutate заменяет шаг анкеты результатом fn.
func mutate(q *domain.Questionnaire, id string, fn func(s *domain.Step)) {
	step, _ := q.Steps.Get(id)
	s := *step
	fn(&s)
	q.Steps.Put(s)
}

// scenario анкета S1 → (age == 5 ? S3 : S2) → S3.
func scenario() *domain.Questionnaire {
	q := linear("S1", "S2", "S3")
	fallback := domain.StepDestination("S2")
	mutate(q, "S1", func(s *domain.Step) {
		s.Traversal = []domain.TraversalRule{
			{When: domain.AllOf(domain.Eq("age", 5)), Go: domain.StepDestination("S3")},
		}
		s.FallbackNext = &fallback
	})
	return q
}
