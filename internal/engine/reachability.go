package engine

import (
	"sort"

	"github.com/shaiso/Pathway/internal/domain"
)

// Report результат анализа достижимости.
//
// Анализ консервативен: условия правил игнорируются, каждый переход
// считается возможным. Шаг из Unreachable точно недостижим; шаг из
// Reachable может оказаться недостижимым, если условие невыполнимо.
type Report struct {
	// Reachable идентификаторы шагов, в которые ведёт хотя бы один путь.
	// Может содержать идентификаторы, которых нет в таблице (см. Dangling).
	Reachable map[string]struct{}

	// Unreachable шаги таблицы, не попавшие в Reachable, в порядке таблицы.
	Unreachable []string

	// Dangling цели переходов, которых нет в таблице, в порядке обнаружения.
	Dangling []string
}

// IsReachable сообщает, достижим ли шаг.
func (r Report) IsReachable(stepID string) bool {
	_, ok := r.Reachable[stepID]
	return ok
}

// ReachableIDs возвращает достижимые шаги в отсортированном виде.
func (r Report) ReachableIDs() []string {
	ids := make([]string, 0, len(r.Reachable))
	for id := range r.Reachable {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Analyze обходит граф переходов в ширину от первого шага анкеты.
//
// Из каждого шага рёбра ведут во все цели правил, в FallbackNext и в
// естественного последователя. Цели end и group завершают ветку.
// Циклы допустимы: каждый шаг посещается один раз.
func Analyze(q *domain.Questionnaire) Report {
	report := Report{Reachable: make(map[string]struct{})}

	start, ok := q.FirstStepID()
	if !ok {
		return report
	}

	dangling := make(map[string]bool)
	visit := func(id string, queue []string) []string {
		if _, seen := report.Reachable[id]; seen {
			return queue
		}
		report.Reachable[id] = struct{}{}
		if !q.Steps.Has(id) && !dangling[id] {
			dangling[id] = true
			report.Dangling = append(report.Dangling, id)
		}
		return append(queue, id)
	}

	queue := visit(start, nil)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		step, ok := q.Steps.Get(id)
		if !ok {
			continue
		}

		for _, dest := range outgoing(step, q) {
			if dest.IsStep() && dest.ID != "" {
				queue = visit(dest.ID, queue)
			}
		}
	}

	for _, id := range q.Steps.Keys() {
		if _, ok := report.Reachable[id]; !ok {
			report.Unreachable = append(report.Unreachable, id)
		}
	}

	return report
}

// outgoing возвращает все возможные цели перехода из шага.
func outgoing(step *domain.Step, q *domain.Questionnaire) []domain.Destination {
	dests := make([]domain.Destination, 0, len(step.Traversal)+2)
	for _, rule := range step.Traversal {
		dests = append(dests, rule.Go)
	}
	if step.FallbackNext != nil {
		dests = append(dests, *step.FallbackNext)
	}
	if next, ok := NextInOrder(step.ID, q); ok {
		dests = append(dests, next)
	}
	return dests
}
