package engine

import (
	"github.com/shaiso/Pathway/internal/domain"
)

// Position положение шага в группах анкеты.
type Position struct {
	Group int // индекс группы
	Index int // индекс шага внутри группы
}

// Locate находит шаг в группах. Возвращает первое вхождение.
func Locate(stepID string, q *domain.Questionnaire) (Position, bool) {
	if q == nil {
		return Position{}, false
	}
	for gi, g := range q.Groups {
		for si, ref := range g.Steps {
			if ref.ID == stepID {
				return Position{Group: gi, Index: si}, true
			}
		}
	}
	return Position{}, false
}

// ResolveNext выбирает цель перехода после шага.
//
// Порядок: правила перехода по очереди (первое с истинным условием),
// затем FallbackNext, затем естественный порядок. Возвращает false,
// если шаг не найден в группах; вызывающий код обязан остановиться.
func ResolveNext(step *domain.Step, answers domain.Answers, q *domain.Questionnaire) (domain.Destination, bool) {
	if step == nil {
		return domain.Destination{}, false
	}
	if _, ok := Locate(step.ID, q); !ok {
		return domain.Destination{}, false
	}

	for i := range step.Traversal {
		rule := &step.Traversal[i]
		if EvaluateVisibility(&rule.When, answers) {
			return rule.Go, true
		}
	}

	if step.FallbackNext != nil {
		return *step.FallbackNext, true
	}

	return NextInOrder(step.ID, q)
}

// NextInOrder возвращает шаг, следующий за stepID в естественном порядке:
// следующий шаг той же группы, иначе первый шаг следующей группы.
// Если группа последняя или следующая группа пуста, возвращает end.
func NextInOrder(stepID string, q *domain.Questionnaire) (domain.Destination, bool) {
	pos, ok := Locate(stepID, q)
	if !ok {
		return domain.Destination{}, false
	}

	group := q.Groups[pos.Group]
	if pos.Index+1 < len(group.Steps) {
		return domain.StepDestination(group.Steps[pos.Index+1].ID), true
	}

	if next := pos.Group + 1; next < len(q.Groups) && len(q.Groups[next].Steps) > 0 {
		return domain.StepDestination(q.Groups[next].Steps[0].ID), true
	}

	return domain.EndDestination(), true
}

// ResolvePrevious возвращает шаг перед данным в естественном порядке.
// Правила перехода не обращаются. Возвращает false для первого шага
// и для шага, которого нет в группах.
func ResolvePrevious(step *domain.Step, q *domain.Questionnaire) (domain.Destination, bool) {
	if step == nil {
		return domain.Destination{}, false
	}
	return PreviousInOrder(step.ID, q)
}

// PreviousInOrder зеркально NextInOrder: последний шаг предыдущей группы.
// Пустая предыдущая группа, как и начало анкеты, даёт false.
func PreviousInOrder(stepID string, q *domain.Questionnaire) (domain.Destination, bool) {
	pos, ok := Locate(stepID, q)
	if !ok {
		return domain.Destination{}, false
	}

	if pos.Index > 0 {
		return domain.StepDestination(q.Groups[pos.Group].Steps[pos.Index-1].ID), true
	}

	if prev := pos.Group - 1; prev >= 0 && len(q.Groups[prev].Steps) > 0 {
		steps := q.Groups[prev].Steps
		return domain.StepDestination(steps[len(steps)-1].ID), true
	}

	return domain.Destination{}, false
}
