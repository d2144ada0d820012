package player

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/engine"
	"github.com/shaiso/Pathway/internal/fields"
	"github.com/shaiso/Pathway/internal/repo"
	"github.com/shaiso/Pathway/internal/telemetry"
)

// Notifier получает уведомления о завершённых сессиях.
type Notifier interface {
	SessionCompleted(ctx context.Context, s *domain.Session) error
}

// Config конфигурация Player.
type Config struct {
	// Repositories
	Assessments repo.AssessmentStore
	Sessions    repo.SessionStore

	// Fields реестр типов полей (default: fields.DefaultRegistry()).
	Fields *fields.Registry

	// Notifier необязателен.
	Notifier Notifier

	// Logger
	Logger *slog.Logger
}

// Player проводит сессии по анкетам.
type Player struct {
	assessments repo.AssessmentStore
	sessions    repo.SessionStore
	fields      *fields.Registry
	notifier    Notifier
	logger      *slog.Logger
}

// New создаёт новый Player.
func New(cfg Config) *Player {
	registry := cfg.Fields
	if registry == nil {
		registry = fields.DefaultRegistry()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		assessments: cfg.Assessments,
		sessions:    cfg.Sessions,
		fields:      registry,
		notifier:    cfg.Notifier,
		logger:      logger,
	}
}

// Progress доля шагов, на которые даны ответы.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// View состояние сессии для отображения.
type View struct {
	Session *domain.Session `json:"session"`

	// Group группа текущего шага. Пусто после завершения.
	Group *domain.Group `json:"group,omitempty"`

	// Step текущий шаг с подставленными ответами. Пусто после завершения.
	Step *domain.Step `json:"step,omitempty"`

	// VisibleFields имена видимых полей текущего шага в порядке объявления.
	VisibleFields []string `json:"visible_fields"`

	Progress Progress `json:"progress"`
}

// Start начинает сессию на первом шаге опубликованного опросника.
func (p *Player) Start(ctx context.Context, assessmentID uuid.UUID) (*View, error) {
	a, err := p.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if !a.IsPublished() {
		return nil, ErrNotPublished
	}

	first, ok := a.Definition.FirstStepID()
	if !ok {
		return nil, fmt.Errorf("%w: assessment has no steps", ErrBrokenReference)
	}

	s := domain.NewSession(a.ID, a.Version, first)
	if err := p.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	telemetry.SessionsStarted.Inc()
	telemetry.WithSessionID(p.logger, s.ID.String()).Info("session started",
		"assessment_id", a.ID,
		"version", a.Version,
		"step_id", first,
	)

	return p.view(s, &a.Definition)
}

// Get возвращает текущее состояние сессии.
func (p *Player) Get(ctx context.Context, sessionID uuid.UUID) (*View, error) {
	s, q, err := p.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return p.view(s, q)
}

// SaveAnswers заменяет ответы текущего шага.
//
// Ключи, не относящиеся к полям шага, отбрасываются. Значения
// приводятся к типам полей; при ошибке возвращается *FieldErrors
// с ErrInvalidAnswers и ничего не сохраняется. Ответы на поля,
// скрытые с учётом новых ответов, отбрасываются.
func (p *Player) SaveAnswers(ctx context.Context, sessionID uuid.UUID, raw map[string]any) (*View, error) {
	s, q, err := p.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.IsFinished() {
		return nil, ErrSessionFinished
	}
	step, err := currentStep(s, q)
	if err != nil {
		return nil, err
	}

	normalized, errs := p.fields.NormalizeAnswers(step.Fields, raw)
	if len(errs) > 0 {
		return nil, &FieldErrors{Err: ErrInvalidAnswers, Fields: errs}
	}
	for k, v := range normalized {
		if v == nil {
			delete(normalized, k)
		}
	}

	s.SetStepAnswers(step.AnswerKey(), p.dropHidden(s, q, step, normalized))
	if err := p.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return p.view(s, q)
}

// Advance проверяет обязательные видимые поля и переводит сессию дальше.
//
// Цель выбирается engine.ResolveNext. Переход на группу ведёт на первый
// шаг этой группы (пустые группы пропускаются). Переход на end
// завершает сессию.
func (p *Player) Advance(ctx context.Context, sessionID uuid.UUID) (*View, error) {
	s, q, err := p.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.IsFinished() {
		return nil, ErrSessionFinished
	}
	step, err := currentStep(s, q)
	if err != nil {
		telemetry.StepTransitions.WithLabelValues("broken").Inc()
		return nil, err
	}

	logger := telemetry.WithStepID(telemetry.WithSessionID(p.logger, s.ID.String()), step.ID)
	answers := scopedAnswers(s, q, step, s.StepAnswers(step.AnswerKey()))

	if result := engine.ValidateVisibleFields(step.Fields, answers); !result.Valid {
		telemetry.StepTransitions.WithLabelValues("incomplete").Inc()
		return nil, &FieldErrors{Err: ErrStepIncomplete, Fields: result.Errors}
	}

	dest, ok := engine.ResolveNext(step, answers, q)
	if !ok {
		telemetry.StepTransitions.WithLabelValues("broken").Inc()
		return nil, fmt.Errorf("%w: step %s is not placed in any group", ErrBrokenReference, step.ID)
	}

	switch dest.Type {
	case domain.DestinationEnd:
		s.MarkCompleted()

	case domain.DestinationStep:
		if _, placed := engine.Locate(dest.ID, q); !placed {
			telemetry.StepTransitions.WithLabelValues("broken").Inc()
			return nil, fmt.Errorf("%w: destination step %s", ErrBrokenReference, dest.ID)
		}
		s.MoveTo(dest.ID)

	case domain.DestinationGroup:
		target, found := firstStepOfGroup(q, dest.ID)
		if !found {
			telemetry.StepTransitions.WithLabelValues("broken").Inc()
			return nil, fmt.Errorf("%w: destination group %s", ErrBrokenReference, dest.ID)
		}
		s.MoveTo(target)

	default:
		telemetry.StepTransitions.WithLabelValues("broken").Inc()
		return nil, fmt.Errorf("%w: destination type %q", ErrBrokenReference, dest.Type)
	}

	if err := p.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	telemetry.StepTransitions.WithLabelValues(string(dest.Type)).Inc()

	if s.Status == domain.SessionStatusCompleted {
		telemetry.SessionsCompleted.Inc()
		logger.Info("session completed", "steps", len(s.History))
		if p.notifier != nil {
			if err := p.notifier.SessionCompleted(ctx, s); err != nil {
				logger.Warn("failed to publish session.completed", "error", err)
			}
		}
	} else {
		logger.Debug("step advanced", "to", s.CurrentStepID, "via", dest.Type)
	}

	return p.view(s, q)
}

// Back возвращает сессию на предыдущий шаг.
//
// Сначала используется история пройденных шагов; если она пуста,
// берётся шаг перед текущим в естественном порядке.
func (p *Player) Back(ctx context.Context, sessionID uuid.UUID) (*View, error) {
	s, q, err := p.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.IsFinished() {
		return nil, ErrSessionFinished
	}
	step, err := currentStep(s, q)
	if err != nil {
		return nil, err
	}

	target := ""
	for {
		prev, ok := s.PopHistory()
		if !ok {
			break
		}
		if _, placed := engine.Locate(prev, q); placed {
			target = prev
			break
		}
	}
	if target == "" {
		dest, ok := engine.ResolvePrevious(step, q)
		if !ok {
			return nil, ErrAtFirstStep
		}
		target = dest.ID
	}

	s.MoveBack(target)
	if err := p.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	telemetry.StepTransitions.WithLabelValues("back").Inc()

	return p.view(s, q)
}

// ExpireStale закрывает незавершённые сессии, не обновлявшиеся дольше ttl.
// Возвращает количество закрытых сессий.
func (p *Player) ExpireStale(ctx context.Context, ttl time.Duration, limit int) (int, error) {
	before := time.Now().UTC().Add(-ttl)
	stale, err := p.sessions.ListStale(ctx, before, limit)
	if err != nil {
		return 0, fmt.Errorf("list stale sessions: %w", err)
	}

	expired := 0
	for i := range stale {
		// Сессия могла ожить после ListStale: Expire это проверяет.
		ok, err := p.sessions.Expire(ctx, stale[i].ID, before, time.Now().UTC())
		if err != nil {
			return expired, fmt.Errorf("expire session %s: %w", stale[i].ID, err)
		}
		if !ok {
			continue
		}
		expired++
		telemetry.SessionsExpired.Inc()
	}

	if expired > 0 {
		p.logger.Info("expired stale sessions", "count", expired, "ttl", ttl)
	}
	return expired, nil
}

// --- Helpers ---

func (p *Player) load(ctx context.Context, sessionID uuid.UUID) (*domain.Session, *domain.Questionnaire, error) {
	s, err := p.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	q, err := p.assessments.GetVersion(ctx, s.AssessmentID, s.AssessmentVersion)
	if err != nil {
		return nil, nil, fmt.Errorf("get assessment version %d: %w", s.AssessmentVersion, err)
	}
	return s, q, nil
}

func (p *Player) view(s *domain.Session, q *domain.Questionnaire) (*View, error) {
	v := &View{
		Session:       s,
		VisibleFields: []string{},
		Progress:      progress(s, q),
	}
	if s.IsFinished() {
		return v, nil
	}

	step, err := currentStep(s, q)
	if err != nil {
		return nil, err
	}
	answers := scopedAnswers(s, q, step, s.StepAnswers(step.AnswerKey()))

	rendered, err := engine.RenderStep(step, engine.NewContext(answers, s.Answers))
	if err != nil {
		telemetry.WithStepID(p.logger, step.ID).Warn("failed to render step text", "error", err)
		rendered = *step
	}
	v.Step = &rendered
	v.VisibleFields = engine.VisibleFields(step.Fields, answers)

	if pos, ok := engine.Locate(step.ID, q); ok {
		g := q.Groups[pos.Group]
		v.Group = &g
	}
	return v, nil
}

// dropHidden удаляет ответы полей, скрытых с учётом самих ответов.
// Повторяется, пока набор не стабилизируется: удаление одного ответа
// может скрыть другое поле.
func (p *Player) dropHidden(s *domain.Session, q *domain.Questionnaire, step *domain.Step, answers map[string]any) map[string]any {
	for {
		scope := scopedAnswers(s, q, step, answers)
		changed := false
		for i := range step.Fields {
			f := &step.Fields[i]
			if engine.IsVisible(f, scope) {
				continue
			}
			for _, key := range p.fields.AnswerKeys(f) {
				if _, ok := answers[key]; ok {
					delete(answers, key)
					changed = true
				}
			}
		}
		if !changed {
			return answers
		}
	}
}

func currentStep(s *domain.Session, q *domain.Questionnaire) (*domain.Step, error) {
	step, ok := q.Step(s.CurrentStepID)
	if !ok {
		return nil, fmt.Errorf("%w: current step %q", ErrBrokenReference, s.CurrentStepID)
	}
	return step, nil
}

// scopedAnswers плоский набор ответов сессии, в котором ответы текущего
// шага заменены на stepAnswers. Совпадающие имена полей разрешаются так
// же, как в FlatAnswers: побеждает более ранний шаг.
func scopedAnswers(s *domain.Session, q *domain.Questionnaire, step *domain.Step, stepAnswers map[string]any) domain.Answers {
	scoped := make(map[string]map[string]any, len(s.Answers)+1)
	for k, v := range s.Answers {
		scoped[k] = v
	}
	scoped[step.AnswerKey()] = stepAnswers

	return (&domain.Session{Answers: scoped}).FlatAnswers(q)
}

func firstStepOfGroup(q *domain.Questionnaire, groupID string) (string, bool) {
	for gi, g := range q.Groups {
		if g.ID != groupID {
			continue
		}
		for _, next := range q.Groups[gi:] {
			if len(next.Steps) > 0 {
				return next.Steps[0].ID, true
			}
		}
		return "", false
	}
	return "", false
}

func progress(s *domain.Session, q *domain.Questionnaire) Progress {
	ids := q.StepIDs()
	p := Progress{Total: len(ids)}
	if p.Total == 0 {
		return p
	}

	if s.Status == domain.SessionStatusCompleted {
		p.Answered = p.Total
	} else {
		for _, id := range ids {
			step, ok := q.Step(id)
			if ok && len(s.Answers[step.AnswerKey()]) > 0 {
				p.Answered++
			}
		}
	}
	p.Percent = int(math.Round(float64(p.Answered) * 100 / float64(p.Total)))
	return p
}
