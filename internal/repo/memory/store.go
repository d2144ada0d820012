// Package memory хранилище в памяти процесса.
//
// Используется в тестах и при STORE_DRIVER=memory. Данные теряются
// при остановке процесса. Объекты копируются через JSON на входе и на
// выходе, поэтому поведение совпадает с SQL-хранилищами: изменения
// вызывающей стороны не видны до Update.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/repo"
)

type versionKey struct {
	id      uuid.UUID
	version int
}

// Store потокобезопасное хранилище опросников и сессий.
type Store struct {
	mu          sync.RWMutex
	assessments map[uuid.UUID]*domain.Assessment
	versions    map[versionKey][]byte
	sessions    map[uuid.UUID]*domain.Session
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		assessments: make(map[uuid.UUID]*domain.Assessment),
		versions:    make(map[versionKey][]byte),
		sessions:    make(map[uuid.UUID]*domain.Session),
	}
}

// Assessments возвращает хранилище опросников.
func (s *Store) Assessments() repo.AssessmentStore { return (*assessmentStore)(s) }

// Sessions возвращает хранилище сессий.
func (s *Store) Sessions() repo.SessionStore { return (*sessionStore)(s) }

// Close ничего не делает; нужен для единообразия с другими хранилищами.
func (s *Store) Close() error { return nil }

type assessmentStore Store

func (s *assessmentStore) Create(ctx context.Context, a *domain.Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assessments[a.ID]; exists {
		return repo.ErrAlreadyExists
	}
	return s.put(a)
}

func (s *assessmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assessments[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(a)
}

func (s *assessmentStore) GetVersion(ctx context.Context, id uuid.UUID, version int) (*domain.Questionnaire, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.versions[versionKey{id: id, version: version}]
	if !ok {
		return nil, repo.ErrNotFound
	}
	var q domain.Questionnaire
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &q, nil
}

func (s *assessmentStore) List(ctx context.Context, filter repo.AssessmentFilter) ([]domain.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Assessment
	for _, a := range s.assessments {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	var out []domain.Assessment
	for _, a := range page(matched, filter.Limit, filter.Offset) {
		c, err := clone(a)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *assessmentStore) Update(ctx context.Context, a *domain.Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assessments[a.ID]; !exists {
		return repo.ErrNotFound
	}
	return s.put(a)
}

func (s *assessmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assessments[id]; !exists {
		return repo.ErrNotFound
	}
	delete(s.assessments, id)
	for key := range s.versions {
		if key.id == id {
			delete(s.versions, key)
		}
	}
	for sid, sess := range s.sessions {
		if sess.AssessmentID == id {
			delete(s.sessions, sid)
		}
	}
	return nil
}

// put сохраняет копию опросника и его текущую версию. Вызывается под mu.
func (s *assessmentStore) put(a *domain.Assessment) error {
	c, err := clone(a)
	if err != nil {
		return err
	}
	def, err := json.Marshal(a.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}
	s.assessments[a.ID] = c
	s.versions[versionKey{id: a.ID, version: a.Version}] = def
	return nil
}

type sessionStore Store

func (s *sessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return repo.ErrAlreadyExists
	}
	c, err := clone(sess)
	if err != nil {
		return err
	}
	s.sessions[sess.ID] = c
	return nil
}

func (s *sessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(sess)
}

func (s *sessionStore) List(ctx context.Context, filter repo.SessionFilter) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Session
	for _, sess := range s.sessions {
		if filter.AssessmentID != nil && sess.AssessmentID != *filter.AssessmentID {
			continue
		}
		if filter.Status != "" && sess.Status != filter.Status {
			continue
		}
		matched = append(matched, sess)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return cloneSessions(page(matched, filter.Limit, filter.Offset))
}

func (s *sessionStore) Update(ctx context.Context, sess *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; !exists {
		return repo.ErrNotFound
	}
	c, err := clone(sess)
	if err != nil {
		return err
	}
	s.sessions[sess.ID] = c
	return nil
}

func (s *sessionStore) ListStale(ctx context.Context, before time.Time, limit int) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Session
	for _, sess := range s.sessions {
		if sess.Status == domain.SessionStatusInProgress && sess.UpdatedAt.Before(before) {
			matched = append(matched, sess)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
	})
	return cloneSessions(page(matched, limit, 0))
}

func (s *sessionStore) Expire(ctx context.Context, id uuid.UUID, before, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Status != domain.SessionStatusInProgress || !sess.UpdatedAt.Before(before) {
		return false, nil
	}
	at = at.UTC()
	sess.Status = domain.SessionStatusExpired
	sess.UpdatedAt = at
	sess.CompletedAt = &at
	return true, nil
}

func cloneSessions(in []*domain.Session) ([]domain.Session, error) {
	var out []domain.Session
	for _, sess := range in {
		c, err := clone(sess)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit = repo.PageLimit(limit); limit < len(items) {
		items = items[:limit]
	}
	return items
}

// clone возвращает глубокую копию через JSON, как при чтении из БД.
func clone[T any](v *T) (*T, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &out, nil
}
