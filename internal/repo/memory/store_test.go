package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/repo"
)

func TestAssessmentStore(t *testing.T) {
	ctx := context.Background()
	store := New()
	assessments := store.Assessments()

	a := domain.NewAssessment("Intake", "")
	if err := assessments.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := assessments.Create(ctx, a); !errors.Is(err, repo.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	a.Title = "changed locally"
	got, err := assessments.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Intake" {
		t.Fatalf("stored copy must not alias caller: title = %q", got.Title)
	}

	got.Revise(domain.Questionnaire{
		Groups: []domain.Group{{ID: "g", Steps: []domain.StepRef{{ID: "only"}}}},
		Steps:  domain.NewStepTable(domain.Step{ID: "only"}),
	})
	if err := assessments.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	v1, err := assessments.GetVersion(ctx, a.ID, 1)
	if err != nil {
		t.Fatalf("get v1: %v", err)
	}
	if !v1.Steps.Has("welcome-step") {
		t.Fatalf("v1 steps = %v", v1.Steps.Keys())
	}
	v2, err := assessments.GetVersion(ctx, a.ID, 2)
	if err != nil {
		t.Fatalf("get v2: %v", err)
	}
	if !v2.Steps.Has("only") {
		t.Fatalf("v2 steps = %v", v2.Steps.Keys())
	}

	if err := assessments.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := assessments.GetVersion(ctx, a.ID, 1); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("versions should be deleted, got %v", err)
	}
	if err := assessments.Update(ctx, got); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssessmentList(t *testing.T) {
	ctx := context.Background()
	store := New()

	for i, title := range []string{"a", "b", "c"} {
		a := domain.NewAssessment(title, "")
		a.UpdatedAt = time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC)
		if title == "b" {
			a.Status = domain.AssessmentStatusPublished
		}
		if err := store.Assessments().Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter repo.AssessmentFilter
		want   []string
	}{
		{"all newest first", repo.AssessmentFilter{}, []string{"c", "b", "a"}},
		{"by status", repo.AssessmentFilter{Status: domain.AssessmentStatusPublished}, []string{"b"}},
		{"limit", repo.AssessmentFilter{Limit: 2}, []string{"c", "b"}},
		{"offset", repo.AssessmentFilter{Offset: 2}, []string{"a"}},
		{"offset past end", repo.AssessmentFilter{Offset: 5}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Assessments().List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Title != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, got[i].Title, tt.want[i])
				}
			}
		})
	}
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := New()
	sessions := store.Sessions()

	assessmentID := uuid.New()
	stale := domain.NewSession(assessmentID, 1, "a")
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	fresh := domain.NewSession(assessmentID, 1, "a")
	expired := domain.NewSession(uuid.New(), 1, "a")
	expired.MarkExpired()
	expired.UpdatedAt = time.Now().Add(-2 * time.Hour)

	for _, s := range []*domain.Session{stale, fresh, expired} {
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := sessions.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.SetStepAnswers("a", map[string]any{"x": 1.0})
	if err := sessions.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := sessions.GetByID(ctx, fresh.ID)
	if again.StepAnswers("a")["x"] != 1.0 {
		t.Fatalf("answers = %v", again.Answers)
	}

	byAssessment, err := sessions.List(ctx, repo.SessionFilter{AssessmentID: &assessmentID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byAssessment) != 2 {
		t.Fatalf("len = %d, want 2", len(byAssessment))
	}

	staleList, err := sessions.ListStale(ctx, time.Now().Add(-time.Hour), 0)
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(staleList) != 1 || staleList[0].ID != stale.ID {
		t.Fatalf("stale = %+v", staleList)
	}

	if _, err := sessions.GetByID(ctx, uuid.New()); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Sessions().GetByID(ctx, uuid.New()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSessionExpire(t *testing.T) {
	ctx := context.Background()
	sessions := New().Sessions()

	before := time.Now().Add(-time.Hour)
	stale := domain.NewSession(uuid.New(), 1, "a")
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	touched := domain.NewSession(uuid.New(), 1, "a")
	touched.UpdatedAt = time.Now().Add(-2 * time.Hour)
	for _, s := range []*domain.Session{stale, touched} {
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Ответ сохранён после того, как сессия попала в выборку устаревших.
	got, _ := sessions.GetByID(ctx, touched.ID)
	got.SetStepAnswers("a", map[string]any{"x": "kept"})
	if err := sessions.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	tests := []struct {
		name string
		id   uuid.UUID
		want bool
	}{
		{"stale", stale.ID, true},
		{"already expired", stale.ID, false},
		{"touched after listing", touched.ID, false},
		{"missing", uuid.New(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := sessions.Expire(ctx, tt.id, before, time.Now())
			if err != nil {
				t.Fatalf("expire: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Expire() = %v, want %v", ok, tt.want)
			}
		})
	}

	kept, _ := sessions.GetByID(ctx, touched.ID)
	if kept.Status != domain.SessionStatusInProgress || kept.StepAnswers("a")["x"] != "kept" {
		t.Errorf("touched session = %s %v", kept.Status, kept.Answers)
	}
	gone, _ := sessions.GetByID(ctx, stale.ID)
	if gone.Status != domain.SessionStatusExpired || gone.CompletedAt == nil {
		t.Errorf("stale session = %s completed_at=%v", gone.Status, gone.CompletedAt)
	}
}
