package auditor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/mq"
	"github.com/shaiso/Pathway/internal/repo/memory"
	"github.com/shaiso/Pathway/internal/telemetry"
)

func cleanDefinition() domain.Questionnaire {
	return domain.Questionnaire{
		Groups: []domain.Group{
			{ID: "g1", Steps: []domain.StepRef{{ID: "first"}, {ID: "second"}}},
		},
		Steps: domain.NewStepTable(
			domain.Step{ID: "first", Title: "First"},
			domain.Step{ID: "second", Title: "Second"},
		),
	}
}

// orphanDefinition содержит шаг вне групп: он невалиден и недостижим.
func orphanDefinition() domain.Questionnaire {
	q := cleanDefinition()
	q.Steps.Put(domain.Step{ID: "lost", Title: "Lost"})
	return q
}

func newAuditor(t *testing.T, defs map[string]domain.Questionnaire, published ...string) (*Auditor, map[string]*domain.Assessment) {
	t.Helper()

	store := memory.New()
	isPublished := make(map[string]bool)
	for _, name := range published {
		isPublished[name] = true
	}

	created := make(map[string]*domain.Assessment)
	for name, def := range defs {
		a := domain.NewAssessment(name, "")
		a.Definition = def
		if isPublished[name] {
			a.Publish()
		}
		if err := store.Assessments().Create(context.Background(), a); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		created[name] = a
	}

	return New(Config{
		Assessments: store.Assessments(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}), created
}

func TestAudit(t *testing.T) {
	aud, created := newAuditor(t, map[string]domain.Questionnaire{
		"clean":  cleanDefinition(),
		"orphan": orphanDefinition(),
	})

	tests := []struct {
		name        string
		assessment  string
		wantOK      bool
		wantUnreach int
	}{
		{"clean definition", "clean", true, 0},
		{"orphan step", "orphan", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := created[tt.assessment]
			report, err := aud.Audit(context.Background(), a.ID, a.Version)
			if err != nil {
				t.Fatalf("Audit() error = %v", err)
			}
			if report.OK() != tt.wantOK {
				t.Errorf("OK() = %v, want %v (err %v)", report.OK(), tt.wantOK, report.Err)
			}

			gauge := telemetry.UnreachableSteps.WithLabelValues(a.ID.String())
			if got := testutil.ToFloat64(gauge); got != float64(tt.wantUnreach) {
				t.Errorf("unreachable gauge = %v, want %d", got, tt.wantUnreach)
			}
		})
	}
}

func TestAudit_MissingVersion(t *testing.T) {
	aud, created := newAuditor(t, map[string]domain.Questionnaire{"clean": cleanDefinition()})

	_, err := aud.Audit(context.Background(), created["clean"].ID, 99)
	if !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("error = %v, want ErrVersionNotFound", err)
	}
}

func TestClassify(t *testing.T) {
	clean := cleanDefinition()
	orphan := orphanDefinition()

	aud, created := newAuditor(t, map[string]domain.Questionnaire{
		"clean":  clean,
		"orphan": orphan,
	})

	for name, want := range map[string]string{"clean": resultOK, "orphan": resultInvalid} {
		a := created[name]
		report, err := aud.Audit(context.Background(), a.ID, a.Version)
		if err != nil {
			t.Fatal(err)
		}
		if got := classify(report); got != want {
			t.Errorf("classify(%s) = %q, want %q", name, got, want)
		}
	}
}

func TestAuditPublished(t *testing.T) {
	aud, _ := newAuditor(t, map[string]domain.Questionnaire{
		"draft":      cleanDefinition(),
		"published":  cleanDefinition(),
		"published2": orphanDefinition(),
	}, "published", "published2")

	n, err := aud.AuditPublished(context.Background())
	if err != nil {
		t.Fatalf("AuditPublished() error = %v", err)
	}
	if n != 2 {
		t.Errorf("audited = %d, want 2", n)
	}
}

func TestHandleAssessmentSaved(t *testing.T) {
	aud, created := newAuditor(t, map[string]domain.Questionnaire{"clean": cleanDefinition()})
	a := created["clean"]

	before := testutil.ToFloat64(telemetry.DefinitionsLinted.WithLabelValues(resultOK))

	tests := []struct {
		name      string
		payload   any
		permanent bool
	}{
		{"known version", mq.AssessmentSavedPayload{AssessmentID: a.ID, Version: a.Version}, false},
		{"deleted assessment is acked", mq.AssessmentSavedPayload{AssessmentID: uuid.New(), Version: 1}, false},
		{"broken payload", map[string]any{"assessment_id": 42}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := mq.NewMessage(mq.MessageTypeAssessmentSaved, tt.payload)
			if err != nil {
				t.Fatal(err)
			}

			err = aud.handleAssessmentSaved(context.Background(), &mq.Delivery{Message: *msg})
			if tt.permanent {
				if !errors.Is(err, mq.ErrPermanent) {
					t.Errorf("error = %v, want ErrPermanent", err)
				}
				return
			}
			if err != nil {
				t.Errorf("handleAssessmentSaved() error = %v", err)
			}
		})
	}

	if after := testutil.ToFloat64(telemetry.DefinitionsLinted.WithLabelValues(resultOK)); after != before+1 {
		t.Errorf("ok lint counter grew by %v, want 1", after-before)
	}
}

func TestHandleSessionCompleted(t *testing.T) {
	aud, _ := newAuditor(t, nil)

	msg, err := mq.NewMessage(mq.MessageTypeSessionCompleted, mq.SessionCompletedPayload{
		SessionID:    uuid.New(),
		AssessmentID: uuid.New(),
		Steps:        4,
		DurationMS:   125000,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := aud.handleSessionCompleted(context.Background(), &mq.Delivery{Message: *msg}); err != nil {
		t.Fatalf("handleSessionCompleted() error = %v", err)
	}
	if got := testutil.CollectAndCount(telemetry.SessionPathLength); got != 1 {
		t.Errorf("histogram series count = %d, want 1", got)
	}
}

func TestStartStopWithoutBroker(t *testing.T) {
	aud, _ := newAuditor(t, map[string]domain.Questionnaire{"clean": cleanDefinition()}, "clean")

	if err := aud.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	aud.Stop()
}
