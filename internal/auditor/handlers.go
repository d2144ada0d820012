package auditor

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/engine"
	"github.com/shaiso/Pathway/internal/mq"
	"github.com/shaiso/Pathway/internal/repo"
	"github.com/shaiso/Pathway/internal/telemetry"
)

// Результаты проверки для метрики DefinitionsLinted.
const (
	resultOK          = "ok"
	resultInvalid     = "invalid"
	resultUnreachable = "unreachable"
)

// handleAssessmentSaved обрабатывает assessment.saved.
func (a *Auditor) handleAssessmentSaved(ctx context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.AssessmentSavedPayload](&d.Message)
	if err != nil {
		return err
	}

	if _, err := a.Audit(ctx, payload.AssessmentID, payload.Version); err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			a.logger.Debug("assessment gone before audit",
				"assessment_id", payload.AssessmentID,
				"version", payload.Version,
			)
			return nil
		}
		return err
	}
	return nil
}

// handleSessionCompleted обрабатывает session.completed.
func (a *Auditor) handleSessionCompleted(_ context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.SessionCompletedPayload](&d.Message)
	if err != nil {
		return err
	}

	if payload.DurationMS > 0 {
		telemetry.SessionDuration.Observe(float64(payload.DurationMS) / 1000)
	}
	if payload.Steps > 0 {
		telemetry.SessionPathLength.Observe(float64(payload.Steps))
	}

	telemetry.WithAssessmentID(
		telemetry.WithSessionID(a.logger, payload.SessionID.String()),
		payload.AssessmentID.String(),
	).Info("session completed",
		"version", payload.AssessmentVersion,
		"steps", payload.Steps,
		"duration_ms", payload.DurationMS,
	)
	return nil
}

// Audit проверяет версию опросника и обновляет метрики.
func (a *Auditor) Audit(ctx context.Context, id uuid.UUID, version int) (engine.LintReport, error) {
	q, err := a.assessments.GetVersion(ctx, id, version)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return engine.LintReport{}, fmt.Errorf("%w: %s v%d", ErrVersionNotFound, id, version)
		}
		return engine.LintReport{}, fmt.Errorf("get version: %w", err)
	}

	report := engine.Lint(q)
	a.record(id, version, report)
	return report, nil
}

// AuditPublished проверяет текущие версии всех опубликованных опросников.
func (a *Auditor) AuditPublished(ctx context.Context) (int, error) {
	audited := 0
	for offset := 0; ; offset += pollPageSize {
		page, err := a.assessments.List(ctx, repo.AssessmentFilter{
			Status: domain.AssessmentStatusPublished,
			Limit:  pollPageSize,
			Offset: offset,
		})
		if err != nil {
			return audited, fmt.Errorf("list published: %w", err)
		}

		for i := range page {
			report := engine.Lint(&page[i].Definition)
			a.record(page[i].ID, page[i].Version, report)
			audited++
		}

		if len(page) < pollPageSize {
			return audited, nil
		}
	}
}

func (a *Auditor) record(id uuid.UUID, version int, report engine.LintReport) {
	result := classify(report)
	telemetry.DefinitionsLinted.WithLabelValues(result).Inc()
	telemetry.UnreachableSteps.WithLabelValues(id.String()).Set(float64(len(report.Reachability.Unreachable)))

	logger := telemetry.WithAssessmentID(a.logger, id.String()).With("version", strconv.Itoa(version))
	switch result {
	case resultInvalid:
		logger.Warn("assessment definition is invalid", "error", report.Err)
	case resultUnreachable:
		logger.Warn("assessment has unreachable steps",
			"unreachable", report.Reachability.Unreachable,
			"dangling", report.Reachability.Dangling,
		)
	default:
		logger.Debug("assessment definition is clean")
	}
}

func classify(report engine.LintReport) string {
	switch {
	case report.Err != nil:
		return resultInvalid
	case !report.OK():
		return resultUnreachable
	default:
		return resultOK
	}
}
