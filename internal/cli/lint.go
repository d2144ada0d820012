package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/engine"
)

// ErrLintFailed: анкета невалидна или содержит недостижимые шаги.
var ErrLintFailed = errors.New("lint failed")

// NewLintCmd создаёт команду локальной проверки анкеты без обращения к API.
func NewLintCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE",
		Short: "Validate a questionnaire definition locally",
		Long: `Validate a questionnaire definition and report unreachable steps.

FILE may be - to read from stdin. Exit status is non-zero when the
definition is invalid or some steps can never be shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			data, err := readDefinition(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			var q domain.Questionnaire
			if err := json.Unmarshal(data, &q); err != nil {
				return fmt.Errorf("%w: %v", engine.ErrInvalidDefinition, err)
			}

			return printLint(out, LintFromReport(engine.Lint(&q)))
		},
	}
}

// LintFromReport конвертирует engine.LintReport в LintResponse.
func LintFromReport(r engine.LintReport) *LintResponse {
	resp := &LintResponse{
		Valid:       r.OK(),
		Reachable:   r.Reachability.ReachableIDs(),
		Unreachable: r.Reachability.Unreachable,
		Dangling:    r.Reachability.Dangling,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
		var verr *engine.ValidationError
		if errors.As(r.Err, &verr) {
			resp.ErrorStepID = verr.StepID
		}
	}
	return resp
}

// printLint выводит отчёт и возвращает ErrLintFailed для проблемной анкеты.
func printLint(out *Output, r *LintResponse) error {
	if out.IsJSON() {
		out.JSON(r)
	} else {
		status := "ok"
		if !r.Valid {
			status = "failed"
		}
		rows := [][]string{
			{"status", status},
			{"reachable", joinIDs(r.Reachable)},
			{"unreachable", joinIDs(r.Unreachable)},
			{"dangling", joinIDs(r.Dangling)},
		}
		if r.Error != "" {
			rows = append(rows, []string{"error", r.Error})
		}
		if r.ErrorStepID != "" {
			rows = append(rows, []string{"step", r.ErrorStepID})
		}
		out.Table([]string{"CHECK", "RESULT"}, rows)
	}

	if !r.Valid {
		return ErrLintFailed
	}
	return nil
}

func joinIDs(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
