package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var assessmentHeaders = []string{"ID", "TITLE", "VERSION", "STATUS", "STEPS", "UPDATED"}

func assessmentRow(a AssessmentSummary) []string {
	return []string{a.ID, a.Title, strconv.Itoa(a.Version), a.Status, strconv.Itoa(a.Steps), a.UpdatedAt}
}

// NewAssessmentCmd создаёт группу команд для управления опросниками.
func NewAssessmentCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assessment",
		Aliases: []string{"assessments", "a"},
		Short:   "Manage assessments",
	}

	cmd.AddCommand(
		newAssessmentListCmd(clientFn, outputFn),
		newAssessmentCreateCmd(clientFn, outputFn),
		newAssessmentShowCmd(clientFn, outputFn),
		newAssessmentUpdateCmd(clientFn, outputFn),
		newAssessmentDeleteCmd(clientFn, outputFn),
		newAssessmentPublishCmd(clientFn, outputFn),
		newAssessmentLintCmd(clientFn, outputFn),
	)

	return cmd
}

func newAssessmentListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts ListAssessmentsOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assessments",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			assessments, err := client.ListAssessments(cmd.Context(), opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(assessments))
			for i, a := range assessments {
				rows[i] = assessmentRow(a)
			}

			out.Print(assessmentHeaders, rows, assessments)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (draft, published)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of assessments")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of assessments to skip")

	return cmd
}

func newAssessmentCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req CreateAssessmentRequest
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if file != "" {
				def, err := readDefinition(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Definition = def
			}

			a, err := client.CreateAssessment(cmd.Context(), req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Assessment created: %s", a.ID))
			out.Print(assessmentHeaders, [][]string{assessmentRow(a.AssessmentSummary)}, a)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Assessment title (required)")
	cmd.Flags().StringVar(&req.CreatedBy, "created-by", "", "Author")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Questionnaire definition JSON file (- for stdin)")
	cmd.MarkFlagRequired("title")

	return cmd
}

func newAssessmentShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var definition bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show assessment details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			a, err := client.GetAssessment(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if definition {
				out.JSON(a.Definition)
				return nil
			}

			out.Print(assessmentHeaders, [][]string{assessmentRow(a.AssessmentSummary)}, a)
			return nil
		},
	}

	cmd.Flags().BoolVar(&definition, "definition", false, "Print only the questionnaire definition")

	return cmd
}

func newAssessmentUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var title string
	var file string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an assessment",
		Long:  "Update the title or replace the definition. A new definition bumps the version.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateAssessmentRequest{}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if file != "" {
				def, err := readDefinition(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Definition = def
			}
			if req.Title == nil && req.Definition == nil {
				return fmt.Errorf("nothing to update: pass --title or --file")
			}

			a, err := client.UpdateAssessment(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Assessment updated: %s (version %d)", a.ID, a.Version))
			out.Print(assessmentHeaders, [][]string{assessmentRow(a.AssessmentSummary)}, a)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&file, "file", "f", "", "New definition JSON file (- for stdin)")

	return cmd
}

func newAssessmentDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an assessment and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteAssessment(cmd.Context(), args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Assessment deleted: %s", args[0]))
			return nil
		},
	}
}

func newAssessmentPublishCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "publish ID",
		Short: "Publish an assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			a, err := client.PublishAssessment(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Assessment published: %s (version %d)", a.ID, a.Version))
			out.Print(assessmentHeaders, [][]string{assessmentRow(a.AssessmentSummary)}, a)
			return nil
		},
	}
}

func newAssessmentLintCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "lint [ID]",
		Short: "Check a stored assessment or a definition file on the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var (
				report *LintResponse
				err    error
			)
			switch {
			case len(args) == 1:
				report, err = client.LintAssessment(cmd.Context(), args[0])
			case file != "":
				var def json.RawMessage
				if def, err = readDefinition(file, cmd.InOrStdin()); err != nil {
					return err
				}
				report, err = client.LintDefinition(cmd.Context(), def)
			default:
				return fmt.Errorf("pass an assessment ID or --file")
			}
			if err != nil {
				return err
			}

			return printLint(out, report)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Definition JSON file (- for stdin)")

	return cmd
}

// --- Helpers ---

// readDefinition читает JSON анкеты из файла или stdin.
func readDefinition(path string, stdin io.Reader) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("read definition: %s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}
