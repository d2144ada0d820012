package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSessionCmd создаёт группу команд для прохождения опросника.
func NewSessionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions", "s"},
		Short:   "Take an assessment step by step",
	}

	cmd.AddCommand(
		newSessionStartCmd(clientFn, outputFn),
		newSessionShowCmd(clientFn, outputFn),
		newSessionAnswerCmd(clientFn, outputFn),
		newSessionNextCmd(clientFn, outputFn),
		newSessionBackCmd(clientFn, outputFn),
	)

	return cmd
}

func newSessionStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "start ASSESSMENT_ID",
		Short: "Start a session of a published assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			s, err := client.StartSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Session started: %s", s.ID))
			printSession(out, s)
			return nil
		},
	}
}

func newSessionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show the current step of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			s, err := client.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printSession(out, s)
			return nil
		},
	}
}

func newSessionAnswerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var sets []string
	var file string
	var advance bool

	cmd := &cobra.Command{
		Use:   "answer ID",
		Short: "Save answers for the current step",
		Long: `Save answers for the current step.

Values passed with --set are decoded as JSON when possible, so
--set age=42 stores a number and --set 'tags=["a","b"]' a list.
Anything else is stored as a string.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			answers := make(map[string]any)
			if file != "" {
				data, err := readDefinition(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &answers); err != nil {
					return fmt.Errorf("answers file must be a JSON object: %w", err)
				}
			}
			for _, kv := range sets {
				name, value, err := parseAssignment(kv)
				if err != nil {
					return err
				}
				answers[name] = value
			}
			if len(answers) == 0 {
				return fmt.Errorf("no answers: pass --set name=value or --file")
			}

			s, err := client.SaveAnswers(cmd.Context(), args[0], answers)
			if err != nil {
				return err
			}
			if advance {
				if s, err = client.Next(cmd.Context(), args[0]); err != nil {
					return err
				}
			}

			printSession(out, s)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Answer as name=value (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON object with answers (- for stdin)")
	cmd.Flags().BoolVar(&advance, "next", false, "Move to the next step after saving")

	return cmd
}

func newSessionNextCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "next ID",
		Short: "Move to the next step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			s, err := client.Next(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if s.Status == "COMPLETED" {
				out.Success(fmt.Sprintf("Session completed: %s", s.ID))
			}
			printSession(out, s)
			return nil
		},
	}
}

func newSessionBackCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "back ID",
		Short: "Return to the previous step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			s, err := client.Back(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printSession(out, s)
			return nil
		},
	}
}

// --- Helpers ---

// parseAssignment разбирает name=value. Значение декодируется как JSON,
// если это возможно, иначе остаётся строкой.
func parseAssignment(kv string) (string, any, error) {
	name, raw, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid --set %q: expected name=value", kv)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return name, raw, nil
	}
	return name, value, nil
}

// printSession выводит текущий шаг сессии и видимые поля.
func printSession(out *Output, s *SessionResponse) {
	if out.IsJSON() {
		out.JSON(s)
		return
	}

	out.Table(
		[]string{"ID", "STATUS", "VERSION", "STEP", "PROGRESS"},
		[][]string{{
			s.ID,
			s.Status,
			fmt.Sprintf("%d", s.AssessmentVersion),
			s.CurrentStepID,
			fmt.Sprintf("%d/%d (%d%%)", s.Progress.Answered, s.Progress.Total, s.Progress.Percent),
		}},
	)

	if s.Step == nil {
		return
	}

	out.Text("\n")
	if s.GroupTitle != "" {
		out.Text("[%s]\n", s.GroupTitle)
	}
	out.Text("%s\n", s.Step.Title)
	if s.Step.Description != "" {
		out.Text("%s\n", s.Step.Description)
	}

	visible := make(map[string]bool, len(s.VisibleFields))
	for _, name := range s.VisibleFields {
		visible[name] = true
	}
	key := s.Step.Key
	if key == "" {
		key = s.Step.ID
	}
	answered := s.Answers[key]

	rows := make([][]string, 0, len(s.Step.Fields))
	for _, f := range s.Step.Fields {
		if !visible[f.Name] {
			continue
		}
		required := ""
		if f.Required {
			required = "yes"
		}
		value := ""
		if v, ok := answered[f.Name]; ok && v != nil {
			value = fmt.Sprint(v)
		}
		rows = append(rows, []string{f.Name, f.Type, required, f.Label, value})
	}
	if len(rows) > 0 {
		out.Text("\n")
		out.Table([]string{"FIELD", "TYPE", "REQUIRED", "LABEL", "ANSWER"}, rows)
	}
}
