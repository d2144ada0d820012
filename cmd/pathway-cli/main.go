// Pathway CLI: инструмент командной строки для управления опросниками
// и прохождения анкет через HTTP API.
//
// Использование:
//
//	pathway [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	assessment  Управление опросниками
//	session     Прохождение анкеты
//	lint        Локальная проверка файла анкеты
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Pathway/internal/cli"
	"github.com/shaiso/Pathway/internal/config"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "pathway",
		Short:         "Pathway CLI: conditional questionnaires",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", cfg.APIURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL, cfg.Timeout) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewAssessmentCmd(clientFn, outputFn),
		cli.NewSessionCmd(clientFn, outputFn),
		cli.NewLintCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
