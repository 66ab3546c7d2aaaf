package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"contractrisk/internal/app/domains/entity/etrisk"
	"contractrisk/internal/app/pkg/errorx"
)

type evaluateOptions struct {
	text       string
	compact    bool
	failOnHigh bool
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate [file|-]",
		Short: "Evaluate a contract and print the risk report as JSON",
		Long: `Reads contract text from a file, from stdin ("-") or from --text,
runs every risk criterion against the configured LLM and prints the report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readContract(cmd.InOrStdin(), opts.text, args)
			if err != nil {
				return err
			}

			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			evaluator, err := newEvaluator(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			report, err := evaluator.Evaluate(cmd.Context(), text)
			if err != nil {
				return err
			}

			if err := writeReport(cmd.OutOrStdout(), report, opts.compact); err != nil {
				return err
			}
			if opts.failOnHigh && report.OverallRisk == etrisk.VerdictHigh {
				return errHighRisk
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "contract text (instead of a file)")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "print single-line JSON")
	cmd.Flags().BoolVar(&opts.failOnHigh, "fail-on-high", false, "exit with status 2 when overall risk is high")
	return cmd
}

func readContract(stdin io.Reader, text string, args []string) (string, error) {
	if text != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("--text and a file argument are mutually exclusive")
		}
		return text, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("a contract file, \"-\" or --text is required")
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", errorx.ErrInputRead, args[0], err)
	}
	return string(data), nil
}

func writeReport(w io.Writer, report *etrisk.Report, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}
