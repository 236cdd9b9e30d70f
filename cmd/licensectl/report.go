package main

import (
	"fmt"

	goLicense "github.com/MrEthical07/goLicense"
	"github.com/spf13/cobra"
)

type reportOutput struct {
	Posture  goLicense.SecurityReport `json:"posture"`
	Findings []finding                `json:"findings"`
}

type finding struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func newReportCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the engine security posture and configuration findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := a.method()
			if err != nil {
				return err
			}
			e, err := a.engineFor()
			if err != nil {
				return err
			}

			lint := a.engineConfig(method).Lint()
			out := reportOutput{Posture: e.SecurityReport(), Findings: make([]finding, 0, len(lint))}
			for _, w := range lint {
				out.Findings = append(out.Findings, finding{Code: w.Code, Severity: w.Severity.String(), Message: w.Message})
			}
			if err := writeJSON(a.out, out); err != nil {
				return err
			}

			if strict {
				if err := lint.AsError(goLicense.LintHigh); err != nil {
					return fmt.Errorf("strict: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a HIGH severity finding is present")
	return cmd
}
