// cmd/tools/match-cli/eligibility.go
package main

import (
	"fmt"
	"strings"
	"time"

	"talent-matching-workers/internal/compliance"
	"talent-matching-workers/internal/models"
	ce "talent-matching-workers/internal/workers/compliance/check-eligibility"
	ga "talent-matching-workers/internal/workers/compliance/gap-analysis"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func newEligibilityCmd(c *cli) *cobra.Command {
	var (
		candidateID string
		required    []string
		clearance   string
		asOf        string
		gaps        bool
	)

	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Check one fixture candidate against compliance requirements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := c.fixture()
			if err != nil {
				return err
			}

			var level *models.ClearanceLevel
			if clearance != "" {
				l := models.ClearanceLevel(strings.ToUpper(clearance))
				if !l.Valid() {
					return fmt.Errorf("unknown clearance level %q", clearance)
				}
				level = &l
			}
			at, err := parseAsOf(asOf)
			if err != nil {
				return err
			}

			log := c.logger()
			svc, _ := c.services(f, log)
			checker := compliance.NewChecker(nil, log)

			ctx, cancel := c.context()
			defer cancel()

			if gaps {
				out, err := ga.NewHandler(ga.LoadConfig(), svc, checker, log).Execute(ctx, &ga.Input{
					CandidateID:        candidateID,
					RequiredCompliance: required,
					MinClearance:       level,
					AsOf:               at,
				})
				if err != nil {
					return err
				}
				return c.print(out)
			}

			out, err := ce.NewHandler(ce.LoadConfig(), svc, checker, log).Execute(ctx, &ce.Input{
				CandidateID:        candidateID,
				RequiredCompliance: required,
				MinClearance:       level,
				AsOf:               at,
			})
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}

	cmd.Flags().StringVar(&candidateID, "candidate", "", "candidate id")
	cmd.Flags().StringSliceVarP(&required, "require", "r", nil, "required compliance codes, e.g. HIPAA,SOC2")
	cmd.Flags().StringVar(&clearance, "clearance", "", "minimum clearance level")
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluation date (default now)")
	cmd.Flags().BoolVar(&gaps, "gaps", false, "report remediation gaps instead of eligibility")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}

func parseAsOf(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := cast.ToTimeE(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --as-of %q: %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}
