// cmd/tools/match-cli/match.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/matching"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/internal/rateintel"
	fm "talent-matching-workers/internal/workers/matching/find-matches"
	"talent-matching-workers/pkg/registry"

	"github.com/spf13/cobra"
)

// services builds the matching service and rate supplier over fixture data.
func (c *cli) services(f *Fixture, log logger.Logger) (*matching.Service, *rateintel.Supplier) {
	supplier := rateintel.NewSupplier(newFixtureRateStore(f), nil, rateintel.Config{}, log).WithClock(c.now)
	svc := matching.NewService(matching.NewMemoryStore(f.Candidates...), matching.Config{}, log,
		matching.WithSkillGraph(matching.NewStaticSkillGraph(f.RelatedSkills)),
		matching.WithMarketRates(supplier),
		matching.WithClock(c.now),
	)
	return svc, supplier
}

func newMatchCmd(c *cli) *cobra.Command {
	var (
		criteriaPath string
		opts         fm.Options
		sortBy       string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank fixture candidates against project criteria",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := c.fixture()
			if err != nil {
				return err
			}
			criteria, err := readCriteria(criteriaPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			opts.SortBy = models.SortField(sortBy)

			log := c.logger()
			svc, _ := c.services(f, log)

			ctx, cancel := c.context()
			defer cancel()

			out, err := fm.NewHandler(fm.LoadConfig(), svc, log).Execute(ctx, &fm.Input{Criteria: *criteria, Options: opts})
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}

	cmd.Flags().StringVarP(&criteriaPath, "criteria", "c", "", "criteria JSON file ('-' for stdin)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "result page")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "results per page")
	cmd.Flags().StringVar(&sortBy, "sort", string(models.SortByScore), "sort field: score, rate, rating, trust")
	cmd.Flags().IntVar(&opts.TimeoutMs, "run-timeout-ms", 0, "scoring budget in milliseconds")
	_ = cmd.MarkFlagRequired("criteria")
	return cmd
}

// readCriteria loads criteria and validates them with the find-matches job
// schema.
func readCriteria(path string, stdin io.Reader) (*models.MatchingCriteria, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read criteria: %w", err)
	}

	vars := fmt.Sprintf(`{"criteria": %s}`, raw)
	if err := registry.MustInputSchema(fm.TaskType).ValidateJSON(vars).Err(); err != nil {
		return nil, err
	}

	var criteria models.MatchingCriteria
	if err := json.Unmarshal(raw, &criteria); err != nil {
		return nil, fmt.Errorf("parse criteria: %w", err)
	}
	return &criteria, nil
}
