// cmd/tools/match-cli/rates.go
package main

import (
	"talent-matching-workers/internal/models"
	bc "talent-matching-workers/internal/workers/rate-intelligence/bid-comparison"
	br "talent-matching-workers/internal/workers/rate-intelligence/budget-recommendation"
	gmr "talent-matching-workers/internal/workers/rate-intelligence/get-market-rate"

	"github.com/spf13/cobra"
)

func newMarketRateCmd(c *cli) *cobra.Command {
	var (
		query      models.MarketRateQuery
		factors    gmr.Factors
		bid        float64
		budget     bool
		hours      float64
		compliance bool
	)

	cmd := &cobra.Command{
		Use:   "market-rate",
		Short: "Look up market rates, budget tiers or a bid position",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := c.fixture()
			if err != nil {
				return err
			}

			log := c.logger()
			_, supplier := c.services(f, log)

			ctx, cancel := c.context()
			defer cancel()

			switch {
			case cmd.Flags().Changed("bid"):
				out, err := bc.NewHandler(bc.LoadConfig(), supplier, log).Execute(ctx, &bc.Input{Query: query, Rate: bid})
				if err != nil {
					return err
				}
				return c.print(out)

			case budget:
				out, err := br.NewHandler(br.LoadConfig(), supplier, log).Execute(ctx, &br.Input{
					Query:              query,
					ComplianceRequired: compliance,
					EstimatedHours:     hours,
				})
				if err != nil {
					return err
				}
				return c.print(out)
			}

			input := &gmr.Input{Query: query}
			for _, name := range []string{"years", "rating", "skill-match", "compliance"} {
				if cmd.Flags().Changed(name) {
					factors.ComplianceRequired = compliance
					input.Factors = &factors
					break
				}
			}
			out, err := gmr.NewHandler(gmr.LoadConfig(), supplier, log).Execute(ctx, input)
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}

	cmd.Flags().StringVar(&query.SkillCategory, "category", "", "skill category")
	cmd.Flags().StringVar(&query.PrimarySkill, "skill", "", "primary skill")
	cmd.Flags().StringVar(&query.ExperienceLevel, "level", "", "experience level: ENTRY, INTERMEDIATE, EXPERT")
	cmd.Flags().StringVar(&query.Region, "region", "", "region code")

	cmd.Flags().Float64Var(&factors.YearsExperience, "years", 0, "years of experience for factor analysis")
	cmd.Flags().Float64Var(&factors.AvgRating, "rating", 0, "average rating 0-5 for factor analysis")
	cmd.Flags().Float64Var(&factors.SkillMatch, "skill-match", 0, "skill match 0-1 for factor analysis")
	cmd.Flags().BoolVar(&compliance, "compliance", false, "compliance-required work")

	cmd.Flags().Float64Var(&bid, "bid", 0, "compare this hourly rate against the market")
	cmd.Flags().BoolVar(&budget, "budget", false, "recommend budget tiers")
	cmd.Flags().Float64Var(&hours, "hours", 0, "estimated hours for budget totals")
	return cmd
}
