// cmd/tools/match-cli/root.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"talent-matching-workers/internal/common/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "match-cli"

// cli carries state shared by all subcommands.
type cli struct {
	v   *viper.Viper
	out io.Writer
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), now: time.Now}

	root := &cobra.Command{
		Use:           app,
		Short:         "match-cli runs matching, compliance and rate lookups against JSON fixtures",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.out = cmd.OutOrStdout()
		},
	}

	root.PersistentFlags().StringP("fixture", "f", "", "fixture file with candidates and rate data")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "overall command timeout")

	_ = c.v.BindPFlag("fixture", root.PersistentFlags().Lookup("fixture"))
	_ = c.v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	_ = c.v.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	_ = c.v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))
	c.v.SetEnvPrefix("MATCH_CLI")
	c.v.AutomaticEnv()

	root.AddCommand(
		newMatchCmd(c),
		newEligibilityCmd(c),
		newMarketRateCmd(c),
		newRegistryCmd(c),
	)
	return root
}

func (c *cli) logger() logger.Logger {
	level := "warn"
	if c.v.GetBool("debug") {
		level = "debug"
	}
	format := "console"
	if c.v.GetBool("json") {
		format = "json"
	}
	return logger.NewForService(level, format, "stderr", app, "cli")
}

func (c *cli) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.v.GetDuration("timeout"))
}

func (c *cli) fixture() (*Fixture, error) {
	path := c.v.GetString("fixture")
	if path == "" {
		return nil, fmt.Errorf("--fixture is required")
	}
	return LoadFixture(path)
}

func (c *cli) print(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
