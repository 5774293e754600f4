// cmd/tools/match-cli/registry.go
package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"talent-matching-workers/pkg/registry"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func newRegistryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and maintain activity registries",
	}
	cmd.AddCommand(
		newRegistryListCmd(c),
		newRegistryExportCmd(c),
		newRegistryValidateCmd(c),
		newRegistrySetCmd(c),
	)
	return cmd
}

// loadRegistry reads path, or the built-in registry when path is empty.
func loadRegistry(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Parse(registry.BuiltinJSON())
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load registry %s: %w", path, err)
	}
	return reg, nil
}

func newRegistryListCmd(c *cli) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered task types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(path)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tTIMEOUT\tRETRIES\tSTATUS\tNAME")
			for _, a := range reg.Activities {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", a.TaskType, a.Category, a.Timeout, a.Retries, a.Status, a.DisplayName)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "registry file (default built-in)")
	return cmd
}

func newRegistryExportCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the built-in activity registry JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := registry.BuiltinJSON()
			if out == "" {
				_, err := c.out.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write registry: %w", err)
			}
			fmt.Fprintf(c.out, "Registry written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newRegistryValidateCmd(c *cli) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check ids, task types and input schemas of a registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(c.out, "Registry valid: %d activities\n", len(reg.Activities))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "registry file (default built-in)")
	return cmd
}

// newRegistrySetCmd edits job settings of one activity in a registry file.
// Only flags that were given are applied.
func newRegistrySetCmd(c *cli) *cobra.Command {
	var (
		path     string
		taskType string
		timeout  string
		retries  string
		status   string
		version  string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update timeout, retries, status or version of an activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				return fmt.Errorf("--path is required")
			}
			reg, err := loadRegistry(path)
			if err != nil {
				return err
			}
			activity, ok := reg.Find(taskType)
			if !ok {
				return fmt.Errorf("no activity for task type %q", taskType)
			}

			flags := cmd.Flags()
			if flags.Changed("job-timeout") {
				if _, err := time.ParseDuration(timeout); err != nil {
					return fmt.Errorf("invalid --job-timeout: %w", err)
				}
				activity.Timeout = timeout
			}
			if flags.Changed("retries") {
				n, err := cast.ToIntE(retries)
				if err != nil || n < 0 {
					return fmt.Errorf("invalid --retries %q", retries)
				}
				activity.Retries = n
			}
			if flags.Changed("status") {
				activity.Status = status
			}
			if flags.Changed("version") {
				activity.Version = version
			}

			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			reg.LastUpdated = c.now().UTC().Format(time.RFC3339)
			if err := registry.Save(reg, path); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Updated %s in %s\n", taskType, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "registry file to edit")
	cmd.Flags().StringVarP(&taskType, "task-type", "t", "", "task type of the activity")
	cmd.Flags().StringVar(&timeout, "job-timeout", "", "job timeout, e.g. 45s")
	cmd.Flags().StringVar(&retries, "retries", "", "job retries")
	cmd.Flags().StringVar(&status, "status", "", "activity status")
	cmd.Flags().StringVar(&version, "version", "", "activity version")
	_ = cmd.MarkFlagRequired("task-type")
	return cmd
}
