// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"talent-matching-workers/pkg/registry"
)

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., find-matches)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "", "Path to an activity registry JSON file (default: built-in registry)")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator -activity <id> [-output <dir>] [-registry <path>] [-force]")
		fmt.Println("\nExample:")
		fmt.Println("  go run ./cmd/tools/worker-generator -activity bid-comparison -output /tmp/workers")
		os.Exit(1)
	}

	reg := registry.Builtin()
	if *registryPath != "" {
		var err error
		reg, err = registry.LoadRegistry(*registryPath)
		if err != nil {
			fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
			os.Exit(1)
		}
	}

	found := findActivity(reg, *activity)
	if found == nil {
		fmt.Printf("Activity '%s' not found in registry\n", *activity)
		os.Exit(1)
	}

	written, err := Generate(found, *outputDir, *force)
	for _, path := range written {
		fmt.Printf("✓ Generated %s\n", path)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement Execute in handler.go\n")
	fmt.Printf("  2. Fill in Output in models.go\n")
	fmt.Printf("  3. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  4. Add the worker to configs/config.yaml\n")
}

// findActivity looks up an activity by id, falling back to task type.
func findActivity(reg *registry.ActivityRegistry, id string) *registry.Activity {
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			return &reg.Activities[i]
		}
	}
	if a, ok := reg.Find(id); ok {
		return a
	}
	return nil
}
