// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"talent-matching-workers/internal/common/validation"
)

//go:embed activity-registry.json
var builtinJSON []byte

var (
	builtinOnce sync.Once
	builtin     *ActivityRegistry
	builtinErr  error
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Builtin returns the registry compiled into the binary. Callers must not
// modify it.
func Builtin() *ActivityRegistry {
	builtinOnce.Do(func() {
		builtin, builtinErr = Parse(builtinJSON)
	})
	if builtinErr != nil {
		panic(builtinErr)
	}
	return builtin
}

// BuiltinJSON returns the raw embedded registry document.
func BuiltinJSON() []byte {
	out := make([]byte, len(builtinJSON))
	copy(out, builtinJSON)
	return out
}

// MustInputSchema compiles the input schema of a builtin task type. Workers
// call it when their package is initialised.
func MustInputSchema(taskType string) *validation.Schema {
	activity, ok := Builtin().Find(taskType)
	if !ok {
		panic(fmt.Sprintf("registry: no activity for task type %q", taskType))
	}
	schema, err := activity.CompileInput()
	if err != nil {
		panic(fmt.Sprintf("registry: %s: %v", taskType, err))
	}
	return schema
}

// Find looks up an activity by task type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TaskTypes lists the registered task types in registry order.
func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	return out
}

func (a *Activity) CompileInput() (*validation.Schema, error) {
	if len(a.InputSchema) == 0 {
		return validation.Compile(`{"type": "object"}`)
	}
	return validation.CompileValue(a.InputSchema)
}

// Validate checks required fields, unique ids and task types, and that every
// input schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for i := range r.Activities {
		activity := &r.Activities[i]
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true

		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if _, err := activity.CompileInput(); err != nil {
			return fmt.Errorf("activity %s input schema: %w", activity.ID, err)
		}
	}
	return nil
}

// Save writes the registry as indented JSON, creating the directory if needed.
func Save(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
