// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	apperrors "talent-matching-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["candidateId", "criteria"],
	"properties": {
		"candidateId": {"type": "string", "minLength": 1},
		"rate": {"type": "number", "minimum": 0},
		"criteria": {
			"type": "object",
			"required": ["requiredSkills"],
			"properties": {
				"requiredSkills": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`

func TestSchema_ValidateJSON(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name        string
		input       string
		valid       bool
		errorFields []string
	}{
		{
			name:  "valid document",
			input: `{"candidateId": "f1", "rate": 40, "criteria": {"requiredSkills": ["Go"]}}`,
			valid: true,
		},
		{
			name:        "missing top-level field",
			input:       `{"criteria": {"requiredSkills": []}}`,
			errorFields: []string{"candidateId"},
		},
		{
			name:        "missing nested field",
			input:       `{"candidateId": "f1", "criteria": {}}`,
			errorFields: []string{"criteria.requiredSkills"},
		},
		{
			name:        "negative rate",
			input:       `{"candidateId": "f1", "rate": -1, "criteria": {"requiredSkills": []}}`,
			errorFields: []string{"rate"},
		},
		{
			name:        "empty variables",
			input:       "",
			errorFields: []string{"candidateId", "criteria"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := schema.ValidateJSON(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
			for _, f := range tt.errorFields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.Errors)
			}
		})
	}
}

func TestSchema_MalformedJSON(t *testing.T) {
	res := MustCompile(testSchema).ValidateJSON(`{"candidateId": `)
	assert.False(t, res.Valid)
	assert.Equal(t, "INVALID_JSON", res.Errors[0].Code)
}

func TestValidationResult_Err(t *testing.T) {
	schema := MustCompile(testSchema)

	assert.NoError(t, schema.Validate(map[string]interface{}{
		"candidateId": "f1",
		"criteria":    map[string]interface{}{"requiredSkills": []interface{}{"Go"}},
	}).Err())

	err := schema.Validate(map[string]interface{}{"candidateId": ""}).Err()
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInputValidationFailed, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Metadata, "validationErrors")
}

func TestValidationResult_GetErrorsForField(t *testing.T) {
	res := &ValidationResult{Errors: []ValidationError{
		{Field: "criteria.requiredSkills", Message: "required"},
		{Field: "criteria", Message: "bad"},
		{Field: "criteriaX", Message: "other"},
	}}
	assert.Len(t, res.GetErrorsForField("criteria"), 2)
	assert.Equal(t, []string{"criteria.requiredSkills: required", "criteria: bad", "criteriaX: other"}, res.GetErrorMessages())
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestCompileValue(t *testing.T) {
	schema, err := CompileValue(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"rate"},
		"properties": map[string]interface{}{
			"rate": map[string]interface{}{"type": "number"},
		},
	})
	require.NoError(t, err)

	assert.True(t, schema.ValidateJSON(`{"rate": 12.5}`).Valid)
	assert.True(t, schema.ValidateJSON(`{}`).HasErrors("rate"))
}
