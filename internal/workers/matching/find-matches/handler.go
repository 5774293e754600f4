// internal/workers/matching/find-matches/handler.go
package findmatches

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"talent-matching-workers/internal/common/camunda"
	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "find-matches"
)

var inputSchema = registry.MustInputSchema(TaskType)

// Matcher runs one matching request.
type Matcher interface {
	FindMatches(ctx context.Context, criteria models.MatchingCriteria, opts models.MatchingOptions) (*models.MatchResult, error)
}

type Handler struct {
	config  *Config
	matcher Matcher
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, matcher Matcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		matcher: matcher,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := inputSchema.ValidateJSON(job.Variables).Err(); err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	_ = camunda.CompleteJob(context.Background(), client, job, output, h.logger)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInputValidationFailedError("input cannot be nil")
	}
	if err := checkCriteria(input.Criteria); err != nil {
		return nil, err
	}

	opts := models.MatchingOptions{
		Page:    input.Options.Page,
		Limit:   input.Options.Limit,
		SortBy:  input.Options.SortBy,
		Weights: input.Options.Weights,
		Timeout: h.runTimeout(input.Options.TimeoutMs),
	}

	result, err := h.matcher.FindMatches(ctx, input.Criteria, opts)
	if err != nil {
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, apperrors.NewCandidateStoreTimeoutError(err)
		}
		return nil, apperrors.NewInternalError(err)
	}

	h.logger.Info("matches found", map[string]interface{}{
		"runId":     result.RunID,
		"projectId": input.Criteria.ProjectID,
		"total":     result.Total,
		"returned":  len(result.Freelancers),
		"partial":   result.Partial,
	})

	return &Output{
		RunID:       result.RunID,
		Freelancers: result.Freelancers,
		Total:       result.Total,
		Page:        result.Page,
		Limit:       result.Limit,
		Partial:     result.Partial,
		Scored:      result.Scored,
		Gated:       result.Gated,
	}, nil
}

// runTimeout returns the scoring budget for a job; zero keeps the service
// default.
func (h *Handler) runTimeout(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	d := time.Duration(ms) * time.Millisecond
	if h.config.MaxRunTimeout > 0 && d > h.config.MaxRunTimeout {
		return h.config.MaxRunTimeout
	}
	return d
}

// checkCriteria rejects criteria that cannot describe any project. Empty
// skill lists are allowed and score as worst case.
func checkCriteria(c models.MatchingCriteria) error {
	if c.BudgetMin != nil && c.BudgetMax != nil && *c.BudgetMin > *c.BudgetMax {
		return apperrors.NewInvalidCriteriaError(fmt.Sprintf("budgetMin %.2f exceeds budgetMax %.2f", *c.BudgetMin, *c.BudgetMax))
	}
	if c.MinClearance != nil && !c.MinClearance.Valid() {
		return apperrors.NewInvalidCriteriaError(fmt.Sprintf("unknown clearance level %q", *c.MinClearance))
	}
	return nil
}
