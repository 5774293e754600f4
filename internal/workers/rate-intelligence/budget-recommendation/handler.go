// internal/workers/rate-intelligence/budget-recommendation/handler.go
package budgetrecommendation

import (
	"context"
	"encoding/json"
	"fmt"

	"talent-matching-workers/internal/common/camunda"
	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/rateintel"
	"talent-matching-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "budget-recommendation"
)

var inputSchema = registry.MustInputSchema(TaskType)

type RateSupplier interface {
	BudgetRecommendation(ctx context.Context, p rateintel.BudgetParams) (*rateintel.BudgetRecommendation, error)
}

type Handler struct {
	config   *Config
	supplier RateSupplier
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, supplier RateSupplier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		supplier: supplier,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
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
	if input.EstimatedHours < 0 {
		return nil, apperrors.NewInvalidRateQueryError("estimatedHours cannot be negative")
	}

	rec, err := h.supplier.BudgetRecommendation(ctx, rateintel.BudgetParams{
		Query:              input.Query,
		ComplianceRequired: input.ComplianceRequired,
		EstimatedHours:     input.EstimatedHours,
	})
	if err != nil {
		return nil, rateintel.JobError(ctx, err)
	}

	h.logger.Info("budget recommended", map[string]interface{}{
		"segment":     rec.Market.MatchedKey.String(),
		"competitive": rec.Competitive.HourlyRate,
		"source":      rec.Market.Source,
	})

	return &Output{
		Economical:        rec.Economical,
		Competitive:       rec.Competitive,
		Premium:           rec.Premium,
		CompliancePremium: rec.CompliancePremium,
		Confidence:        rec.Market.Confidence,
		Notes:             rec.Notes,
		Market:            rec.Market,
	}, nil
}
