// internal/workers/rate-intelligence/get-market-rate/handler.go
package getmarketrate

import (
	"context"
	"encoding/json"
	"fmt"

	"talent-matching-workers/internal/common/camunda"
	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/internal/rateintel"
	"talent-matching-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "get-market-rate"
)

var inputSchema = registry.MustInputSchema(TaskType)

type RateSupplier interface {
	GetMarketRate(ctx context.Context, q models.MarketRateQuery) (*models.MarketRateResult, error)
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

	market, err := h.supplier.GetMarketRate(ctx, input.Query)
	if err != nil {
		return nil, rateintel.JobError(ctx, err)
	}

	out := &Output{Market: market}
	if f := input.Factors; f != nil {
		adjusted := rateintel.AnalyzeFactors(market, rateintel.FactorParams{
			Query:              input.Query,
			YearsExperience:    f.YearsExperience,
			AvgRating:          f.AvgRating,
			SkillMatch:         f.SkillMatch,
			ComplianceRequired: f.ComplianceRequired,
		})
		out.AdjustedMedian = &adjusted.AdjustedMedian
		out.SuggestedMin = &adjusted.SuggestedMin
		out.SuggestedMax = &adjusted.SuggestedMax
		out.Factors = adjusted.Factors
	}

	h.logger.Info("market rate resolved", map[string]interface{}{
		"segment":    market.MatchedKey.String(),
		"source":     market.Source,
		"confidence": market.Confidence,
		"median":     market.Bands.Median,
	})
	return out, nil
}
