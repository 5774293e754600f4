// internal/workers/rate-intelligence/bid-comparison/handler.go
package bidcomparison

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
	TaskType = "bid-comparison"
)

var inputSchema = registry.MustInputSchema(TaskType)

type RateSupplier interface {
	BidComparison(ctx context.Context, p rateintel.BidParams) (*rateintel.BidComparison, error)
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

	cmp, err := h.supplier.BidComparison(ctx, rateintel.BidParams{Query: input.Query, Rate: input.Rate})
	if err != nil {
		return nil, rateintel.JobError(ctx, err)
	}

	h.logger.Info("bid compared", map[string]interface{}{
		"segment":    cmp.Market.MatchedKey.String(),
		"rate":       cmp.Rate,
		"position":   cmp.Position,
		"percentile": cmp.Percentile,
	})

	return &Output{
		Rate:            cmp.Rate,
		Position:        cmp.Position,
		Percentile:      cmp.Percentile,
		DeltaFromMedian: cmp.DeltaFromMedian,
		DeltaPct:        cmp.DeltaPct,
		Recommendations: cmp.Recommendations,
		Market:          cmp.Market,
	}, nil
}
