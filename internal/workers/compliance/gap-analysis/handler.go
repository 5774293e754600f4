// internal/workers/compliance/gap-analysis/handler.go
package gapanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"talent-matching-workers/internal/common/camunda"
	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/compliance"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "gap-analysis"
)

var inputSchema = registry.MustInputSchema(TaskType)

type ProfileSource interface {
	CandidateCompliance(ctx context.Context, candidateID string, asOf time.Time) (*models.CandidateProfile, *models.FreelancerComplianceProfile, error)
}

type Handler struct {
	config  *Config
	source  ProfileSource
	checker *compliance.Checker
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
	now     func() time.Time
}

func NewHandler(config *Config, source ProfileSource, checker *compliance.Checker, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		source:  source,
		checker: checker,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
		now:     time.Now,
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
	if input == nil || input.CandidateID == "" {
		return nil, apperrors.NewInputValidationFailedError("candidateId is required")
	}

	asOf := h.now().UTC()
	if input.AsOf != nil {
		asOf = *input.AsOf
	}

	_, profile, err := h.source.CandidateCompliance(ctx, input.CandidateID, asOf)
	if err != nil {
		return nil, err
	}

	report := h.checker.GapAnalysis(profile, input.RequiredCompliance, input.MinClearance)

	out := &Output{
		CandidateID:        input.CandidateID,
		Ready:              len(report.Gaps) == 0,
		Gaps:               report.Gaps,
		ReadinessPercent:   report.ReadinessPercent,
		SequentialDays:     report.SequentialDays,
		ParallelDays:       report.ParallelDays,
		EstimatedTotalDays: report.EstimatedTotalDays,
		EstimatedTotalCost: report.EstimatedTotalCost,
		ExpiringRenewals:   report.ExpiringRenewals,
		AnalyzedAt:         asOf,
	}
	for _, g := range report.Gaps {
		if g.Blocking {
			out.BlockingGaps++
		}
	}
	if !out.Ready {
		readyAt := asOf.AddDate(0, 0, report.EstimatedTotalDays)
		out.EstimatedReadyAt = &readyAt
	}

	h.logger.Info("gap analysis complete", map[string]interface{}{
		"candidateId": input.CandidateID,
		"gaps":        len(report.Gaps),
		"readiness":   report.ReadinessPercent,
		"totalDays":   report.EstimatedTotalDays,
	})
	return out, nil
}
