// internal/workers/compliance/check-eligibility/handler.go
package checkeligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"talent-matching-workers/internal/common/camunda"
	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/compliance"
	"talent-matching-workers/internal/matching"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-eligibility"
)

var inputSchema = registry.MustInputSchema(TaskType)

// ProfileSource loads a candidate with its derived compliance profile.
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

	candidate, profile, err := h.source.CandidateCompliance(ctx, input.CandidateID, asOf)
	if err != nil {
		return nil, err
	}

	result := h.checker.CheckEligibility(profile, input.RequiredCompliance, input.MinClearance)

	h.logger.Info("eligibility checked", map[string]interface{}{
		"candidateId": input.CandidateID,
		"eligible":    result.Eligible,
		"missing":     len(result.Status.Missing),
		"expiring":    len(result.Status.Expiring),
	})

	return &Output{
		CandidateID:  input.CandidateID,
		Eligible:     result.Eligible,
		Requirements: result.Requirements,
		Clearance:    result.Clearance,
		Status:       result.Status,
		Warnings:     complianceWarnings(candidate.Degraded),
		CheckedAt:    asOf,
	}, nil
}

// complianceWarnings reports degraded sections that can hide held
// compliance items.
func complianceWarnings(degraded []string) []string {
	warnings := []string{}
	for _, section := range degraded {
		switch section {
		case matching.SectionCompliance, matching.SectionClearances, matching.SectionAttestations:
			warnings = append(warnings, "Partial profile data: "+section+" unavailable")
		}
	}
	return warnings
}
