// internal/workers/compliance/check-eligibility/models.go
package checkeligibility

import (
	"time"

	"talent-matching-workers/internal/compliance"
	"talent-matching-workers/internal/models"
)

type Input struct {
	CandidateID        string                 `json:"candidateId"`
	RequiredCompliance []string               `json:"requiredCompliance,omitempty"`
	MinClearance       *models.ClearanceLevel `json:"minClearance,omitempty"`
	AsOf               *time.Time             `json:"asOf,omitempty"`
}

type Output struct {
	CandidateID  string                        `json:"candidateId"`
	Eligible     bool                          `json:"eligible"`
	Requirements []compliance.RequirementCheck `json:"requirements"`
	Clearance    *compliance.ClearanceCheck    `json:"clearance,omitempty"`
	Status       models.ComplianceStatus       `json:"status"`
	Warnings     []string                      `json:"warnings"`
	CheckedAt    time.Time                     `json:"checkedAt"`
}
