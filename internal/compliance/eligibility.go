// internal/compliance/eligibility.go
package compliance

import (
	"math"
	"sort"
	"time"

	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"
)

type RequirementState string

const (
	StateMet      RequirementState = "MET"
	StateMissing  RequirementState = "MISSING"
	StateExpiring RequirementState = "EXPIRING"
)

type RequirementCheck struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Category    Category         `json:"category"`
	State       RequirementState `json:"state"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
	Remediation *Remediation     `json:"remediation,omitempty"`
}

type ClearanceCheck struct {
	Required    models.ClearanceLevel `json:"required"`
	Highest     models.ClearanceLevel `json:"highest,omitempty"`
	Met         bool                  `json:"met"`
	Remediation *Remediation          `json:"remediation,omitempty"`
}

type Eligibility struct {
	CandidateID  string                  `json:"candidateId"`
	Eligible     bool                    `json:"eligible"`
	Requirements []RequirementCheck      `json:"requirements"`
	Clearance    *ClearanceCheck         `json:"clearance,omitempty"`
	Status       models.ComplianceStatus `json:"status"`
}

type Gap struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Category    Category    `json:"category"`
	Blocking    bool        `json:"blocking"`
	Priority    int         `json:"priority"`
	Remediation Remediation `json:"remediation"`
}

type GapReport struct {
	CandidateID        string   `json:"candidateId"`
	Gaps               []Gap    `json:"gaps"`
	ReadinessPercent   float64  `json:"readinessPercent"`
	SequentialDays     int      `json:"sequentialDays"`
	ParallelDays       int      `json:"parallelDays"`
	EstimatedTotalDays int      `json:"estimatedTotalDays"`
	EstimatedTotalCost float64  `json:"estimatedTotalCost"`
	ExpiringRenewals   []string `json:"expiringRenewals"`
}

// Checker evaluates candidates against requirement sets using a catalog for
// remediation metadata.
type Checker struct {
	catalog Catalog
	logger  logger.Logger
}

func NewChecker(catalog Catalog, log logger.Logger) *Checker {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Checker{
		catalog: catalog,
		logger:  log.WithFields(map[string]interface{}{"component": "compliance-checker"}),
	}
}

func (c *Checker) requirement(code string) Requirement {
	if r, ok := c.catalog.Lookup(code); ok {
		return r
	}
	c.logger.Debug("Requirement not in catalog, using generic remediation", map[string]interface{}{
		"code": code,
	})
	return GenericRemediation(code)
}

// CheckEligibility reports met, missing and expiring state per required code.
// Missing codes carry their remediation path.
func (c *Checker) CheckEligibility(p *models.FreelancerComplianceProfile, required []string, minClearance *models.ClearanceLevel) Eligibility {
	status := Evaluate(p, required, minClearance)
	out := Eligibility{
		Requirements: []RequirementCheck{},
		Status:       status,
		Eligible:     status.AllRequirementsMet,
	}
	if p != nil {
		out.CandidateID = p.CandidateID
	}

	missing := toSet(status.Missing)
	expiring := toSet(status.Expiring)
	for _, code := range append(append([]string{}, status.Met...), status.Missing...) {
		req := c.requirement(code)
		check := RequirementCheck{Code: code, Name: req.Name, Category: req.Category, State: StateMet}
		switch {
		case missing[code]:
			check.State = StateMissing
			rem := req.Remediation
			check.Remediation = &rem
		case expiring[code]:
			check.State = StateExpiring
			exp := p.ExpiringSoon[code]
			check.ExpiresAt = &exp
			rem := renewal(req.Remediation)
			check.Remediation = &rem
		}
		out.Requirements = append(out.Requirements, check)
	}

	if minClearance != nil && *minClearance != "" {
		cc := &ClearanceCheck{Required: *minClearance, Met: p.MeetsClearance(minClearance)}
		cc.Highest = highestLevel(p)
		if !cc.Met {
			rem := c.requirement(ClearanceCode(*minClearance)).Remediation
			cc.Remediation = &rem
		}
		out.Clearance = cc
	}
	return out
}

// GapAnalysis lists every gap to full eligibility, blocking certification
// gaps first, and rolls up the time and cost to close them.
func (c *Checker) GapAnalysis(p *models.FreelancerComplianceProfile, required []string, minClearance *models.ClearanceLevel) GapReport {
	e := c.CheckEligibility(p, required, minClearance)
	report := GapReport{
		CandidateID:      e.CandidateID,
		Gaps:             []Gap{},
		ExpiringRenewals: append([]string{}, e.Status.Expiring...),
	}

	for _, r := range e.Requirements {
		if r.State != StateMissing {
			continue
		}
		report.Gaps = append(report.Gaps, Gap{
			Code:        r.Code,
			Name:        r.Name,
			Category:    r.Category,
			Blocking:    true,
			Priority:    categoryPriority[r.Category],
			Remediation: *r.Remediation,
		})
	}
	if e.Clearance != nil && !e.Clearance.Met {
		req := c.requirement(ClearanceCode(e.Clearance.Required))
		report.Gaps = append(report.Gaps, Gap{
			Code:        req.Code,
			Name:        req.Name,
			Category:    CategoryClearance,
			Blocking:    true,
			Priority:    categoryPriority[CategoryClearance],
			Remediation: req.Remediation,
		})
	}

	sort.SliceStable(report.Gaps, func(i, j int) bool {
		if report.Gaps[i].Priority != report.Gaps[j].Priority {
			return report.Gaps[i].Priority < report.Gaps[j].Priority
		}
		return report.Gaps[i].Code < report.Gaps[j].Code
	})

	for _, g := range report.Gaps {
		report.EstimatedTotalCost += g.Remediation.EstimatedCost
		if g.Remediation.Parallel {
			if g.Remediation.EstimatedDays > report.ParallelDays {
				report.ParallelDays = g.Remediation.EstimatedDays
			}
			continue
		}
		report.SequentialDays += g.Remediation.EstimatedDays
	}
	report.EstimatedTotalDays = report.SequentialDays
	if report.ParallelDays > report.EstimatedTotalDays {
		report.EstimatedTotalDays = report.ParallelDays
	}

	total := len(e.Requirements)
	if e.Clearance != nil {
		total++
	}
	if total == 0 {
		report.ReadinessPercent = 100
	} else {
		met := total - len(report.Gaps)
		report.ReadinessPercent = math.Round(float64(met)/float64(total)*1000) / 10
	}
	return report
}

func renewal(r Remediation) Remediation {
	return Remediation{
		Steps:         []string{"Renew before expiry", "Upload renewed documentation for verification"},
		EstimatedDays: r.EstimatedDays,
		EstimatedCost: r.EstimatedCost,
		Resources:     r.Resources,
		Parallel:      true,
	}
}

func highestLevel(p *models.FreelancerComplianceProfile) models.ClearanceLevel {
	rank := p.HighestClearance()
	if rank == 0 {
		return ""
	}
	for level := range p.ClearanceLevels {
		if level.Rank() == rank {
			return level
		}
	}
	return ""
}

func toSet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, s := range in {
		out[s] = true
	}
	return out
}
