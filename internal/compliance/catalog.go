// internal/compliance/catalog.go
package compliance

import (
	"strings"

	"talent-matching-workers/internal/models"
)

type Category string

const (
	CategoryCertification Category = "CERTIFICATION"
	CategoryClearance     Category = "CLEARANCE"
	CategoryTraining      Category = "TRAINING"
	CategoryAttestation   Category = "ATTESTATION"
	CategoryCode          Category = "CODE"
)

// categoryPriority orders gaps: certification-blocking first.
var categoryPriority = map[Category]int{
	CategoryCertification: 0,
	CategoryClearance:     1,
	CategoryTraining:      2,
	CategoryAttestation:   3,
	CategoryCode:          4,
}

type Remediation struct {
	Steps         []string `json:"steps" mapstructure:"steps"`
	EstimatedDays int      `json:"estimatedDays" mapstructure:"estimated_days"`
	EstimatedCost float64  `json:"estimatedCost" mapstructure:"estimated_cost"`
	Resources     []string `json:"resources,omitempty" mapstructure:"resources"`
	// Parallel remediations can run alongside others.
	Parallel bool `json:"parallel" mapstructure:"parallel"`
}

type Requirement struct {
	Code        string      `json:"code" mapstructure:"code"`
	Name        string      `json:"name" mapstructure:"name"`
	Category    Category    `json:"category" mapstructure:"category"`
	Remediation Remediation `json:"remediation" mapstructure:"remediation"`
}

// Catalog maps compliance codes to remediation metadata.
type Catalog interface {
	Lookup(code string) (Requirement, bool)
}

type StaticCatalog struct {
	entries map[string]Requirement
}

// NewStaticCatalog indexes entries by normalized code. Later entries
// override earlier ones with the same code.
func NewStaticCatalog(entries ...Requirement) *StaticCatalog {
	c := &StaticCatalog{entries: make(map[string]Requirement, len(entries))}
	for _, e := range entries {
		e.Code = models.NormalizeCode(e.Code)
		c.entries[e.Code] = e
	}
	return c
}

func (c *StaticCatalog) Lookup(code string) (Requirement, bool) {
	r, ok := c.entries[models.NormalizeCode(code)]
	return r, ok
}

func (c *StaticCatalog) Len() int {
	return len(c.entries)
}

// ClearanceCode is the catalog key of a clearance level.
func ClearanceCode(level models.ClearanceLevel) string {
	return "CLEARANCE_" + strings.ToUpper(string(level))
}

// GenericRemediation is returned for codes the catalog does not know.
func GenericRemediation(code string) Requirement {
	return Requirement{
		Code:     models.NormalizeCode(code),
		Name:     models.NormalizeCode(code),
		Category: CategoryCode,
		Remediation: Remediation{
			Steps: []string{
				"Review the " + models.NormalizeCode(code) + " requirement with the client",
				"Obtain and upload supporting documentation",
				"Submit documentation for platform verification",
			},
			EstimatedDays: 14,
			EstimatedCost: 0,
			Parallel:      true,
		},
	}
}

// DefaultCatalog returns the built-in requirement catalog.
func DefaultCatalog() *StaticCatalog {
	return NewStaticCatalog(
		Requirement{
			Code: "HIPAA", Name: "HIPAA Privacy & Security", Category: CategoryCertification,
			Remediation: Remediation{
				Steps:         []string{"Complete HIPAA privacy and security training", "Pass the certification assessment", "Upload certificate for verification"},
				EstimatedDays: 14, EstimatedCost: 300,
				Resources: []string{"https://www.hhs.gov/hipaa/for-professionals/training"},
			},
		},
		Requirement{
			Code: "SOC2", Name: "SOC 2 Awareness", Category: CategoryCertification,
			Remediation: Remediation{
				Steps:         []string{"Complete SOC 2 controls training", "Sign controls acknowledgement", "Upload completion record"},
				EstimatedDays: 10, EstimatedCost: 250,
				Resources: []string{"https://www.aicpa-cima.com/topic/audit-assurance/audit-and-assurance-greater-than-soc-2"},
			},
		},
		Requirement{
			Code: "ISO27001", Name: "ISO/IEC 27001 Foundation", Category: CategoryCertification,
			Remediation: Remediation{
				Steps:         []string{"Enroll in an accredited ISO 27001 foundation course", "Pass the foundation exam", "Upload certificate for verification"},
				EstimatedDays: 30, EstimatedCost: 900,
				Resources: []string{"https://www.iso.org/standard/27001"},
			},
		},
		Requirement{
			Code: "PCI_DSS", Name: "PCI DSS", Category: CategoryCertification,
			Remediation: Remediation{
				Steps:         []string{"Complete PCI DSS fundamentals training", "Pass the assessment", "Upload certificate for verification"},
				EstimatedDays: 21, EstimatedCost: 500,
				Resources: []string{"https://www.pcisecuritystandards.org"},
			},
		},
		Requirement{
			Code: "FEDRAMP", Name: "FedRAMP Familiarity", Category: CategoryCertification,
			Remediation: Remediation{
				Steps:         []string{"Complete FedRAMP training modules", "Document agency engagement experience", "Submit for verification"},
				EstimatedDays: 45, EstimatedCost: 1200,
				Resources: []string{"https://www.fedramp.gov/training"},
			},
		},
		Requirement{
			Code: "CMMC", Name: "CMMC Level 2", Category: CategoryCertification,
			Remediation: Remediation{
				Steps:         []string{"Complete CMMC practitioner training", "Pass the practitioner exam", "Upload credential"},
				EstimatedDays: 60, EstimatedCost: 1500,
				Resources: []string{"https://dodcio.defense.gov/CMMC"},
			},
		},
		Requirement{
			Code: "GDPR", Name: "GDPR Data Protection", Category: CategoryTraining,
			Remediation: Remediation{
				Steps:         []string{"Complete GDPR data protection training", "Upload completion record"},
				EstimatedDays: 5, EstimatedCost: 100, Parallel: true,
				Resources: []string{"https://gdpr.eu"},
			},
		},
		Requirement{
			Code: "SECURITY_AWARENESS", Name: "Security Awareness Training", Category: CategoryTraining,
			Remediation: Remediation{
				Steps:         []string{"Complete annual security awareness training", "Upload completion record"},
				EstimatedDays: 2, EstimatedCost: 0, Parallel: true,
			},
		},
		Requirement{
			Code: "BACKGROUND_CHECK", Name: "Background Check", Category: CategoryCertification,
			Remediation: Remediation{
				Steps:         []string{"Consent to background screening", "Wait for screening provider results"},
				EstimatedDays: 7, EstimatedCost: 75, Parallel: true,
			},
		},
		Requirement{
			Code: "NDA", Name: "Non-Disclosure Attestation", Category: CategoryAttestation,
			Remediation: Remediation{
				Steps:         []string{"Review and sign the platform NDA"},
				EstimatedDays: 1, EstimatedCost: 0, Parallel: true,
			},
		},
		Requirement{
			Code: "CONFLICT_OF_INTEREST", Name: "Conflict of Interest Attestation", Category: CategoryAttestation,
			Remediation: Remediation{
				Steps:         []string{"Complete the conflict of interest disclosure"},
				EstimatedDays: 1, EstimatedCost: 0, Parallel: true,
			},
		},
		Requirement{
			Code: "ITAR", Name: "ITAR Registration", Category: CategoryCode,
			Remediation: Remediation{
				Steps:         []string{"Confirm US person status", "Complete export control training", "Submit attestation to the client"},
				EstimatedDays: 14, EstimatedCost: 0,
				Resources: []string{"https://www.pmddtc.state.gov"},
			},
		},
		clearanceRequirement(models.ClearancePublicTrust, 60),
		clearanceRequirement(models.ClearanceConfidential, 90),
		clearanceRequirement(models.ClearanceSecret, 120),
		clearanceRequirement(models.ClearanceTopSecret, 240),
		clearanceRequirement(models.ClearanceTopSecretSCI, 365),
	)
}

func clearanceRequirement(level models.ClearanceLevel, days int) Requirement {
	return Requirement{
		Code:     ClearanceCode(level),
		Name:     strings.ReplaceAll(string(level), "_", " ") + " clearance",
		Category: CategoryClearance,
		Remediation: Remediation{
			Steps: []string{
				"Obtain sponsorship from a cleared contracting organization",
				"Submit the SF-86 questionnaire",
				"Complete the background investigation and adjudication",
			},
			EstimatedDays: days,
			EstimatedCost: 0,
			Resources:     []string{"https://www.dcsa.mil/Personnel-Security"},
		},
	}
}
