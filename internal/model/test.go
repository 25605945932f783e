package model

type TestCategory string

const (
	CategoryBloodTest  TestCategory = "Blood Test"
	CategoryXRay       TestCategory = "X-Ray"
	CategoryMRI        TestCategory = "MRI"
	CategoryCTScan     TestCategory = "CT Scan"
	CategoryUltrasound TestCategory = "Ultrasound"
	CategoryECG        TestCategory = "ECG"
	CategoryOther      TestCategory = "Other"
)

func (c TestCategory) Valid() bool {
	switch c {
	case CategoryBloodTest, CategoryXRay, CategoryMRI, CategoryCTScan,
		CategoryUltrasound, CategoryECG, CategoryOther:
		return true
	}
	return false
}

type PricingStatus string

const (
	PricingPending  PricingStatus = "pending"
	PricingApproved PricingStatus = "approved"
	PricingRejected PricingStatus = "rejected"
)

// HcsPricing binds a test to a healthcare center with a center-specific
// price. A test is bookable at a center only when the entry is approved.
type HcsPricing struct {
	HCSID   string        `json:"hcs"`
	HCSName string        `json:"hcs_name,omitempty"`
	Price   float64       `json:"price"`
	Status  PricingStatus `json:"status"`
}

// Test is a diagnostic test from the backend catalog.
type Test struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Category        TestCategory `json:"type"`
	BasePrice       float64      `json:"price"`
	DurationMinutes int          `json:"duration"`
	HcsPricing      []HcsPricing `json:"hcsPricing"`
}

// PricingFor returns the pricing entry for the given center, if any.
func (t *Test) PricingFor(hcsID string) (HcsPricing, bool) {
	for _, p := range t.HcsPricing {
		if p.HCSID == hcsID {
			return p, true
		}
	}
	return HcsPricing{}, false
}

// ApprovedCenters returns exactly the pricing entries a booking may target.
func (t *Test) ApprovedCenters() []HcsPricing {
	var approved []HcsPricing
	for _, p := range t.HcsPricing {
		if p.Status == PricingApproved {
			approved = append(approved, p)
		}
	}
	return approved
}

// BookableAt reports whether the test has an approved pricing entry for the
// given center.
func (t *Test) BookableAt(hcsID string) bool {
	p, ok := t.PricingFor(hcsID)
	return ok && p.Status == PricingApproved
}

// TestListParams mirrors the backend catalog query surface.
type TestListParams struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Type   string `form:"type"`
	HCS    string `form:"hcs"`
}

func (p *TestListParams) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
}
