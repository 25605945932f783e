package model

// SlotOverride replaces the center's default daily capacity for one test.
type SlotOverride struct {
	TestID      string `json:"test"`
	SlotsPerDay int    `json:"slots_per_day"`
}

// HealthcareCenter is a facility offering diagnostic tests at
// center-specific prices and slot capacity.
type HealthcareCenter struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Address       string         `json:"address"`
	Contact       string         `json:"contact"`
	Email         string         `json:"email"`
	AdminID       string         `json:"admin,omitempty"`
	DailySlots    int            `json:"daily_slots"`
	SlotOverrides []SlotOverride `json:"slot_overrides,omitempty"`
}

// AssignmentRequest is an HCS-initiated proposal to offer a test at its
// center, pending superadmin review.
type AssignmentRequest struct {
	TestID    string        `json:"test"`
	TestTitle string        `json:"test_title,omitempty"`
	HCSID     string        `json:"hcs"`
	HCSName   string        `json:"hcs_name,omitempty"`
	Price     float64       `json:"price"`
	Status    PricingStatus `json:"status"`
}
