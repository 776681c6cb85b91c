package main

import (
	"encoding/json"
	"fmt"
	"time"
)

/**************************
 ****** CDS Services ******
 **************************/
type ServiceResponse struct {
	Version  string    `json:"version,omitempty"`
	Services []Service `json:"services"`
}

type Service struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Id                string `json:"id"`
	UsageRequirements string `json:"usageRequirements"`
}

/*********************************
 ****** Calculation Inputs *******
 *********************************/

// A single dispensing event. DaysSupply at or below zero is silently
// corrected to the configured default before any calculation consumes it;
// this is the only sanctioned silent correction.
type FillEvent struct {
	FillDate   Date `json:"fillDate"`
	DaysSupply int  `json:"daysSupply"`
}

// One patient-measure record. Either MeasurementYear (calendar-year
// window ending Dec 31) or AsOf (rolling window ending on that date)
// must be supplied.
type MeasureInput struct {
	PatientId              string      `json:"patientId"`
	MeasureId              string      `json:"measureId"`
	Fills                  []FillEvent `json:"fills"`
	MeasurementYear        int         `json:"measurementYear"`
	AsOf                   Date        `json:"asOf"`
	RefillsRemaining       int         `json:"refillsRemaining"`
	ConcurrentMeasures     int         `json:"concurrentMeasures"`
	FirstMeasurementPeriod bool        `json:"firstMeasurementPeriod"`
	TypicalDaysSupply      int         `json:"typicalDaysSupply"`
}

type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Create custom date type
type Date struct {
	time.Time
}

/*********************************
 ****** Calculation Outputs ******
 *********************************/

type AdherenceResult struct {
	PDC               float64 `json:"pdc"`
	CoveredDays       int     `json:"coveredDays"`
	TreatmentDays     int     `json:"treatmentDays"`
	GapDaysUsed       int     `json:"gapDaysUsed"`
	GapDaysAllowed    int     `json:"gapDaysAllowed"`
	GapDaysRemaining  int     `json:"gapDaysRemaining"`
	PDCStatusQuo      float64 `json:"pdcStatusQuo"`
	PDCPerfect        float64 `json:"pdcPerfect"`
	DaysToRunout      int     `json:"daysToRunout"`
	CurrentSupplyDays int     `json:"currentSupplyDays"`
	RefillsNeeded     int     `json:"refillsNeeded"`
	LastFillDate      Date    `json:"lastFillDate"`
	FillCount         int     `json:"fillCount"`
	MeasurementPeriod Period  `json:"measurementPeriod"`
}

type FragilityFlags struct {
	IsCompliant     bool `json:"isCompliant"`
	IsUnsalvageable bool `json:"isUnsalvageable"`
	IsOutOfSupply   bool `json:"isOutOfSupply"`
	IsYearEndWindow bool `json:"isYearEndWindow"`
	IsMultiMeasure  bool `json:"isMultiMeasure"`
	IsNewPatient    bool `json:"isNewPatient"`
	IsTightened     bool `json:"isTightened"`
}

type PriorityBonuses struct {
	Base         int `json:"base"`
	OutOfSupply  int `json:"outOfSupply"`
	YearEnd      int `json:"yearEnd"`
	MultiMeasure int `json:"multiMeasure"`
	NewPatient   int `json:"newPatient"`
}

type FragilityResult struct {
	Tier                 Tier            `json:"tier"`
	TierLevel            int             `json:"tierLevel"`
	DelayBudgetPerRefill float64         `json:"delayBudgetPerRefill"`
	ContactWindow        string          `json:"contactWindow"`
	Action               string          `json:"action"`
	PriorityScore        int             `json:"priorityScore"`
	UrgencyLevel         string          `json:"urgencyLevel"`
	Flags                FragilityFlags  `json:"flags"`
	Bonuses              PriorityBonuses `json:"bonuses"`
}

/*********************************
 ****** Service Payloads *********
 *********************************/

type CalculationResponse struct {
	PatientId  string           `json:"patientId"`
	MeasureId  string           `json:"measureId"`
	Computable bool             `json:"computable"`
	Reason     string           `json:"reason,omitempty"`
	Adherence  *AdherenceResult `json:"adherence,omitempty"`
	Fragility  *FragilityResult `json:"fragility,omitempty"`
}

// Config is held raw so partial overrides can be layered over the
// server configuration; decoding it straight into a CalcConfig would
// zero every field the caller left out.
type BatchRequest struct {
	Population []MeasureInput  `json:"population"`
	Config     json.RawMessage `json:"config,omitempty"`
}

/*******************************
 ***** Unmarshal Functions *****
 *******************************/

// Custom UnmarshalJSON for Date type
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	// Dates arrive as JSON strings; any other token is a malformed record
	// and must fail the decode rather than blow up the request
	var dateStr string
	if err := json.Unmarshal(data, &dateStr); err != nil {
		return fmt.Errorf("date must be a string, got: %s", data)
	}
	if dateStr == "" {
		return nil
	}

	// Parse string
	parsedTime, err := parseDate(dateStr)
	if err != nil {
		return fmt.Errorf("error parsing date: %v", err)
	}

	// Set parsed time to Date struct
	d.Time = parsedTime
	return nil
}

// Dates render as plain calendar days on the wire
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}
