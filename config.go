package main

import (
	"encoding/json"
	"fmt"
	"os"
)

var (
	configFile string = getEnv("CONFIG_FILE", "config.json")
)

// Regulatory defaults. Every threshold and weight is named here so a
// what-if simulation can run with an alternate CalcConfig without touching
// production values.
const (
	defaultComplianceThreshold = 80.0
	defaultGapRatio            = 0.20
	defaultDaysSupply          = 30
	defaultYearEndWindowDays   = 60
	defaultTighteningGapMax    = 5

	defaultDelayBudgetF1 = 2.0
	defaultDelayBudgetF2 = 5.0
	defaultDelayBudgetF3 = 10.0
	defaultDelayBudgetF4 = 20.0

	defaultScoreF1 = 100
	defaultScoreF2 = 80
	defaultScoreF3 = 60
	defaultScoreF4 = 40
	defaultScoreF5 = 20

	defaultBonusOutOfSupply  = 30
	defaultBonusYearEnd      = 25
	defaultBonusMultiMeasure = 15
	defaultBonusNewPatient   = 10

	defaultMaxPriorityScore = 155

	defaultUrgencyExtreme  = 150
	defaultUrgencyHigh     = 100
	defaultUrgencyModerate = 50

	defaultBatchWorkers = 4

	// Fill dates before this year are rejected as invalid input
	minSaneFillYear = 1990
)

// CalcConfig is the immutable parameter set handed into every calculation
// entry point. Callers may override any field per batch request.
type CalcConfig struct {
	MeasurementYear     int     `json:"measurementYear"`
	ComplianceThreshold float64 `json:"complianceThreshold"`
	GapRatio            float64 `json:"gapRatio"`
	DefaultDaysSupply   int     `json:"defaultDaysSupply"`

	DelayBudgetF1 float64 `json:"delayBudgetF1"`
	DelayBudgetF2 float64 `json:"delayBudgetF2"`
	DelayBudgetF3 float64 `json:"delayBudgetF3"`
	DelayBudgetF4 float64 `json:"delayBudgetF4"`

	YearEndWindowDays int `json:"yearEndWindowDays"`
	TighteningGapMax  int `json:"tighteningGapMax"`

	ScoreF1 int `json:"scoreF1"`
	ScoreF2 int `json:"scoreF2"`
	ScoreF3 int `json:"scoreF3"`
	ScoreF4 int `json:"scoreF4"`
	ScoreF5 int `json:"scoreF5"`

	BonusOutOfSupply  int `json:"bonusOutOfSupply"`
	BonusYearEnd      int `json:"bonusYearEnd"`
	BonusMultiMeasure int `json:"bonusMultiMeasure"`
	BonusNewPatient   int `json:"bonusNewPatient"`

	MaxPriorityScore int `json:"maxPriorityScore"`

	UrgencyExtreme  int `json:"urgencyExtreme"`
	UrgencyHigh     int `json:"urgencyHigh"`
	UrgencyModerate int `json:"urgencyModerate"`

	BatchWorkers int `json:"batchWorkers"`
}

func DefaultCalcConfig() CalcConfig {
	return CalcConfig{
		ComplianceThreshold: defaultComplianceThreshold,
		GapRatio:            defaultGapRatio,
		DefaultDaysSupply:   defaultDaysSupply,
		DelayBudgetF1:       defaultDelayBudgetF1,
		DelayBudgetF2:       defaultDelayBudgetF2,
		DelayBudgetF3:       defaultDelayBudgetF3,
		DelayBudgetF4:       defaultDelayBudgetF4,
		YearEndWindowDays:   defaultYearEndWindowDays,
		TighteningGapMax:    defaultTighteningGapMax,
		ScoreF1:             defaultScoreF1,
		ScoreF2:             defaultScoreF2,
		ScoreF3:             defaultScoreF3,
		ScoreF4:             defaultScoreF4,
		ScoreF5:             defaultScoreF5,
		BonusOutOfSupply:    defaultBonusOutOfSupply,
		BonusYearEnd:        defaultBonusYearEnd,
		BonusMultiMeasure:   defaultBonusMultiMeasure,
		BonusNewPatient:     defaultBonusNewPatient,
		MaxPriorityScore:    defaultMaxPriorityScore,
		UrgencyExtreme:      defaultUrgencyExtreme,
		UrgencyHigh:         defaultUrgencyHigh,
		UrgencyModerate:     defaultUrgencyModerate,
		BatchWorkers:        defaultBatchWorkers,
	}
}

// readConfig loads the default calculation parameters and applies any
// overrides present in the JSON config file. A missing file is not an
// error; the defaults stand.
func readConfig() (*CalcConfig, error) {
	cfg := DefaultCalcConfig()

	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("error reading config file:%s", err)
	}

	// Parse JSON data over the defaults so absent fields keep their values
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing JSON:%s", err)
	}

	return &cfg, nil
}

// overlayConfig applies a caller's JSON config overrides on top of the
// given base. Fields absent from the overlay keep their base values, so
// a what-if request can vary a single threshold without restating the
// rest.
func overlayConfig(base CalcConfig, overlay []byte) (CalcConfig, error) {
	if len(overlay) == 0 {
		return base, nil
	}

	cfg := base
	if err := json.Unmarshal(overlay, &cfg); err != nil {
		return CalcConfig{}, fmt.Errorf("error parsing config overrides:%s", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
