package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.elastic.co/apm"
)

type PatientOutcome struct {
	PatientId  string           `json:"patientId"`
	MeasureId  string           `json:"measureId"`
	Computable bool             `json:"computable"`
	Adherence  *AdherenceResult `json:"adherence,omitempty"`
	Fragility  *FragilityResult `json:"fragility,omitempty"`
	Error      string           `json:"error,omitempty"`
	ErrorKind  string           `json:"errorKind,omitempty"`
}

type BatchSummary struct {
	RunId         string           `json:"runId"`
	TotalPatients int              `json:"totalPatients"`
	SuccessCount  int              `json:"successCount"`
	ErrorCount    int              `json:"errorCount"`
	DurationMs    int64            `json:"durationMs"`
	TierCounts    map[string]int   `json:"tierCounts"`
	Results       []PatientOutcome `json:"perPatientResults"`
}

// runBatch fans the per-patient pipeline out across a worker pool.
// Patients are fully independent, so the only shared resource is the
// results channel. A single record's failure is recorded and the run
// continues; cancellation stops scheduling new work but lets in-flight
// calculations finish.
func runBatch(ctx context.Context, cfg CalcConfig, population []MeasureInput) *BatchSummary {
	start := time.Now()

	// Create span
	span, _ := apm.StartSpan(ctx, "Run Adherence Batch", "Batch")
	defer span.End()

	workers := cfg.BatchWorkers
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if workers > len(population) {
		workers = len(population)
	}

	jobs := make(chan MeasureInput)
	outcomes := make(chan PatientOutcome, len(population))

	// Start the worker pool
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range jobs {
				outcomes <- evaluateOne(cfg, input)
			}
		}()
	}

	// Schedule work until the population is exhausted or the caller cancels
SchedulerLoop:
	for _, input := range population {
		select {
		case <-ctx.Done():
			break SchedulerLoop
		case jobs <- input:
		}
	}
	close(jobs)

	// Close the outcome channel once all in-flight work has drained
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	summary := &BatchSummary{
		RunId:         uuid.New().String(),
		TotalPatients: len(population),
		TierCounts:    map[string]int{},
	}

	for outcome := range outcomes {
		if outcome.Computable {
			summary.SuccessCount++
			summary.TierCounts[outcome.Fragility.Tier.String()]++
		} else {
			summary.ErrorCount++
		}
		summary.Results = append(summary.Results, outcome)
	}

	// Deterministic ordering so identical inputs yield identical summaries
	sort.Slice(summary.Results, func(i, j int) bool {
		if summary.Results[i].PatientId == summary.Results[j].PatientId {
			return summary.Results[i].MeasureId < summary.Results[j].MeasureId
		}
		return summary.Results[i].PatientId < summary.Results[j].PatientId
	})

	summary.DurationMs = time.Since(start).Milliseconds()

	return summary
}

func evaluateOne(cfg CalcConfig, input MeasureInput) PatientOutcome {
	outcome := PatientOutcome{
		PatientId: input.PatientId,
		MeasureId: input.MeasureId,
	}

	adherence, fragility, err := Evaluate(cfg, input)
	if err != nil {
		outcome.Error = err.Error()
		outcome.ErrorKind = errorKind(err)
		return outcome
	}

	outcome.Computable = true
	outcome.Adherence = adherence
	outcome.Fragility = fragility

	return outcome
}
