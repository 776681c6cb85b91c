package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

var (
	appVersion string
)

func adherenceServices(c echo.Context) error {
	// Build basic service discovery response
	serviceResponse := ServiceResponse{
		Version: appVersion,
		Services: []Service{
			{
				Title:             "Medication Adherence Calculation",
				Description:       "Computes PDC, gap budget, forward projections, fragility tier, and outreach priority for one patient-measure record",
				Id:                "calculate",
				UsageRequirements: "Fill events plus a measurement year or as-of date",
			},
			{
				Title:             "Adherence Batch Run",
				Description:       "Runs the adherence pipeline across a patient population with per-patient failure isolation",
				Id:                "batch",
				UsageRequirements: "A population of patient-measure records; optional calculation config overrides",
			},
		},
	}

	// Return response
	return c.JSON(http.StatusOK, serviceResponse)
}

func heartbeat(c echo.Context) error {
	// Heartbeat function to assess service status. Immediately return 200
	return c.NoContent(http.StatusOK)
}

func calculate(c echo.Context) error {
	// Obtains raw http request and its context
	r := c.Request()
	ctx := r.Context()

	var input MeasureInput
	if err := parseJSONBody(r.Body, &input); err != nil {
		logger(ctx, err)
		return c.NoContent(http.StatusBadRequest)
	}

	// Create span
	span, _ := apm.StartSpan(ctx, "Evaluate Adherence", "Calculation")
	adherence, fragility, err := Evaluate(*calcConfig, input)
	span.End()

	response := CalculationResponse{
		PatientId: input.PatientId,
		MeasureId: input.MeasureId,
	}

	if err != nil {
		switch {
		case isInvalidInput(err):
			// Reject the record loudly
			logger(ctx, fmt.Errorf("%v (patient: %s)", err, input.PatientId))
			response.Reason = err.Error()
			return c.JSON(http.StatusUnprocessableEntity, response)
		case isInsufficientData(err):
			// Explicit not-computable marker, never silently-zeroed values
			response.Reason = err.Error()
			return c.JSON(http.StatusOK, response)
		default:
			logger(ctx, fmt.Errorf("%v (patient: %s)", err, input.PatientId))
			return c.NoContent(http.StatusInternalServerError)
		}
	}

	response.Computable = true
	response.Adherence = adherence
	response.Fragility = fragility

	return c.JSON(http.StatusOK, response)
}

func batch(c echo.Context) error {
	// Obtains raw http request and its context
	r := c.Request()
	ctx := r.Context()

	var request BatchRequest
	if err := parseJSONBody(r.Body, &request); err != nil {
		logger(ctx, err)
		return c.NoContent(http.StatusBadRequest)
	}

	// Shared config with caller overrides layered on top for what-if
	// simulation; unspecified fields keep the server values
	cfg, err := overlayConfig(*calcConfig, request.Config)
	if err != nil {
		logger(ctx, err)
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	summary := runBatch(ctx, cfg, request.Population)

	zapLogger.Info("Adherence batch run complete",
		zap.String("runId", summary.RunId),
		zap.String("requestedBy", requestSubject(c)),
		zap.Int("totalPatients", summary.TotalPatients),
		zap.Int("successCount", summary.SuccessCount),
		zap.Int("errorCount", summary.ErrorCount),
		zap.Int64("durationMs", summary.DurationMs))

	// Persist the run for audit when a database is configured. Failures
	// are logged, never surfaced to the caller.
	if auditStore != nil {
		if err := auditStore.saveRun(ctx, summary); err != nil {
			logger(ctx, fmt.Errorf("%v (run: %s)", err, summary.RunId))
		}
	}

	// Ship the run summary to the log index
	sendRunLog(ctx, summary)

	// Return response
	return c.JSON(http.StatusOK, summary)
}

func parseJSONBody(body io.Reader, out any) error {
	reqBytes, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	// Unmarshal request into struct
	if err := json.Unmarshal(reqBytes, out); err != nil {
		return fmt.Errorf("unable to unmarshal request body: %v", err)
	}

	return nil
}

// requestSubject pulls the authenticated subject off the echo context for
// attribution. Anonymous when auth is not in play.
func requestSubject(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return "anonymous"
	}

	subject, err := tokenSubject(token)
	if err != nil {
		return "anonymous"
	}

	return subject
}
