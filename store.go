package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// AuditStore persists batch run summaries and per-patient tier rows to
// Postgres. The pure calculation core never touches it; the store hangs
// off the batch service layer and is entirely optional.
type AuditStore struct {
	db     *sql.DB
	schema string
}

func auditDBURLFromEnv() string {
	if value := strings.TrimSpace(os.Getenv("ADHERENCE_AUDIT_DB_URL")); value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv("DATABASE_URL"))
}

// openAuditStore connects to the audit database and bootstraps its
// schema. Returns nil without error when no database is configured.
func openAuditStore(ctx context.Context, schema string) (*AuditStore, error) {
	dbURL := auditDBURLFromEnv()
	if dbURL == "" {
		return nil, nil
	}

	schema, err := sanitizeSchema(schema)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	store := &AuditStore{db: db, schema: schema}
	if err := store.ensureSchema(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *AuditStore) Close() error {
	return s.db.Close()
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	valid := regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	if !valid.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

func (s *AuditStore) saveRun(ctx context.Context, summary *BatchSummary) error {
	saveCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	runID, err := uuid.Parse(summary.RunId)
	if err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}

	tx, err := s.db.BeginTx(saveCtx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(saveCtx, fmt.Sprintf(`
		INSERT INTO %s.adherence_runs (
			id, total_patients, success_count, error_count, duration_ms
		) VALUES (
			$1,$2,$3,$4,$5
		)`, s.schema),
		runID,
		summary.TotalPatients,
		summary.SuccessCount,
		summary.ErrorCount,
		summary.DurationMs,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	insertResultSQL := fmt.Sprintf(`
		INSERT INTO %s.adherence_patient_results (
			id, run_id, patient_id, measure_id, computable, tier, tier_level,
			priority_score, urgency_level, pdc, pdc_status_quo, pdc_perfect,
			gap_days_remaining, days_to_runout, error_kind, error_detail
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,
			$8,$9,$10,$11,$12,
			$13,$14,$15,$16
		)`, s.schema)

	for _, result := range summary.Results {
		row := auditRow(result)
		_, err = tx.ExecContext(saveCtx, insertResultSQL,
			uuid.New(),
			runID,
			result.PatientId,
			nullString(result.MeasureId),
			result.Computable,
			row.tier,
			row.tierLevel,
			row.priorityScore,
			row.urgency,
			row.pdc,
			row.pdcStatusQuo,
			row.pdcPerfect,
			row.gapDaysRemaining,
			row.daysToRunout,
			nullString(result.ErrorKind),
			nullString(result.Error),
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Nullable projection of a patient outcome for the audit row. Failed
// records keep their error columns and leave the metrics null.
type patientAuditRow struct {
	tier             sql.NullString
	tierLevel        sql.NullInt64
	priorityScore    sql.NullInt64
	urgency          sql.NullString
	pdc              sql.NullFloat64
	pdcStatusQuo     sql.NullFloat64
	pdcPerfect       sql.NullFloat64
	gapDaysRemaining sql.NullInt64
	daysToRunout     sql.NullInt64
}

func auditRow(result PatientOutcome) patientAuditRow {
	if !result.Computable {
		return patientAuditRow{}
	}

	return patientAuditRow{
		tier:             nullString(result.Fragility.Tier.String()),
		tierLevel:        sql.NullInt64{Int64: int64(result.Fragility.TierLevel), Valid: true},
		priorityScore:    sql.NullInt64{Int64: int64(result.Fragility.PriorityScore), Valid: true},
		urgency:          nullString(result.Fragility.UrgencyLevel),
		pdc:              sql.NullFloat64{Float64: result.Adherence.PDC, Valid: true},
		pdcStatusQuo:     sql.NullFloat64{Float64: result.Adherence.PDCStatusQuo, Valid: true},
		pdcPerfect:       sql.NullFloat64{Float64: result.Adherence.PDCPerfect, Valid: true},
		gapDaysRemaining: sql.NullInt64{Int64: int64(result.Adherence.GapDaysRemaining), Valid: true},
		daysToRunout:     sql.NullInt64{Int64: int64(result.Adherence.DaysToRunout), Valid: true},
	}
}

func (s *AuditStore) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, s.schema)); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.adherence_runs (
			id uuid PRIMARY KEY,
			total_patients integer NOT NULL,
			success_count integer NOT NULL,
			error_count integer NOT NULL,
			duration_ms bigint NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, s.schema))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.adherence_patient_results (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.adherence_runs(id) ON DELETE CASCADE,
			patient_id text NOT NULL,
			measure_id text,
			computable boolean NOT NULL,
			tier text,
			tier_level integer,
			priority_score integer,
			urgency_level text,
			pdc numeric(5,2),
			pdc_status_quo numeric(5,2),
			pdc_perfect numeric(5,2),
			gap_days_remaining integer,
			days_to_runout integer,
			error_kind text,
			error_detail text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, s.schema, s.schema))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_patient_results_run_idx ON %s.adherence_patient_results (run_id)`, s.schema, s.schema))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_patient_results_tier_idx ON %s.adherence_patient_results (tier)`, s.schema, s.schema))
	return err
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
