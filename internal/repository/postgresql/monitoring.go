package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/attendance-backend-go/internal/domain/monitoring"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
)

type monitoringRepository struct {
	db *database.DB
}

func NewMonitoringRepository(db *database.DB) monitoring.LogRepository {
	return &monitoringRepository{db: db}
}

// RecordOutcome implements monitoring.LogRepository.
// ON CONFLICT DO NOTHING against the (employee_id, date, outcome) unique
// index makes monitor re-runs idempotent: a zero-row insert means this
// outcome was already handled and no notification should fire again.
func (m *monitoringRepository) RecordOutcome(ctx context.Context, employeeID string, date string, outcome string) (bool, error) {
	q := GetQuerier(ctx, m.db)

	query := `
		INSERT INTO checkout_monitoring_logs (employee_id, date, outcome)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, date, outcome) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, employeeID, date, outcome)
	if err != nil {
		return false, fmt.Errorf("failed to record monitoring outcome: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// BumpSummary implements monitoring.LogRepository.
func (m *monitoringRepository) BumpSummary(ctx context.Context, date string, outcome string) error {
	q := GetQuerier(ctx, m.db)

	var column string
	switch outcome {
	case monitoring.OutcomeReminded:
		column = "reminded_count"
	case monitoring.OutcomeEscalated:
		column = "escalated_count"
	case monitoring.OutcomeAutoClockedOut:
		column = "auto_clocked_out_count"
	default:
		return fmt.Errorf("unknown monitoring outcome: %s", outcome)
	}

	query := fmt.Sprintf(`
		INSERT INTO checkout_monitoring_summaries (date, %[1]s, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (date) DO UPDATE
		SET %[1]s = checkout_monitoring_summaries.%[1]s + 1,
		    updated_at = NOW()
	`, column)

	if _, err := q.Exec(ctx, query, date); err != nil {
		return fmt.Errorf("failed to bump monitoring summary: %w", err)
	}

	return nil
}

// GetSummary implements monitoring.LogRepository.
func (m *monitoringRepository) GetSummary(ctx context.Context, date string) (*monitoring.DailySummary, error) {
	q := GetQuerier(ctx, m.db)

	query := `
		SELECT date, reminded_count, escalated_count, auto_clocked_out_count, updated_at
		FROM checkout_monitoring_summaries
		WHERE date = $1
	`

	var summary monitoring.DailySummary
	err := q.QueryRow(ctx, query, date).Scan(
		&summary.Date,
		&summary.RemindedCount,
		&summary.EscalatedCount,
		&summary.AutoClockedOutCount,
		&summary.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get monitoring summary: %w", err)
	}

	return &summary, nil
}
