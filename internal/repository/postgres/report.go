package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
)

func (r *reportRepository) DashboardMetrics(ctx context.Context, from, to time.Time) (*model.DashboardMetrics, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed,
			COUNT(*) FILTER (WHERE status = 'CANCELLED') AS cancelled,
			COUNT(*) FILTER (WHERE status = 'NO_SHOW') AS no_show
		FROM appointments
		WHERE start_time >= $1 AND start_time < $2
	`
	var row struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
		Cancelled int `db:"cancelled"`
		NoShow    int `db:"no_show"`
	}
	if err := r.db.GetContext(ctx, &row, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to aggregate appointments: %w", err)
	}

	metrics := &model.DashboardMetrics{
		TotalAppointments:     row.Total,
		CompletedAppointments: row.Completed,
		CancelledAppointments: row.Cancelled,
		NoShowCount:           row.NoShow,
	}

	paymentQuery := `
		SELECT
			COUNT(*) FILTER (WHERE p.status = 'PENDING') AS pending,
			COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'SUCCESS'), 0) AS revenue
		FROM payments p
		JOIN appointments a ON a.id = p.appointment_id
		WHERE a.start_time >= $1 AND a.start_time < $2
	`
	var pay struct {
		Pending int     `db:"pending"`
		Revenue float64 `db:"revenue"`
	}
	if err := r.db.GetContext(ctx, &pay, paymentQuery, from, to); err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	metrics.PendingPayments = pay.Pending
	metrics.TotalRevenue = pay.Revenue

	return metrics, nil
}

func (r *reportRepository) DailyReport(ctx context.Context, date time.Time) ([]*model.DailyReport, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT
			d.id AS doctor_id,
			d.full_name AS doctor_name,
			COUNT(a.id) AS total,
			COUNT(a.id) FILTER (WHERE a.status = 'COMPLETED') AS completed,
			COUNT(a.id) FILTER (WHERE a.status = 'CANCELLED') AS cancelled,
			COUNT(a.id) FILTER (WHERE a.status = 'NO_SHOW') AS no_show,
			COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'SUCCESS'), 0) AS revenue
		FROM doctors d
		LEFT JOIN appointments a ON a.doctor_id = d.id
			AND a.start_time >= $1 AND a.start_time < $2
		LEFT JOIN payments p ON p.appointment_id = a.id
		GROUP BY d.id, d.full_name
		ORDER BY d.full_name ASC
	`
	rows := []*struct {
		DoctorID   uuid.UUID `db:"doctor_id"`
		DoctorName string    `db:"doctor_name"`
		Total      int       `db:"total"`
		Completed  int       `db:"completed"`
		Cancelled  int       `db:"cancelled"`
		NoShow     int       `db:"no_show"`
		Revenue    float64   `db:"revenue"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("failed to build daily report: %w", err)
	}

	reports := make([]*model.DailyReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, &model.DailyReport{
			Date:       dayStart,
			DoctorID:   row.DoctorID,
			DoctorName: row.DoctorName,
			Total:      row.Total,
			Completed:  row.Completed,
			Cancelled:  row.Cancelled,
			NoShow:     row.NoShow,
			Revenue:    row.Revenue,
		})
	}
	return reports, nil
}
