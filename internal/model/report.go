package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardMetrics aggregates appointment and revenue counters for a period.
type DashboardMetrics struct {
	TotalAppointments     int     `json:"total_appointments"`
	CompletedAppointments int     `json:"completed_appointments"`
	CancelledAppointments int     `json:"cancelled_appointments"`
	NoShowCount           int     `json:"no_show_count"`
	PendingPayments       int     `json:"pending_payments"`
	TotalRevenue          float64 `json:"total_revenue"`
}

// DailyReport breaks one day's appointments down per doctor.
type DailyReport struct {
	Date       time.Time `json:"date"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Total      int       `json:"total"`
	Completed  int       `json:"completed"`
	Cancelled  int       `json:"cancelled"`
	NoShow     int       `json:"no_show"`
	Revenue    float64   `json:"revenue"`
}
