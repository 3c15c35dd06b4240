package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekday runs 1 (Monday) through 7 (Sunday), matching the schedule schema.
const (
	WeekdayMonday = 1
	WeekdaySunday = 7
)

// WeekdayOf maps a calendar date onto the 1..7 schedule weekday.
func WeekdayOf(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return WeekdaySunday
	}
	return wd
}

// MinuteOfDay parses an "HH:MM" wall-clock string into minutes since midnight.
func MinuteOfDay(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// FormatMinute renders minutes since midnight back to "HH:MM".
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// WeeklySlot is a recurring availability window for a doctor.
// MaxPatients of zero means unlimited capacity per time point.
type WeeklySlot struct {
	Base
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Weekday     int       `db:"weekday" json:"weekday"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	MaxPatients int       `db:"max_patients" json:"max_patients"`
	IsActive    bool      `db:"is_active" json:"is_active"`
}

// DateException overrides a doctor's availability on one calendar date.
// An unavailability override wins over any recurring slots for that date.
type DateException struct {
	Base
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date        time.Time `db:"date" json:"date"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	Reason      string    `db:"reason" json:"reason,omitempty"`
}

type CreateSlotRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id" binding:"required"`
	Weekday     int       `json:"weekday" binding:"required,min=1,max=7"`
	StartTime   string    `json:"start_time" binding:"required,timeofday"`
	EndTime     string    `json:"end_time" binding:"required,timeofday"`
	MaxPatients int       `json:"max_patients" binding:"gte=0"`
}

type UpdateSlotRequest struct {
	Weekday     *int    `json:"weekday" binding:"omitempty,min=1,max=7"`
	StartTime   *string `json:"start_time" binding:"omitempty,timeofday"`
	EndTime     *string `json:"end_time" binding:"omitempty,timeofday"`
	MaxPatients *int    `json:"max_patients" binding:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

type CreateExceptionRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id" binding:"required"`
	Date        string    `json:"date" binding:"required,datetime=2006-01-02"`
	IsAvailable bool      `json:"is_available"`
	Reason      string    `json:"reason" binding:"max=500"`
}

// TimePoint is one bookable moment on a doctor's calendar.
// Remaining is meaningless when Unlimited is set.
type TimePoint struct {
	Time      time.Time `json:"time"`
	Remaining int       `json:"remaining_capacity"`
	Unlimited bool      `json:"unlimited,omitempty"`
}
