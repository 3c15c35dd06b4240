// Package memory provides in-memory repository implementations with the same
// semantics as the postgres package. They back unit tests and local
// development; each Store is constructed per process or per test and injected
// explicitly, never held as a package-level singleton.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
)

// Store holds all in-memory tables behind one mutex.
type Store struct {
	mu sync.RWMutex

	doctors      map[uuid.UUID]*model.Doctor
	patients     map[uuid.UUID]*model.Patient
	slots        map[uuid.UUID]*model.WeeklySlot
	exceptions   map[uuid.UUID]*model.DateException
	appointments map[uuid.UUID]*model.Appointment
	history      map[uuid.UUID][]*model.StatusHistoryEntry
	payments     map[uuid.UUID]*model.Payment
	outbox       map[uuid.UUID]*model.OutboxEvent
}

func NewStore() *Store {
	return &Store{
		doctors:      make(map[uuid.UUID]*model.Doctor),
		patients:     make(map[uuid.UUID]*model.Patient),
		slots:        make(map[uuid.UUID]*model.WeeklySlot),
		exceptions:   make(map[uuid.UUID]*model.DateException),
		appointments: make(map[uuid.UUID]*model.Appointment),
		history:      make(map[uuid.UUID][]*model.StatusHistoryEntry),
		payments:     make(map[uuid.UUID]*model.Payment),
		outbox:       make(map[uuid.UUID]*model.OutboxEvent),
	}
}

func (s *Store) Doctors() *DoctorRepository           { return &DoctorRepository{store: s} }
func (s *Store) Patients() *PatientRepository         { return &PatientRepository{store: s} }
func (s *Store) Schedules() *ScheduleRepository       { return &ScheduleRepository{store: s} }
func (s *Store) Appointments() *AppointmentRepository { return &AppointmentRepository{store: s} }
func (s *Store) Payments() *PaymentRepository         { return &PaymentRepository{store: s} }
func (s *Store) Reports() *ReportRepository           { return &ReportRepository{store: s} }
func (s *Store) Outbox() *OutboxRepository            { return &OutboxRepository{store: s} }

func copyDoctor(d *model.Doctor) *model.Doctor {
	c := *d
	return &c
}

func copyPatient(p *model.Patient) *model.Patient {
	c := *p
	return &c
}

func copySlot(sl *model.WeeklySlot) *model.WeeklySlot {
	c := *sl
	return &c
}

func copyException(e *model.DateException) *model.DateException {
	c := *e
	return &c
}

func copyAppointment(a *model.Appointment) *model.Appointment {
	c := *a
	return &c
}

func copyEntry(e *model.StatusHistoryEntry) *model.StatusHistoryEntry {
	c := *e
	return &c
}
