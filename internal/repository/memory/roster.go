package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

type DoctorRepository struct {
	store *Store
}

func (r *DoctorRepository) Create(_ context.Context, doctor *model.Doctor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt
	r.store.doctors[doctor.ID] = copyDoctor(doctor)
	return nil
}

func (r *DoctorRepository) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	doctor, ok := r.store.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor")
	}
	return copyDoctor(doctor), nil
}

func (r *DoctorRepository) Update(_ context.Context, doctor *model.Doctor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.doctors[doctor.ID]
	if !ok {
		return apperrors.NotFound("doctor")
	}
	existing.ConsultationFee = doctor.ConsultationFee
	existing.IsActive = doctor.IsActive
	existing.UpdatedAt = time.Now()
	doctor.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *DoctorRepository) List(_ context.Context, activeOnly bool) ([]*model.Doctor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var doctors []*model.Doctor
	for _, d := range r.store.doctors {
		if activeOnly && !d.IsActive {
			continue
		}
		doctors = append(doctors, copyDoctor(d))
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].FullName < doctors[j].FullName })
	return doctors, nil
}

type PatientRepository struct {
	store *Store
}

func (r *PatientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt
	r.store.patients[patient.ID] = copyPatient(patient)
	return nil
}

func (r *PatientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	patient, ok := r.store.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient")
	}
	return copyPatient(patient), nil
}

func (r *PatientRepository) Update(_ context.Context, patient *model.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.patients[patient.ID]; !ok {
		return apperrors.NotFound("patient")
	}
	patient.UpdatedAt = time.Now()
	r.store.patients[patient.ID] = copyPatient(patient)
	return nil
}

func (r *PatientRepository) List(_ context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var patients []*model.Patient
	for _, p := range r.store.patients {
		if filters != nil && len(filters.Search) >= 3 {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(p.FullName), needle) &&
				!strings.Contains(p.MobileNumber, filters.Search) {
				continue
			}
		}
		patients = append(patients, copyPatient(p))
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].FullName < patients[j].FullName })
	return patients, nil
}
