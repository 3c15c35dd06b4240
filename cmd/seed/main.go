package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/careloop/hms-api/internal/config"
	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository/postgres"
)

// Seeds a handful of doctors, patients and weekly slots for local development.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)

	doctors := []*model.Doctor{
		{FullName: "Dr. Asha Rao", Department: "Cardiology", Specialty: "Interventional Cardiology", ConsultationFee: 800, IsActive: true},
		{FullName: "Dr. Vikram Shah", Department: "Dermatology", Specialty: "Clinical Dermatology", ConsultationFee: 600, IsActive: true},
		{FullName: "Dr. Meera Iyer", Department: "Pediatrics", Specialty: "Neonatology", ConsultationFee: 500, IsActive: true},
	}
	for _, d := range doctors {
		if err := doctorRepo.Create(ctx, d); err != nil {
			log.Fatal().Err(err).Str("doctor", d.FullName).Msg("failed to seed doctor")
		}
		log.Info().Str("doctor", d.FullName).Str("id", d.ID.String()).Msg("seeded doctor")
	}

	patients := []*model.Patient{
		{FullName: "Ravi Kumar", MobileNumber: "9876543210", Gender: model.GenderMale, Email: "ravi.kumar@example.com", WhatsappOptIn: true},
		{FullName: "Sunita Devi", MobileNumber: "9812345678", Gender: model.GenderFemale},
		{FullName: "Arjun Mehta", MobileNumber: "9900112233", Gender: model.GenderMale, Email: "arjun.m@example.com"},
	}
	for _, p := range patients {
		if err := patientRepo.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Str("patient", p.FullName).Msg("failed to seed patient")
		}
		log.Info().Str("patient", p.FullName).Str("id", p.ID.String()).Msg("seeded patient")
	}

	// Weekday clinics Monday through Saturday, mornings and evenings.
	for _, d := range doctors {
		for weekday := model.WeekdayMonday; weekday <= 6; weekday++ {
			slots := []*model.WeeklySlot{
				{DoctorID: d.ID, Weekday: weekday, StartTime: "09:00", EndTime: "13:00", MaxPatients: 8, IsActive: true},
				{DoctorID: d.ID, Weekday: weekday, StartTime: "17:00", EndTime: "20:00", MaxPatients: 6, IsActive: true},
			}
			for _, slot := range slots {
				if err := scheduleRepo.CreateSlot(ctx, slot); err != nil {
					log.Fatal().Err(err).Str("doctor", d.FullName).Int("weekday", weekday).Msg("failed to seed slot")
				}
			}
		}
	}

	log.Info().Msg("seed complete")
}
