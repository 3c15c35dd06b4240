package model

import "time"

type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderOther   Gender = "OTHER"
	GenderUnknown Gender = "UNKNOWN"
)

type Patient struct {
	Base
	FullName       string     `db:"full_name" json:"full_name"`
	MobileNumber   string     `db:"mobile_number" json:"mobile_number"`
	WhatsappOptIn  bool       `db:"whatsapp_opt_in" json:"whatsapp_opt_in"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender         Gender     `db:"gender" json:"gender"`
	Email          string     `db:"email" json:"email,omitempty"`
}

type CreatePatientRequest struct {
	FullName      string     `json:"full_name" binding:"required,max=200"`
	MobileNumber  string     `json:"mobile_number" binding:"required,max=20"`
	WhatsappOptIn bool       `json:"whatsapp_opt_in"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Gender        Gender     `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER UNKNOWN"`
	Email         string     `json:"email" binding:"omitempty,email"`
}

type PatientFilters struct {
	// Search matches name or mobile number; ignored below three characters.
	Search string `form:"search"`
	Pagination
}
