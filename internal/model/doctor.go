package model

type Doctor struct {
	Base
	FullName        string  `db:"full_name" json:"full_name"`
	Department      string  `db:"department" json:"department"`
	Specialty       string  `db:"specialty" json:"specialty"`
	ConsultationFee float64 `db:"consultation_fee" json:"consultation_fee"`
	IsActive        bool    `db:"is_active" json:"is_active"`
}

type CreateDoctorRequest struct {
	FullName        string  `json:"full_name" binding:"required,max=200"`
	Department      string  `json:"department" binding:"required,max=100"`
	Specialty       string  `json:"specialty" binding:"max=100"`
	ConsultationFee float64 `json:"consultation_fee" binding:"gte=0"`
}

// UpdateDoctorRequest carries roster edits. Identity fields are immutable once
// a doctor is referenced by appointments; only fee and active status change.
type UpdateDoctorRequest struct {
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitempty,gte=0"`
	IsActive        *bool    `json:"is_active"`
}
