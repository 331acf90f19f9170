package model

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type Patient struct {
	Base
	Name                string    `db:"name" json:"name"`
	Age                 int       `db:"age" json:"age"`
	DateOfBirth         time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender              Gender    `db:"gender" json:"gender"`
	PersonalNumber      string    `db:"personal_number" json:"personal_number"`
	Address             string    `db:"address" json:"address"`
	Email               string    `db:"email" json:"email"`
	GuardianName        *string   `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianRelation    *string   `db:"guardian_relation" json:"guardian_relation,omitempty"`
	GuardianPhoneNumber *string   `db:"guardian_phone_number" json:"guardian_phone_number,omitempty"`
	PasswordHash        string    `db:"password_hash" json:"-"`
}

type PatientRegistrationRequest struct {
	Name                string    `json:"name" binding:"required,max=100"`
	Age                 int       `json:"age" binding:"required,min=0,max=150"`
	DateOfBirth         time.Time `json:"date_of_birth" binding:"required,past"`
	Gender              Gender    `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	PersonalNumber      string    `json:"personal_number" binding:"required,max=20"`
	Address             string    `json:"address" binding:"required,max=255"`
	Email               string    `json:"email" binding:"required,email"`
	GuardianName        *string   `json:"guardian_name" binding:"omitempty,max=100"`
	GuardianRelation    *string   `json:"guardian_relation" binding:"omitempty,max=50"`
	GuardianPhoneNumber *string   `json:"guardian_phone_number" binding:"omitempty,phone"`
	Password            string    `json:"password" binding:"required,min=8"`
	ConfirmPassword     string    `json:"confirm_password" binding:"required"`
}

// PatientUpdateRequest only touches fields that are set.
type PatientUpdateRequest struct {
	Address             *string `json:"address" binding:"omitempty,max=255"`
	PersonalNumber      *string `json:"personal_number" binding:"omitempty,max=20"`
	GuardianName        *string `json:"guardian_name" binding:"omitempty,max=100"`
	GuardianRelation    *string `json:"guardian_relation" binding:"omitempty,max=50"`
	GuardianPhoneNumber *string `json:"guardian_phone_number" binding:"omitempty,phone"`
}
