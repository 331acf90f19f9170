package model

type Doctor struct {
	Base
	Name              string `db:"name" json:"name"`
	Age               int    `db:"age" json:"age"`
	Qualification     string `db:"qualification" json:"qualification"`
	Specialization    string `db:"specialization" json:"specialization"`
	PhoneNumber       string `db:"phone_number" json:"phone_number"`
	YearsOfExperience int    `db:"years_of_experience" json:"years_of_experience"`
	Email             string `db:"email" json:"email"`
	PasswordHash      string `db:"password_hash" json:"-"`
}

type DoctorRegistrationRequest struct {
	Name              string `json:"name" binding:"required,max=100"`
	Age               int    `json:"age" binding:"required,min=20"`
	Qualification     string `json:"qualification" binding:"required,max=100"`
	Specialization    string `json:"specialization" binding:"required,max=100"`
	PhoneNumber       string `json:"phone_number" binding:"required,phone"`
	YearsOfExperience int    `json:"years_of_experience" binding:"min=0"`
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
}

type DoctorUpdateRequest struct {
	PhoneNumber       *string `json:"phone_number" binding:"omitempty,phone"`
	YearsOfExperience *int    `json:"years_of_experience" binding:"omitempty,min=0"`
	Qualification     *string `json:"qualification" binding:"omitempty,max=100"`
}
