package dto

import "time"

// RegisterRequest creates a dashboard user account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=ADMIN REGIONAL_COORDINATOR"`
}

// LoginRequest authenticates a dashboard user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// OTPRequest starts the teacher phone login flow.
type OTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10"`
}

// OTPRequestResponse acknowledges OTP dispatch. OTP is only populated
// outside production so mobile testers can log in without an SMS channel.
type OTPRequestResponse struct {
	PhoneNumber string    `json:"phone_number"`
	ExpiresAt   time.Time `json:"expires_at"`
	OTP         string    `json:"otp,omitempty"`
}

// OTPVerifyRequest completes the teacher phone login flow.
type OTPVerifyRequest struct {
	Phone string `json:"phone" validate:"required,min=10"`
	OTP   string `json:"otp" validate:"required"`
}

// TeacherLoginResponse carries the teacher token plus anganwadi context.
type TeacherLoginResponse struct {
	Token     string         `json:"token"`
	Teacher   TeacherLite    `json:"teacher"`
	Anganwadi *AnganwadiLite `json:"anganwadi,omitempty"`
}

// TeacherProfileResponse is the authenticated teacher's own view: their
// record, their anganwadi, and its active students.
type TeacherProfileResponse struct {
	Teacher   TeacherLite   `json:"teacher"`
	Anganwadi AnganwadiLite `json:"anganwadi"`
	Students  []StudentLite `json:"students"`
}

// TeacherAnganwadiResponse is the authenticated teacher's anganwadi together
// with the currently running assessments covering it.
type TeacherAnganwadiResponse struct {
	Anganwadi         AnganwadiLite        `json:"anganwadi"`
	ActiveAssessments []AssessmentResponse `json:"active_assessments"`
}
