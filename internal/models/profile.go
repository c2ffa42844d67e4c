package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientProfile represents the personal profile of a client account
type ClientProfile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AccountID   uuid.UUID `json:"account_id" db:"account_id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	MiddleName  *string   `json:"middle_name,omitempty" db:"middle_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	DateOfBirth time.Time `json:"date_of_birth" db:"date_of_birth"`
	Sex         string    `json:"sex" db:"sex"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Address     string    `json:"address" db:"address"`
}

// FullName returns the display name of the client
func (p *ClientProfile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// WorkerProfile represents the professional profile of a worker account
type WorkerProfile struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	AccountID       uuid.UUID       `json:"account_id" db:"account_id"`
	FirstName       string          `json:"first_name" db:"first_name"`
	MiddleName      *string         `json:"middle_name,omitempty" db:"middle_name"`
	LastName        string          `json:"last_name" db:"last_name"`
	Email           string          `json:"email" db:"email"`
	DateOfBirth     time.Time       `json:"date_of_birth" db:"date_of_birth"`
	Sex             string          `json:"sex" db:"sex"`
	PhoneNumber     string          `json:"phone_number" db:"phone_number"`
	Address         string          `json:"address" db:"address"`
	Latitude        *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64        `json:"longitude,omitempty" db:"longitude"`
	Skill           string          `json:"skill" db:"skill"`
	YearsExperience int             `json:"years_experience" db:"years_experience"`
	Bio             string          `json:"bio" db:"bio"`
	CompletedJobs   int             `json:"completed_jobs" db:"completed_jobs"`
	AverageRating   decimal.Decimal `json:"average_rating" db:"average_rating"`
}

// FullName returns the display name of the worker
func (p *WorkerProfile) FullName() string {
	return p.FirstName + " " + p.LastName
}
