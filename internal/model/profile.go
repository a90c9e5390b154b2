package model

import "time"

// UserProfile is the role-tagged profile record stored once per identity.
// Student and staff columns share one table; the columns of the other role
// stay at their zero value.
type UserProfile struct {
	IdentityID string    `json:"id" gorm:"column:identity_id;type:char(36);primaryKey"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	Email      string    `json:"email" gorm:"size:255;not null;index"`
	Role       Role      `json:"role" gorm:"size:16;not null;index"`
	Department string    `json:"department" gorm:"size:255;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsActive   bool      `json:"is_active" gorm:"not null"`

	// Student
	StudentID      string     `json:"student_id,omitempty" gorm:"size:9;index"`
	YearOfStudy    int        `json:"year_of_study,omitempty"`
	Program        string     `json:"program"`
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty"`

	// Staff
	StaffID        string `json:"staff_id,omitempty" gorm:"size:32;index"`
	Position       string `json:"position"`
	OfficeLocation string `json:"office_location"`
}

// TableName pins the table name independent of gorm's pluralization.
func (UserProfile) TableName() string {
	return "user_profiles"
}
