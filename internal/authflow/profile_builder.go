package authflow

import (
	"strings"
	"time"

	"uniportal/internal/model"
)

const defaultYearOfStudy = 1

// BuildProfile turns validated sign-up input into the profile record for a new
// identity. It has no side effects; callers pass the clock reading.
func BuildProfile(identityID string, fields model.SignupFields, role model.Role, now time.Time) model.UserProfile {
	p := model.UserProfile{
		IdentityID: identityID,
		Name:       strings.TrimSpace(fields.Name),
		Email:      strings.TrimSpace(fields.Email),
		Role:       role,
		Department: strings.TrimSpace(fields.Department),
		CreatedAt:  now,
		UpdatedAt:  now,
		IsActive:   true,
	}

	switch role {
	case model.RoleStudent:
		enrolled := now
		p.StudentID = strings.TrimSpace(fields.StudentID)
		p.YearOfStudy = defaultYearOfStudy
		p.Program = ""
		p.EnrollmentDate = &enrolled
	case model.RoleStaff:
		p.StaffID = strings.TrimSpace(fields.StaffID)
		p.Position = ""
		p.OfficeLocation = ""
	}
	return p
}
