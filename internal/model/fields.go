package model

// SignupFields is the raw form input submitted for sign-up or sign-in.
// Sign-in only reads Email and Password.
type SignupFields struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
	StudentID  string `json:"student_id,omitempty"`
	StaffID    string `json:"staff_id,omitempty"`
}

// Identifier returns the role-specific identifier carried by the fields.
func (f SignupFields) Identifier(role Role) string {
	if role == RoleStaff {
		return f.StaffID
	}
	return f.StudentID
}
