package authflow

import (
	"regexp"
	"strings"

	"uniportal/internal/model"
)

// Mode selects which rule set a submission is checked against.
type Mode string

const (
	ModeSignUp Mode = "signup"
	ModeSignIn Mode = "signin"
)

// DefaultDomain is the institutional email domain accounts must belong to.
const DefaultDomain = "gre.ac.uk"

// Reason codes reported by Validate. They are stable and safe to match on.
const (
	CodeMissingField            = "missing_field"
	CodeInvalidDomain           = "invalid_domain"
	CodeMissingIdentifier       = "missing_identifier"
	CodeMissingDepartment       = "missing_department"
	CodeInvalidIdentifierFormat = "invalid_identifier_format"
	CodeInvalidRole             = "invalid_role"
)

var (
	studentIDPattern = regexp.MustCompile(`^\d{9}$`)
	staffIDPattern   = regexp.MustCompile(`^[A-Za-z]{3}\d+$`)
)

// Result is the outcome of a validation pass. The zero value is a success.
type Result struct {
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the input passed every rule.
func (r Result) OK() bool {
	return r.Code == ""
}

func fail(code, field, message string) Result {
	return Result{Code: code, Field: field, Message: message}
}

// Validator checks raw form input against the institution's identity rules.
// It holds only configuration and is safe for concurrent use.
type Validator struct {
	suffix string
}

// NewValidator creates a validator for the given email domain. An empty
// domain falls back to DefaultDomain.
func NewValidator(domain string) *Validator {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
	if domain == "" {
		domain = DefaultDomain
	}
	return &Validator{suffix: "@" + domain}
}

// Domain returns the configured email domain without the leading "@".
func (v *Validator) Domain() string {
	return strings.TrimPrefix(v.suffix, "@")
}

// Validate applies the rules in order and returns the first violation.
func (v *Validator) Validate(fields model.SignupFields, role model.Role, mode Mode) Result {
	if !role.Valid() {
		return fail(CodeInvalidRole, "role", "Please choose Student or Staff")
	}

	// Presence
	if blank(fields.Email) {
		return fail(CodeMissingField, "email", "Please fill in all fields")
	}
	if blank(fields.Password) {
		return fail(CodeMissingField, "password", "Please fill in all fields")
	}
	if mode == ModeSignUp && blank(fields.Name) {
		return fail(CodeMissingField, "name", "Please fill in all fields")
	}

	// Domain
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(fields.Email)), v.suffix) {
		return fail(CodeInvalidDomain, "email", "Please use your university email ("+v.suffix+")")
	}

	if mode != ModeSignUp {
		return Result{}
	}

	id := strings.TrimSpace(fields.Identifier(role))
	idField := identifierField(role)
	if id == "" {
		return fail(CodeMissingIdentifier, idField, "Please enter your "+identifierLabel(role))
	}
	if blank(fields.Department) {
		return fail(CodeMissingDepartment, "department", "Please enter your department or faculty")
	}

	switch role {
	case model.RoleStudent:
		if !studentIDPattern.MatchString(id) {
			return fail(CodeInvalidIdentifierFormat, idField, "Student ID must be exactly 9 digits")
		}
	case model.RoleStaff:
		if !staffIDPattern.MatchString(id) {
			return fail(CodeInvalidIdentifierFormat, idField, "Staff ID must be 3 letters followed by digits (e.g. STF123)")
		}
	}
	return Result{}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func identifierField(role model.Role) string {
	if role == model.RoleStaff {
		return "staff_id"
	}
	return "student_id"
}

func identifierLabel(role model.Role) string {
	if role == model.RoleStaff {
		return "Staff ID"
	}
	return "Student ID"
}
