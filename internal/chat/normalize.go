package chat

import (
	"regexp"
	"strings"
)

// Role identifies which record table a message targets.
type Role string

const (
	RolePatient Role = "patient"
	RoleStaff   Role = "staff"
)

// Label returns the role name as it appears in user-facing messages.
func (r Role) Label() string {
	if r == RoleStaff {
		return "Staff"
	}
	return "Patient"
}

// Table returns the table name and primary key column for the role.
func (r Role) Table() (table, idColumn string) {
	if r == RoleStaff {
		return "staff", "staff_id"
	}
	return "patients", "patient_id"
}

// fieldSynonyms maps user spellings of field labels to column names.
var fieldSynonyms = map[string]string{
	"phone":           "contact",
	"phone number":    "contact",
	"mobile":          "contact",
	"contact number":  "contact",
	"doc":             "doctor_assigned",
	"doctor":          "doctor_assigned",
	"assigned doctor": "doctor_assigned",
	"admitted date":   "admitted_date",
	"discharge date":  "discharge_date",
	"age":             "age",
	"name":            "name",
	"disease":         "disease",
	"gender":          "gender",
	"role":            "role",
}

// patientColumns is the closed set of patient columns an update may touch.
var patientColumns = map[string]bool{
	"name":            true,
	"age":             true,
	"gender":          true,
	"contact":         true,
	"disease":         true,
	"doctor_assigned": true,
	"admitted_date":   true,
	"discharge_date":  true,
}

// staffColumns is the closed set of staff columns an update may touch.
var staffColumns = map[string]bool{
	"name":    true,
	"role":    true,
	"contact": true,
}

var nonLabelChars = regexp.MustCompile(`[^a-z0-9 _]`)

// NormalizeField canonicalizes a user-supplied field label to a column name.
// It is total (every input yields some string) and idempotent; validity is
// checked later against the per-role allowed set, never here.
func NormalizeField(label string) string {
	n := strings.ToLower(strings.TrimSpace(label))
	n = nonLabelChars.ReplaceAllString(n, "")
	n = strings.TrimSpace(n)
	if canonical, ok := fieldSynonyms[n]; ok {
		return canonical
	}
	return strings.ReplaceAll(n, " ", "_")
}

// AllowedFields returns the closed set of updatable columns for a role.
func AllowedFields(role Role) map[string]bool {
	if role == RoleStaff {
		return staffColumns
	}
	return patientColumns
}
