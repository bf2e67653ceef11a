package chat

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldMap holds extracted field values for one record kind. Every schema
// field is present; absent values are explicit nils. Extraction never fails:
// anything the patterns cannot pin down stays nil.
type FieldMap map[string]any

// Has reports whether the field was extracted.
func (f FieldMap) Has(key string) bool {
	return f[key] != nil
}

// Str returns the field as a string, or "" when absent.
func (f FieldMap) Str(key string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

// fieldPattern builds a `<label>[:|-]? <value>` pattern searched anywhere in
// the text, case-insensitively. The value capture is lazy and must be closed
// by a following field label, a character outside the value alphabet, or the
// end of the text; this keeps a greedy value from swallowing the next label
// ("name: Jane Doe age: 34" captures "Jane Doe", not "Jane Doe age").
func fieldPattern(label, value, notValue string, stops []string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?i)\b` + label + `\s*[:\-]?\s*(` + value + `)` +
			`(?:\s+(?:` + strings.Join(stops, "|") + `)\b|\s*` + notValue + `|\s*$)`)
}

var (
	patientStops = []string{"name", "age", "gender", "contact", "disease", "doctor", "phone", "mobile"}
	staffStops   = []string{"name", "role", "contact", "phone", "mobile"}

	nameRe    = fieldPattern("name", `[A-Za-z ]{2,50}?`, `[^A-Za-z ]`, patientStops)
	diseaseRe = fieldPattern("disease", `[A-Za-z0-9 ,.\-]{2,100}?`, `[^A-Za-z0-9 ,.\-]`, patientStops)
	doctorRe  = fieldPattern("doctor", `[A-Za-z .]{2,100}?`, `[^A-Za-z .]`, patientStops)

	staffNameRe = fieldPattern("name", `[A-Za-z ]{2,50}?`, `[^A-Za-z ]`, staffStops)
	roleRe      = fieldPattern("role", `[A-Za-z ]{2,50}?`, `[^A-Za-z ]`, staffStops)

	ageRe     = regexp.MustCompile(`(?i)\bage\s*[:\-]?\s*(\d{1,3})`)
	genderRe  = regexp.MustCompile(`(?i)\bgender\s*[:\-]?\s*(male|female|other)\b`)
	contactRe = regexp.MustCompile(`(?i)\bcontact\s*[:\-]?\s*(\+?\d[\d\s\-]{6,})`)

	apptPatientRe = regexp.MustCompile(`(?i)\bpatient[_ ]?id\s*[:\-]?\s*(\d+)`)
	apptStaffRe   = regexp.MustCompile(`(?i)\bstaff[_ ]?id\s*[:\-]?\s*(\d+)`)
	dateRe        = regexp.MustCompile(`(?i)\bdate\s*[:\-]?\s*(\d{4}-\d{2}-\d{2})`)
	timeRe        = regexp.MustCompile(`(?i)\btime\s*[:\-]?\s*(\d{1,2}:\d{2})`)

	digitSeparators = regexp.MustCompile(`[\s\-]+`)
)

// ExtractPatient pulls patient fields out of free text. First match wins per
// field; gender accepts only the closed male/female/other vocabulary and is
// title-cased, anything else stays nil.
func ExtractPatient(text string) FieldMap {
	data := FieldMap{
		"name": nil, "age": nil, "gender": nil,
		"contact": nil, "disease": nil, "doctor_assigned": nil,
	}
	if m := nameRe.FindStringSubmatch(text); m != nil {
		data["name"] = strings.TrimSpace(m[1])
	}
	if m := ageRe.FindStringSubmatch(text); m != nil {
		age, _ := strconv.Atoi(m[1])
		data["age"] = age
	}
	if m := genderRe.FindStringSubmatch(text); m != nil {
		data["gender"] = titleCase(m[1])
	}
	if m := contactRe.FindStringSubmatch(text); m != nil {
		data["contact"] = digitSeparators.ReplaceAllString(m[1], "")
	}
	if m := diseaseRe.FindStringSubmatch(text); m != nil {
		data["disease"] = strings.TrimSpace(m[1])
	}
	if m := doctorRe.FindStringSubmatch(text); m != nil {
		data["doctor_assigned"] = strings.TrimSpace(m[1])
	}
	return data
}

// ExtractStaff pulls staff fields out of free text.
func ExtractStaff(text string) FieldMap {
	data := FieldMap{"name": nil, "role": nil, "contact": nil}
	if m := staffNameRe.FindStringSubmatch(text); m != nil {
		data["name"] = strings.TrimSpace(m[1])
	}
	if m := roleRe.FindStringSubmatch(text); m != nil {
		data["role"] = strings.TrimSpace(m[1])
	}
	if m := contactRe.FindStringSubmatch(text); m != nil {
		data["contact"] = digitSeparators.ReplaceAllString(m[1], "")
	}
	return data
}

// ExtractAppointment pulls the four scheduling fields out of free text.
// Date must be ISO YYYY-MM-DD and time H:MM or HH:MM.
func ExtractAppointment(text string) FieldMap {
	data := FieldMap{"patient_id": nil, "staff_id": nil, "date": nil, "time": nil}
	if m := apptPatientRe.FindStringSubmatch(text); m != nil {
		id, _ := strconv.Atoi(m[1])
		data["patient_id"] = id
	}
	if m := apptStaffRe.FindStringSubmatch(text); m != nil {
		id, _ := strconv.Atoi(m[1])
		data["staff_id"] = id
	}
	if m := dateRe.FindStringSubmatch(text); m != nil {
		data["date"] = m[1]
	}
	if m := timeRe.FindStringSubmatch(text); m != nil {
		data["time"] = m[1]
	}
	return data
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
