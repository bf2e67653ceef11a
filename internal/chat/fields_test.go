package chat

import "testing"

func TestExtractPatient_FullMessage(t *testing.T) {
	got := ExtractPatient("add patient name: Jane Doe age: 34 gender: female contact: 9876543210 disease: flu doctor: Dr. Lee")

	want := map[string]any{
		"name":            "Jane Doe",
		"age":             34,
		"gender":          "Female",
		"contact":         "9876543210",
		"disease":         "flu",
		"doctor_assigned": "Dr. Lee",
	}
	for field, expected := range want {
		if got[field] != expected {
			t.Errorf("field %s = %v, want %v", field, got[field], expected)
		}
	}
}

func TestExtractPatient_MissingFieldsStayNil(t *testing.T) {
	got := ExtractPatient("add patient age: 50")

	if got["age"] != 50 {
		t.Errorf("age = %v, want 50", got["age"])
	}
	for _, field := range []string{"name", "gender", "contact", "disease", "doctor_assigned"} {
		if got[field] != nil {
			t.Errorf("field %s = %v, want nil", field, got[field])
		}
	}
}

func TestExtractPatient_UnrecognizedGenderDropped(t *testing.T) {
	got := ExtractPatient("add patient name: Pat Smith gender: unknown")
	if got["gender"] != nil {
		t.Errorf("gender = %v, want nil for value outside the closed vocabulary", got["gender"])
	}
	if got["name"] != "Pat Smith" {
		t.Errorf("name = %v, want Pat Smith", got["name"])
	}
}

func TestExtractPatient_ContactSeparatorsStripped(t *testing.T) {
	got := ExtractPatient("add patient name: Bo Li contact: 98-76 54-3210")
	if got["contact"] != "9876543210" {
		t.Errorf("contact = %v, want 9876543210", got["contact"])
	}
}

func TestExtractStaff(t *testing.T) {
	got := ExtractStaff("add staff name: Sam Carter role: nurse contact: 12345 6789")

	if got["name"] != "Sam Carter" {
		t.Errorf("name = %v, want Sam Carter", got["name"])
	}
	if got["role"] != "nurse" {
		t.Errorf("role = %v, want nurse", got["role"])
	}
	if got["contact"] != "123456789" {
		t.Errorf("contact = %v, want 123456789", got["contact"])
	}
}

func TestExtractAppointment(t *testing.T) {
	got := ExtractAppointment("schedule appointment patient_id 2 staff_id: 4 date 2026-09-01 time 9:30")

	if got["patient_id"] != 2 {
		t.Errorf("patient_id = %v, want 2", got["patient_id"])
	}
	if got["staff_id"] != 4 {
		t.Errorf("staff_id = %v, want 4", got["staff_id"])
	}
	if got["date"] != "2026-09-01" {
		t.Errorf("date = %v, want 2026-09-01", got["date"])
	}
	if got["time"] != "9:30" {
		t.Errorf("time = %v, want 9:30", got["time"])
	}
}

func TestExtractAppointment_PartialStaysNil(t *testing.T) {
	got := ExtractAppointment("schedule appointment patient_id 2")
	if got["patient_id"] != 2 {
		t.Errorf("patient_id = %v, want 2", got["patient_id"])
	}
	for _, field := range []string{"staff_id", "date", "time"} {
		if got[field] != nil {
			t.Errorf("field %s = %v, want nil", field, got[field])
		}
	}
}

func TestFieldMap_Helpers(t *testing.T) {
	f := FieldMap{"name": "Jo", "age": nil}
	if !f.Has("name") || f.Has("age") {
		t.Error("Has should report extracted fields only")
	}
	if f.Str("name") != "Jo" {
		t.Errorf("Str(name) = %q, want Jo", f.Str("name"))
	}
	if f.Str("age") != "" {
		t.Errorf("Str(age) = %q, want empty", f.Str("age"))
	}
}
