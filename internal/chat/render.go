package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// asInt coerces the integer shapes a row value can arrive in. pgx hands back
// int32 for integer columns; the generative parser hands back float64 from
// JSON.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// strOrNA renders a column value for display; absent values become "N/A".
func strOrNA(v any) string {
	if v == nil {
		return "N/A"
	}
	s := fmt.Sprintf("%v", sanitizeValue(v))
	if s == "" {
		return "N/A"
	}
	return s
}

// formatRecord renders one row as "column: value" lines in column order.
func formatRecord(columns []string, row map[string]any) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+": "+strOrNA(row[col]))
	}
	return strings.Join(parts, "\n")
}

func patientSummary(row map[string]any) string {
	return fmt.Sprintf(
		"Patient %s (ID: %s) is %s-year-old %s. Contact: %s. Diagnosis: %s. Assigned doctor: %s.",
		strOrNA(row["name"]), strOrNA(row["patient_id"]), strOrNA(row["age"]),
		strOrNA(row["gender"]), strOrNA(row["contact"]), strOrNA(row["disease"]),
		strOrNA(row["doctor_assigned"]))
}

func staffSummary(row map[string]any) string {
	return fmt.Sprintf("Staff %s (ID: %s) is a %s. Contact: %s.",
		strOrNA(row["name"]), strOrNA(row["staff_id"]),
		strOrNA(row["role"]), strOrNA(row["contact"]))
}
