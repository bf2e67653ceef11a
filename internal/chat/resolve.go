package chat

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/wardbot/wardbot/internal/platform/db"
)

// -- Explicit id references --

// Role word followed by an id, with optional "id", "#" or ":" decoration and
// arbitrary non-digit filler in between ("patient 5", "patient_id: 5",
// "the patient whose id is 5").
var (
	patientIDRe = regexp.MustCompile(`(?i)\bpatient[^0-9\n\r]*(?:id\s*)?(?:#|:)?\s*(\d+)`)
	staffIDRe   = regexp.MustCompile(`(?i)\bstaff[^0-9\n\r]*(?:id\s*)?(?:#|:)?\s*(\d+)`)
)

// ExplicitID finds a numeric id following the role's literal keyword.
func ExplicitID(text string, role Role) (int, bool) {
	re := patientIDRe
	if role == RoleStaff {
		re = staffIDRe
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// -- Name references --

var (
	// possessive: "John Doe's phone". Up to three words; the capture greedily
	// swallows a leading verb ("update John"), stripped afterwards.
	possessiveRe = regexp.MustCompile(`(?i)([A-Za-z]+(?:\s+[A-Za-z]+){0,2})'s`)

	// preposition-led: "contact for John Smith". The capture stops at a
	// clause or assignment boundary so "for John Smith and age to 45" yields
	// just the name.
	prepositionRe = regexp.MustCompile(`(?i)\b(?:for|of|named|called|about)\s+([A-Za-z][A-Za-z ]{0,79}?)(?:\s+(?:and|to|as)\b|\s*[=,;.]|\s*$)`)

	// imperative lead-in: "update John Doe contact to ...". Anchored on the
	// field keyword that follows, so the name cannot swallow the clause.
	imperativeRe = regexp.MustCompile(`(?i)\b(?:update|change|set)\s+(?:the\s+)?([A-Za-z][A-Za-z ]{0,79}?)\s+(?:name|age|gender|contact|phone|mobile|disease|doctor|role)\b`)

	// lookup lead-ins: "tell me about John", "details of Dr Smith".
	lookupRe = regexp.MustCompile(`(?i)\b(?:tell me about|who is|info on|information about|details for|details of)\s+([A-Za-z.\- ]{2,80})`)

	leadingNoise = map[string]bool{
		"update": true, "change": true, "set": true,
		"show": true, "find": true, "get": true,
		"the": true, "please": true,
	}
)

// ExtractName pulls a person name out of an update-style message. Sub-rules
// in order: possessive form, preposition-led phrase, imperative lead-in.
func ExtractName(text string) (string, bool) {
	if m := possessiveRe.FindStringSubmatch(text); m != nil {
		if name := stripLeadingNoise(m[1]); name != "" {
			return name, true
		}
	}
	if m := prepositionRe.FindStringSubmatch(text); m != nil {
		if name := stripLeadingNoise(m[1]); name != "" {
			return name, true
		}
	}
	if m := imperativeRe.FindStringSubmatch(text); m != nil {
		if name := stripLeadingNoise(m[1]); name != "" {
			return name, true
		}
	}
	return "", false
}

// LookupName pulls a name out of a read-style message ("tell me about X").
func LookupName(text string) (string, bool) {
	m := lookupRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}

// stripLeadingNoise drops verb and filler tokens a greedy capture picked up
// before the actual name ("update John" -> "John").
func stripLeadingNoise(name string) string {
	tokens := strings.Fields(name)
	for len(tokens) > 0 && leadingNoise[strings.ToLower(tokens[0])] {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// resolveName probes the role's table for a fuzzy name match. Exactly one row
// resolves to that row's id; zero or multiple rows leave the reference
// unresolved, and probe failures do too (the cascade falls through rather
// than erroring on a probe).
func resolveName(ctx context.Context, store db.Store, role Role, name string) (int, bool) {
	table, idCol := role.Table()
	res, err := store.Select(ctx,
		"SELECT "+idCol+" FROM "+table+" WHERE name ILIKE $1", "%"+name+"%")
	if err != nil || res == nil || len(res.Rows) != 1 {
		return 0, false
	}
	return asInt(res.Rows[0][idCol])
}
