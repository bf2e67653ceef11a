package chat

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wardbot/wardbot/internal/platform/db"
)

// Interpreter maps one free-text message to at most one store operation and
// exactly one response. Matchers are tried in a fixed priority order and the
// first one that commits wins; a matcher that recognizes its trigger but
// cannot complete (unresolved target, no usable fields) falls through to the
// next. The interpreter holds no per-message state.
type Interpreter struct {
	store  db.Store
	parser IntentParser
	logger zerolog.Logger
}

func NewInterpreter(store db.Store, logger zerolog.Logger) *Interpreter {
	return &Interpreter{store: store, logger: logger}
}

// SetParser installs the optional generative parsing shortcut. Without a
// parser the deterministic cascade runs alone.
func (in *Interpreter) SetParser(p IntentParser) {
	in.parser = p
}

// matchFunc reports (response, true) when the matcher commits to the
// message, or (_, false) to pass it down the cascade.
type matchFunc func(ctx context.Context, msg string) (Response, bool)

// Interpret runs the cascade for one message.
func (in *Interpreter) Interpret(ctx context.Context, message string) Response {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return validationError("Empty message")
	}

	matchers := []struct {
		name string
		fn   matchFunc
	}{
		{"multi_field_update", in.multiFieldUpdate},
		{"structured_update", in.structuredUpdate},
		{"generative", in.generative},
		{"add_patient", in.addPatient},
		{"add_staff", in.addStaff},
		{"schedule_appointment", in.scheduleAppointment},
		{"show_records", in.showRecords},
		{"id_lookup", in.idLookup},
		{"name_lookup", in.nameLookup},
	}
	for _, m := range matchers {
		if resp, ok := m.fn(ctx, msg); ok {
			in.logger.Debug().
				Str("matcher", m.name).
				Str("response_type", string(resp.Type)).
				Msg("message handled")
			return resp
		}
	}
	return textf("Use: add/show patient/staff or schedule appointment.")
}

// -- Matcher 1: conversational multi-field update --

var (
	clauseSplitRe = regexp.MustCompile(`(?i)\band\b|,|;`)

	// One "<field> to|=|as <value>" pair per clause. The separator is
	// mandatory; without it the lazy field capture degenerates to two-letter
	// garbage that the allowed-field filter then drops.
	fieldValueRe = regexp.MustCompile(`(?i)(?:\b(?:set|change|update)\s+)?([a-zA-Z][a-zA-Z _]{0,29}?)(?:\s+(?:to|as)\s+|\s*=\s*)(.+)$`)
)

func (in *Interpreter) multiFieldUpdate(ctx context.Context, msg string) (Response, bool) {
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "update") &&
		!strings.Contains(lower, "change") &&
		!strings.Contains(lower, "set") {
		return Response{}, false
	}

	role, recID, ok := in.resolveTarget(ctx, msg)
	if !ok {
		return Response{}, false
	}

	updates := extractFieldValuePairs(msg, role)
	if len(updates) == 0 {
		return Response{}, false
	}

	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	table, idCol := role.Table()
	setClauses := make([]string, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		setClauses[i] = f + " = $" + strconv.Itoa(i+1)
		args = append(args, updates[f])
	}
	args = append(args, recID)
	query := "UPDATE " + table + " SET " + strings.Join(setClauses, ", ") +
		" WHERE " + idCol + " = $" + strconv.Itoa(len(fields)+1)

	if err := in.store.Exec(ctx, query, args...); err != nil {
		return storeError(err), true
	}
	return successf("%s %d updated (%d fields).", role.Label(), recID, len(fields)), true
}

// resolveTarget determines which record an update-style message refers to:
// explicit patient id, explicit staff id, then fuzzy name lookup preferring
// patients over staff.
func (in *Interpreter) resolveTarget(ctx context.Context, msg string) (Role, int, bool) {
	if id, ok := ExplicitID(msg, RolePatient); ok {
		return RolePatient, id, true
	}
	if id, ok := ExplicitID(msg, RoleStaff); ok {
		return RoleStaff, id, true
	}
	name, ok := ExtractName(msg)
	if !ok {
		return "", 0, false
	}
	if id, ok := resolveName(ctx, in.store, RolePatient, name); ok {
		return RolePatient, id, true
	}
	if id, ok := resolveName(ctx, in.store, RoleStaff, name); ok {
		return RoleStaff, id, true
	}
	return "", 0, false
}

// extractFieldValuePairs splits a message on and/comma/semicolon and mines
// each clause for one field/value pair. Field labels are normalized and
// filtered against the role's allowed set; disallowed fields are dropped
// silently, never failing the whole update.
func extractFieldValuePairs(msg string, role Role) map[string]string {
	allowed := AllowedFields(role)
	pairs := make(map[string]string)
	for _, clause := range clauseSplitRe.Split(msg, -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		m := fieldValueRe.FindStringSubmatch(clause)
		if m == nil {
			continue
		}
		field := resolveFieldLabel(m[1], allowed)
		value := strings.TrimSpace(m[2])
		if field == "" || value == "" {
			continue
		}
		pairs[field] = value
	}
	return pairs
}

// resolveFieldLabel normalizes a captured field label against the allowed
// set, dropping leading tokens a loose capture picked up along the way
// ("s phone" from a possessive, "John set age" from a name) until the
// remainder is a recognized column. Empty result means no allowed field.
func resolveFieldLabel(raw string, allowed map[string]bool) string {
	tokens := strings.Fields(raw)
	for len(tokens) > 0 {
		if f := NormalizeField(strings.Join(tokens, " ")); allowed[f] {
			return f
		}
		tokens = tokens[1:]
	}
	return ""
}

// -- Matcher 2: structured single-field update --

var (
	// "update the FIELD of ROLE [id] ID to VALUE"
	structuredP1 = regexp.MustCompile(`(?i)(?:update|change|set)\s+(?:the\s+)?(?P<field>[a-zA-Z _]+?)\s+(?:of\s+)?(?P<role>patient|staff)(?:_?id)?\s*(?:id\s*)?(?:#|:)?\s*(?P<id>\d+)\s*(?:to|=|as|become)?\s*(?P<value>.+)`)
	// "update ROLE [id] ID [set] FIELD [to] VALUE"
	structuredP2 = regexp.MustCompile(`(?i)(?:update|change|set)\s+(?P<role>patient|staff)(?:_?id)?\s*(?:id\s*)?(?:#|:)?\s*(?P<id>\d+)\s*(?:set\s+)?(?P<field>[a-zA-Z _]+?)\s*(?:to|=|as|become)?\s*(?P<value>.+)`)

	firstIntRe = regexp.MustCompile(`\d{1,3}`)
)

func (in *Interpreter) structuredUpdate(ctx context.Context, msg string) (Response, bool) {
	for _, re := range []*regexp.Regexp{structuredP1, structuredP2} {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		// Only the first template that matches is considered; a bad match
		// falls out of this matcher entirely instead of trying the other.
		role := RolePatient
		if strings.EqualFold(m[re.SubexpIndex("role")], "staff") {
			role = RoleStaff
		}
		recID, err := strconv.Atoi(m[re.SubexpIndex("id")])
		if err != nil {
			return Response{}, false
		}
		rawField := strings.TrimSpace(m[re.SubexpIndex("field")])
		rawValue := strings.TrimSpace(m[re.SubexpIndex("value")])
		if rawField == "" || rawValue == "" {
			return Response{}, false
		}

		field := NormalizeField(rawField)
		if !AllowedFields(role)[field] {
			return Response{}, false
		}
		rawValue = strings.TrimRight(rawValue, ".;")

		var val any = rawValue
		if field == "age" {
			iv := firstIntRe.FindString(rawValue)
			if iv == "" {
				return textf("Could not parse numeric age from your message."), true
			}
			n, _ := strconv.Atoi(iv)
			val = n
		}

		table, idCol := role.Table()
		query := "UPDATE " + table + " SET " + field + " = $1 WHERE " + idCol + " = $2"
		if err := in.store.Exec(ctx, query, val, recID); err != nil {
			return storeError(err), true
		}
		return successf("%s %d updated: %s -> %v.", role.Label(), recID, field, val), true
	}
	return Response{}, false
}

// -- Matcher 3: generative parsing shortcut --

// generative hands the message to the configured intent parser and acts on
// the parsed intent. It is best-effort only: any parser failure or
// unrecognized intent passes the message on untouched, so the deterministic
// matchers below never depend on it.
func (in *Interpreter) generative(ctx context.Context, msg string) (Response, bool) {
	if in.parser == nil {
		return Response{}, false
	}
	parsed, err := in.parser.Parse(ctx, msg)
	if err != nil {
		in.logger.Debug().Err(err).Msg("generative parse failed, continuing cascade")
		return Response{}, false
	}
	if parsed == nil {
		return Response{}, false
	}

	switch parsed.Action {
	case "show":
		return in.generativeShow(ctx, parsed)
	case "update":
		return in.generativeUpdate(ctx, parsed)
	case "add":
		return in.generativeAdd(ctx, parsed)
	case "text":
		if parsed.Response != "" {
			return textf("%s", parsed.Response), true
		}
	}
	return Response{}, false
}

func parsedRole(p *ParsedIntent) (Role, bool) {
	switch p.Target {
	case "patient":
		return RolePatient, true
	case "staff":
		return RoleStaff, true
	default:
		return "", false
	}
}

func (in *Interpreter) generativeShow(ctx context.Context, p *ParsedIntent) (Response, bool) {
	role, ok := parsedRole(p)
	if !ok || p.ID == nil {
		return Response{}, false
	}
	table, idCol := role.Table()
	res, err := in.store.Select(ctx,
		"SELECT * FROM "+table+" WHERE "+idCol+" = $1", *p.ID)
	if err != nil {
		return storeError(err), true
	}
	if len(res.Rows) == 0 {
		return textf("No record found."), true
	}
	return textf("%s", formatRecord(res.Columns, res.Rows[0])), true
}

func (in *Interpreter) generativeUpdate(ctx context.Context, p *ParsedIntent) (Response, bool) {
	role, ok := parsedRole(p)
	if !ok {
		return Response{}, false
	}
	if p.ID == nil {
		return textf("Please specify the record id to update (e.g., patient_id 1)."), true
	}
	allowed := AllowedFields(role)
	updates := make(map[string]any)
	for k, v := range p.Fields {
		if f := NormalizeField(k); allowed[f] {
			updates[f] = v
		}
	}
	if len(updates) == 0 {
		return textf("No valid fields detected to update."), true
	}

	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	table, idCol := role.Table()
	setClauses := make([]string, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		setClauses[i] = f + " = $" + strconv.Itoa(i+1)
		args = append(args, updates[f])
	}
	args = append(args, *p.ID)
	query := "UPDATE " + table + " SET " + strings.Join(setClauses, ", ") +
		" WHERE " + idCol + " = $" + strconv.Itoa(len(fields)+1)

	if err := in.store.Exec(ctx, query, args...); err != nil {
		return storeError(err), true
	}
	return successf("%s %d updated (%d fields).", role.Label(), *p.ID, len(fields)), true
}

func (in *Interpreter) generativeAdd(ctx context.Context, p *ParsedIntent) (Response, bool) {
	role, ok := parsedRole(p)
	if !ok {
		return Response{}, false
	}
	f := p.Fields
	if role == RolePatient {
		err := in.store.Exec(ctx,
			`INSERT INTO patients (name, age, gender, contact, disease, doctor_assigned) VALUES ($1, $2, $3, $4, $5, $6)`,
			f["name"], f["age"], f["gender"], f["contact"], f["disease"], f["doctor_assigned"])
		if err != nil {
			return storeError(err), true
		}
		return successf("Patient added."), true
	}
	err := in.store.Exec(ctx,
		`INSERT INTO staff (name, role, contact) VALUES ($1, $2, $3)`,
		f["name"], f["role"], f["contact"])
	if err != nil {
		return storeError(err), true
	}
	return successf("Staff added."), true
}

// -- Matchers 4-5: record creation and scheduling --

func (in *Interpreter) addPatient(ctx context.Context, msg string) (Response, bool) {
	if !strings.Contains(strings.ToLower(msg), "add patient") {
		return Response{}, false
	}
	fields := ExtractPatient(msg)
	if !fields.Has("name") {
		return validationError("Please include name, age, gender, disease, and doctor."), true
	}
	err := in.store.Exec(ctx,
		`INSERT INTO patients (name, age, gender, contact, disease, doctor_assigned) VALUES ($1, $2, $3, $4, $5, $6)`,
		fields["name"], fields["age"], fields["gender"],
		fields["contact"], fields["disease"], fields["doctor_assigned"])
	if err != nil {
		return storeError(err), true
	}
	return successf("Patient '%s' added successfully.", fields.Str("name")), true
}

func (in *Interpreter) addStaff(ctx context.Context, msg string) (Response, bool) {
	if !strings.Contains(strings.ToLower(msg), "add staff") {
		return Response{}, false
	}
	fields := ExtractStaff(msg)
	if !fields.Has("name") {
		return validationError("Please include name, role, and contact."), true
	}
	err := in.store.Exec(ctx,
		`INSERT INTO staff (name, role, contact) VALUES ($1, $2, $3)`,
		fields["name"], fields["role"], fields["contact"])
	if err != nil {
		return storeError(err), true
	}
	return successf("Staff '%s' added successfully.", fields.Str("name")), true
}

func (in *Interpreter) scheduleAppointment(ctx context.Context, msg string) (Response, bool) {
	if !strings.Contains(strings.ToLower(msg), "schedule appointment") {
		return Response{}, false
	}
	fields := ExtractAppointment(msg)
	if !fields.Has("patient_id") || !fields.Has("staff_id") ||
		!fields.Has("date") || !fields.Has("time") {
		return validationError("Provide patient_id, staff_id, date, and time."), true
	}
	err := in.store.Exec(ctx,
		`INSERT INTO appointments (patient_id, staff_id, appointment_date, appointment_time) VALUES ($1, $2, $3, $4)`,
		fields["patient_id"], fields["staff_id"], fields["date"], fields["time"])
	if err != nil {
		return storeError(err), true
	}
	return successf("Appointment scheduled successfully."), true
}

// -- Matcher 6: bulk listing --

const showAppointmentsQuery = `
SELECT a.appointment_id, p.name AS patient_name, s.name AS staff_name,
       a.appointment_date, a.appointment_time
FROM appointments a
LEFT JOIN patients p ON a.patient_id = p.patient_id
LEFT JOIN staff s ON a.staff_id = s.staff_id
ORDER BY a.appointment_id DESC`

func (in *Interpreter) showRecords(ctx context.Context, msg string) (Response, bool) {
	lower := strings.ToLower(msg)

	var query string
	switch {
	case strings.Contains(lower, "show patients"):
		query = "SELECT * FROM patients ORDER BY patient_id DESC"
	case strings.Contains(lower, "show staff"):
		query = "SELECT * FROM staff ORDER BY staff_id DESC"
	case strings.Contains(lower, "show appointments"):
		query = showAppointmentsQuery
	default:
		return Response{}, false
	}

	res, err := in.store.Select(ctx, query)
	if err != nil {
		return storeError(err), true
	}
	return tableOf(res.Rows), true
}

// -- Matcher 7: direct id lookup --

func (in *Interpreter) idLookup(ctx context.Context, msg string) (Response, bool) {
	for _, role := range []Role{RolePatient, RoleStaff} {
		id, ok := ExplicitID(msg, role)
		if !ok {
			continue
		}
		table, idCol := role.Table()
		res, err := in.store.Select(ctx,
			"SELECT * FROM "+table+" WHERE "+idCol+" = $1", id)
		if err != nil {
			return storeError(err), true
		}
		if len(res.Rows) == 0 {
			return textf("No %s found with id %d.", string(role), id), true
		}
		return textf("%s", formatRecord(res.Columns, res.Rows[0])), true
	}
	return Response{}, false
}

// -- Matcher 8: name-led lookup --

func (in *Interpreter) nameLookup(ctx context.Context, msg string) (Response, bool) {
	name, ok := LookupName(msg)
	if !ok {
		return Response{}, false
	}

	res, err := in.store.Select(ctx,
		"SELECT * FROM patients WHERE name ILIKE $1", "%"+name+"%")
	if err != nil {
		return storeError(err), true
	}
	switch {
	case len(res.Rows) == 1:
		return textf("%s", patientSummary(res.Rows[0])), true
	case len(res.Rows) > 1:
		return tableOf(res.Rows), true
	}

	res, err = in.store.Select(ctx,
		"SELECT * FROM staff WHERE name ILIKE $1", "%"+name+"%")
	if err != nil {
		return storeError(err), true
	}
	switch {
	case len(res.Rows) == 1:
		return textf("%s", staffSummary(res.Rows[0])), true
	case len(res.Rows) > 1:
		return tableOf(res.Rows), true
	}

	// zero hits in both tables: fall through to the default reply
	return Response{}, false
}
