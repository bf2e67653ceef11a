// Package chat maps free-text messages to CRUD operations against the
// hospital record store. The interpreter is a fixed, priority-ordered cascade
// of pattern matchers; the first matcher that commits produces the single
// response for the message. No state survives between messages.
package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ResponseType tags the kind of reply produced for a message.
type ResponseType string

const (
	TypeSuccess ResponseType = "success"
	TypeError   ResponseType = "error"
	TypeText    ResponseType = "text"
	TypeTable   ResponseType = "table"
)

// Response is the single reply produced for a message. Exactly one of
// Message or Data is meaningful, depending on Type.
type Response struct {
	Type    ResponseType
	Message string
	Data    []map[string]any
	// Status is the HTTP status hint for transports. Zero means 200.
	Status int
}

// MarshalJSON renders the wire shape the web client expects: table replies
// carry their rows under "data" (always present, possibly empty), everything
// else carries "message".
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Type == TypeTable {
		rows := r.Data
		if rows == nil {
			rows = []map[string]any{}
		}
		return json.Marshal(struct {
			Type ResponseType     `json:"type"`
			Data []map[string]any `json:"data"`
		}{r.Type, rows})
	}
	return json.Marshal(struct {
		Type    ResponseType `json:"type"`
		Message string       `json:"message"`
	}{r.Type, r.Message})
}

func successf(format string, args ...any) Response {
	return Response{Type: TypeSuccess, Message: fmt.Sprintf(format, args...)}
}

func textf(format string, args ...any) Response {
	return Response{Type: TypeText, Message: fmt.Sprintf(format, args...)}
}

// validationError is a user-correctable problem; no store mutation happened.
func validationError(message string) Response {
	return Response{Type: TypeError, Message: message, Status: http.StatusBadRequest}
}

// storeError surfaces a store failure verbatim.
func storeError(err error) Response {
	return Response{Type: TypeError, Message: err.Error(), Status: http.StatusInternalServerError}
}

func tableOf(rows []map[string]any) Response {
	return Response{Type: TypeTable, Data: sanitizeRows(rows)}
}

// sanitizeRows converts non-primitive column values to strings so rows
// survive JSON transport. Nil, strings, booleans and numbers pass through.
func sanitizeRows(rows []map[string]any) []map[string]any {
	safe := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out := make(map[string]any, len(row))
		for k, v := range row {
			out[k] = sanitizeValue(v)
		}
		safe = append(safe, out)
	}
	return safe
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
