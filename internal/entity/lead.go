package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const NotAvailable = "N/A"

// Lead is a provider-owned record. Any field may be missing: providers
// disagree on names and on which fields are present at all.
type Lead struct {
	Slot        int            `json:"slot"` // position within the fetch that produced it
	ID          string         `json:"id,omitempty"`
	Fields      map[string]any `json:"fields"`
	Deactivated bool           `json:"deactivated,omitempty"`
}

// NewLead builds a lead from a raw record, taking the id from idField when
// the provider supplied one.
func NewLead(slot int, idField string, fields map[string]any) Lead {
	if fields == nil {
		fields = map[string]any{}
	}
	lead := Lead{Slot: slot, Fields: fields}
	if raw, ok := fields[idField]; ok {
		lead.ID = stringify(raw)
	}
	return lead
}

// Identifier is what the backend receives for bulk actions. Without a
// provider id this is the fetch position, which does not survive a re-fetch.
func (l Lead) Identifier() string {
	if l.ID != "" {
		return l.ID
	}
	return strconv.Itoa(l.Slot)
}

func (l Lead) HasStableID() bool {
	return l.ID != ""
}

// Display returns the field as text, or "N/A" when it is missing or empty.
func (l Lead) Display(field string) string {
	v, ok := l.Fields[field]
	if !ok {
		return NotAvailable
	}
	s := stringify(v)
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// Text is Display without the placeholder, for matching.
func (l Lead) Text(field string) string {
	v, ok := l.Fields[field]
	if !ok {
		return ""
	}
	return stringify(v)
}

// Timestamp parses RFC3339, plain dates and epoch milliseconds.
func (l Lead) Timestamp(field string) (time.Time, bool) {
	v, ok := l.Fields[field]
	if !ok || v == nil {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(n).UTC(), true
	case string:
		return parseTime(t)
	}
	return time.Time{}, false
}

// Clone copies the field map so callers can't alias the stored record.
func (l Lead) Clone() Lead {
	fields := make(map[string]any, len(l.Fields))
	for k, v := range l.Fields {
		fields[k] = v
	}
	l.Fields = fields
	return l
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Time{}, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
