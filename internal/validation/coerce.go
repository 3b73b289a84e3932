package validation

import (
	"encoding/json"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/atinyakov/erfms/internal/schema"
)

// Accepted datetime layouts. time.Parse accepts fractional seconds
// after the seconds field even when the layout omits them.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	openapi_types.DateFormat,
}

func coerce(collection string, f schema.Field, raw any) (any, *Error) {
	switch f.Type.Kind {
	case schema.KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be a string")
		}
		return s, nil

	case schema.KindEmail:
		s, ok := raw.(string)
		if !ok || !validEmail(s) {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be a valid email address")
		}
		return s, nil

	case schema.KindBoolean:
		b, ok := toBool(raw)
		if !ok {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be a boolean")
		}
		return b, nil

	case schema.KindInteger:
		n, ok := toInt(raw)
		if !ok {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be an integer")
		}
		if f.Min != nil && float64(n) < *f.Min {
			return nil, fail(collection, f.Name, ReasonConstraintViolation,
				"must be greater than or equal to %s", formatBound(*f.Min))
		}
		return n, nil

	case schema.KindFloat:
		x, ok := toFloat(raw)
		if !ok {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be a number")
		}
		if f.Min != nil && x < *f.Min {
			return nil, fail(collection, f.Name, ReasonConstraintViolation,
				"must be greater than or equal to %s", formatBound(*f.Min))
		}
		return x, nil

	case schema.KindDate:
		s, ok := raw.(string)
		if !ok {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be a date (YYYY-MM-DD)")
		}
		d, err := time.Parse(openapi_types.DateFormat, strings.TrimSpace(s))
		if err != nil {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be a date (YYYY-MM-DD)")
		}
		return d.Format(openapi_types.DateFormat), nil

	case schema.KindDateTime:
		s, ok := raw.(string)
		if !ok {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be an ISO-8601 datetime")
		}
		t, ok := parseDateTime(strings.TrimSpace(s))
		if !ok {
			return nil, fail(collection, f.Name, ReasonInvalidFormat, "must be an ISO-8601 datetime")
		}
		return t.Format(time.RFC3339Nano), nil

	case schema.KindEnum:
		s, ok := raw.(string)
		if !ok || !f.Type.Allows(s) {
			return nil, fail(collection, f.Name, ReasonInvalidEnumValue,
				"must be one of: %s", strings.Join(f.Type.Allowed, ", "))
		}
		return s, nil
	}

	return nil, fail(collection, f.Name, ReasonInvalidFormat, "unsupported field type %s", f.Type.Kind)
}

// validEmail requires a bare address accepted by both the OpenAPI email
// format and RFC 5322 address parsing.
func validEmail(s string) bool {
	raw, err := json.Marshal(s)
	if err != nil {
		return false
	}
	var e openapi_types.Email
	if err := e.UnmarshalJSON(raw); err != nil {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "yes", "y", "on", "1":
			return true, true
		case "false", "f", "no", "n", "off", "0":
			return false, true
		}
		return false, false
	}
	if x, ok := toFloat(raw); ok {
		switch x {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	x, ok := toFloat(raw)
	if !ok || x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
		return 0, false
	}
	return int64(x), true
}

func toFloat(raw any) (float64, bool) {
	var x float64
	switch v := raw.(type) {
	case float64:
		x = v
	case float32:
		x = float64(v)
	case int:
		x = float64(v)
	case int32:
		x = float64(v)
	case int64:
		x = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		x = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		x = f
	default:
		return 0, false
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}

func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}
