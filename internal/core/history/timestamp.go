package history

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Epoch identifies how a numeric timestamp value is encoded
type Epoch string

const (
	// EpochAuto picks a unit by magnitude (unix s/ms/us/ns and WebKit us)
	EpochAuto Epoch = "auto"
	// EpochUnixSeconds is seconds since 1970-01-01 UTC
	EpochUnixSeconds Epoch = "unix_s"
	// EpochUnixMilli is milliseconds since 1970-01-01 UTC
	EpochUnixMilli Epoch = "unix_ms"
	// EpochUnixMicro is microseconds since 1970-01-01 UTC (Firefox moz_places)
	EpochUnixMicro Epoch = "unix_us"
	// EpochUnixNano is nanoseconds since 1970-01-01 UTC
	EpochUnixNano Epoch = "unix_ns"
	// EpochWebKit is microseconds since 1601-01-01 UTC (Chrome history)
	EpochWebKit Epoch = "webkit"
	// EpochCocoa is seconds since 2001-01-01 UTC (Safari history).
	// Cocoa values overlap plausible unix seconds, so this is never guessed;
	// callers that read Safari snapshots must say so explicitly
	EpochCocoa Epoch = "cocoa"
)

// ParseEpoch validates an epoch name; empty means auto
func ParseEpoch(s string) (Epoch, error) {
	e := Epoch(strings.ToLower(strings.TrimSpace(s)))
	switch e {
	case "":
		return EpochAuto, nil
	case EpochAuto, EpochUnixSeconds, EpochUnixMilli, EpochUnixMicro, EpochUnixNano, EpochWebKit, EpochCocoa:
		return e, nil
	default:
		return "", fmt.Errorf("history: unknown epoch %q", s)
	}
}

// microseconds between 1601-01-01 and 1970-01-01
const webkitUnixDeltaMicros int64 = 11644473600 * 1000000

var cocoaBase = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// Timestamp carries one raw timestamp exactly as received: a JSON number, a
// string, or nothing at all. Interpretation is deferred to normalization so
// the same row shape serves JSON exports and SQLite snapshots alike
type Timestamp struct {
	num   float64
	str   string
	isNum bool
	set   bool
}

// NumericTimestamp wraps a raw numeric value (unit decided at Resolve time)
func NumericTimestamp(v float64) Timestamp { return Timestamp{num: v, isNum: true, set: true} }

// StringTimestamp wraps a textual timestamp such as RFC3339
func StringTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	return Timestamp{str: s, set: true}
}

// IsZero reports whether no value was supplied
func (t Timestamp) IsZero() bool { return !t.set }

// UnmarshalJSON accepts numbers, numeric strings, textual timestamps, and null
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		*t = Timestamp{}
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("history: timestamp: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*t = Timestamp{}
			return nil
		}
		// exports sometimes quote their numbers
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*t = Timestamp{num: f, isNum: true, set: true}
			return nil
		}
		*t = Timestamp{str: s, set: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("history: timestamp: %w", err)
	}
	*t = Timestamp{num: f, isNum: true, set: true}
	return nil
}

// MarshalJSON round-trips whatever was carried
func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case !t.set:
		return []byte("null"), nil
	case t.isNum:
		return strconv.AppendFloat(nil, t.num, 'f', -1, 64), nil
	default:
		return json.Marshal(t.str)
	}
}

// Resolve converts the carried value to a UTC instant under the epoch hint.
// Strings accept RFC3339(Nano), "2006-01-02T15:04:05", "2006-01-02 15:04:05",
// and "2006-01-02"; zoneless values are read as UTC
func (t Timestamp) Resolve(e Epoch) (time.Time, error) {
	if !t.set {
		return time.Time{}, fmt.Errorf("history: empty timestamp")
	}
	if !t.isNum {
		return parseStamp(t.str)
	}
	return resolveNumber(t.num, e)
}

var stampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseStamp(s string) (time.Time, error) {
	for _, layout := range stampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("history: unparsable timestamp %q", s)
}

func resolveNumber(v float64, e Epoch) (time.Time, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, fmt.Errorf("history: non-finite timestamp %v", v)
	}
	if e == EpochAuto || e == "" {
		e = sniffEpoch(v)
	}
	switch e {
	case EpochUnixSeconds:
		sec, frac := math.Modf(v)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	case EpochUnixMilli:
		return time.UnixMilli(int64(v)).UTC(), nil
	case EpochUnixMicro:
		return time.UnixMicro(int64(v)).UTC(), nil
	case EpochUnixNano:
		return time.Unix(0, int64(v)).UTC(), nil
	case EpochWebKit:
		return time.UnixMicro(int64(v) - webkitUnixDeltaMicros).UTC(), nil
	case EpochCocoa:
		sec, frac := math.Modf(v)
		return cocoaBase.Add(time.Duration(sec)*time.Second + time.Duration(frac*float64(time.Second))), nil
	default:
		return time.Time{}, fmt.Errorf("history: unknown epoch %q", e)
	}
}

// WebKitMicros converts an instant to microseconds since 1601-01-01 UTC,
// the encoding Chrome stores. Zero time maps to 0, an open lower bound
func WebKitMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro() + webkitUnixDeltaMicros
}

// CocoaSeconds converts an instant to seconds since 2001-01-01 UTC, the
// encoding Safari stores. Zero time maps to 0, an open lower bound
func CocoaSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return t.Sub(cocoaBase).Seconds()
}

// sniffEpoch picks a unit for bare numbers by magnitude. The bands sit well
// apart for any date this side of 1973, which is all browser history needs
func sniffEpoch(v float64) Epoch {
	abs := math.Abs(v)
	switch {
	case abs >= 1e17:
		return EpochUnixNano
	case abs >= 5e15:
		return EpochWebKit
	case abs >= 1e14:
		return EpochUnixMicro
	case abs >= 1e11:
		return EpochUnixMilli
	default:
		return EpochUnixSeconds
	}
}
