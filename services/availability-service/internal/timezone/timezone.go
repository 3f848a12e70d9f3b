// Package timezone converts between wall-clock times in named IANA zones and
// UTC instants, and detects the DST hazards (skipped and repeated local hours)
// that make that conversion unsafe to do ad hoc. Every function takes its zone
// as an explicit parameter; the package holds no state.
//
// UTC instants (time.Time) are the only time representation that crosses
// package boundaries elsewhere in this service. Wall-clock times exist only at
// the edges, as strings in the form "2006-01-02T15:04:05".
package timezone

import (
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	// ErrInvalidDate is returned when a wall-clock string does not parse.
	ErrInvalidDate = errors.New("timezone: invalid date")
	// ErrConversion is returned when an instant is not representable.
	ErrConversion = errors.New("timezone: invalid instant")
	// ErrFormat is returned for formatting failures.
	ErrFormat = errors.New("timezone: format failed")
)

// WallClockLayout is the wall-clock wire form accepted and produced by this
// package. A seconds-less variant is accepted on input.
const WallClockLayout = "2006-01-02T15:04:05"

const wallClockLayoutShort = "2006-01-02T15:04"

// LoadZone resolves an IANA zone name. An unrecognized name resolves to a
// fixed zero-offset zone rather than an error. That fallback is a deliberate,
// load-bearing policy: owner records created with a bad zone string must keep
// converting the way they always have, so callers that want strict validation
// use IsValidZone first.
func LoadZone(zone string) *time.Location {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.FixedZone(zone, 0)
	}
	return loc
}

// IsValidZone reports whether zone names a zone present in the runtime's zone
// database. It never fails.
func IsValidZone(zone string) bool {
	if zone == "" {
		return false
	}
	_, err := time.LoadLocation(zone)
	return err == nil
}

// ToUTC interprets local as a wall-clock time in zone and returns the
// corresponding UTC instant. For a wall-clock time inside a spring-forward
// gap, the instant after the gap is returned (time.Date semantics); an
// ambiguous fall-back time maps to one of its two occurrences. Use
// CheckDSTHazard to detect either case before trusting the result.
func ToUTC(local, zone string) (time.Time, error) {
	wc, err := parseWallClock(local)
	if err != nil {
		return time.Time{}, err
	}
	return wc.in(LoadZone(zone)).UTC(), nil
}

// FromUTC renders instant as a wall-clock string in zone.
func FromUTC(instant time.Time, zone string) (string, error) {
	if instant.IsZero() {
		return "", fmt.Errorf("%w: zero instant", ErrConversion)
	}
	return instant.In(LoadZone(zone)).Format(WallClockLayout), nil
}

// Format identifies one of the fixed output formats of FormatInZone.
type Format int

const (
	// Format12Hour renders the time of day only, e.g. "2:30 PM".
	Format12Hour Format = iota
	// FormatShortDate renders the date only, e.g. "Mar 10, 2024".
	FormatShortDate
	// FormatFullDateTime renders date and time, e.g. "Sun, Mar 10, 2024 2:30 PM".
	FormatFullDateTime
	// FormatISO renders RFC 3339 with the zone's offset.
	FormatISO
)

var formatLayouts = map[Format]string{
	Format12Hour:       "3:04 PM",
	FormatShortDate:    "Jan 2, 2006",
	FormatFullDateTime: "Mon, Jan 2, 2006 3:04 PM",
	FormatISO:          time.RFC3339,
}

// FormatInZone renders instant as wall-clock text in zone using one of the
// enumerated formats.
func FormatInZone(instant time.Time, zone string, spec Format) (string, error) {
	if instant.IsZero() {
		return "", fmt.Errorf("%w: zero instant", ErrFormat)
	}
	layout, ok := formatLayouts[spec]
	if !ok {
		return "", fmt.Errorf("%w: unknown format %d", ErrFormat, spec)
	}
	return instant.In(LoadZone(zone)).Format(layout), nil
}

// DisplayName returns "zone (ABBR)" using the zone's current abbreviation,
// e.g. "America/New_York (EST)". On lookup failure the zone string is
// returned unchanged. Never fails.
func DisplayName(zone string) string {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return zone
	}
	abbr, _ := time.Now().In(loc).Zone()
	if abbr == "" {
		return zone
	}
	return fmt.Sprintf("%s (%s)", zone, abbr)
}

// DetectLocalZone is a best-effort guess at the environment's zone, for
// defaulting user-facing output. Returns "UTC" when nothing better is known.
func DetectLocalZone() string {
	if tz := os.Getenv("TZ"); tz != "" && IsValidZone(tz) {
		return tz
	}
	name := time.Now().Location().String()
	if name == "" || name == "Local" {
		return "UTC"
	}
	return name
}

// Hazard describes how a wall-clock time relates to a DST transition.
type Hazard struct {
	// IsTransitionWindow is set when the zone's UTC offset changes within a
	// few hours of the time, whether or not the time itself is affected.
	IsTransitionWindow bool
	// IsAmbiguous is set for fall-back times that occur twice.
	IsAmbiguous bool
	// IsNonExistent is set for spring-forward times that are skipped.
	IsNonExistent bool
}

// hazardProbe bounds the offset comparison around the nominal instant.
const hazardProbe = 4 * time.Hour

// CheckDSTHazard inspects the hours surrounding local in zone for a DST
// transition. An unparseable local time yields the zero Hazard rather than an
// error: a time that does not parse cannot be hazardous, only invalid, and
// validity is ToUTC's job.
func CheckDSTHazard(local, zone string) Hazard {
	wc, err := parseWallClock(local)
	if err != nil {
		return Hazard{}
	}
	loc := LoadZone(zone)

	// Sample the UTC offset on both sides of the nominal instant. Equal
	// offsets mean no transition anywhere near; the wall-clock time maps to
	// exactly one instant and there is nothing further to check.
	nominal := wc.in(loc)
	_, offBefore := nominal.Add(-hazardProbe).Zone()
	_, offAfter := nominal.Add(hazardProbe).Zone()
	if offBefore == offAfter {
		return Hazard{}
	}

	h := Hazard{IsTransitionWindow: true}

	// Map the requested wall-clock fields through each candidate offset and
	// count how many distinct instants land back on the same wall clock. Two
	// hits is a repeated (ambiguous) time, zero hits a skipped one. The raw
	// fields matter here: time.Date silently normalizes skipped times, so
	// nominal cannot be trusted to still say what the caller asked for.
	asUTC := wc.in(time.UTC)
	offsets := []int{offBefore}
	if offAfter != offBefore {
		offsets = append(offsets, offAfter)
	}
	matches := 0
	for _, off := range offsets {
		candidate := asUTC.Add(-time.Duration(off) * time.Second).In(loc)
		if wc.matches(candidate) {
			matches++
		}
	}
	switch matches {
	case 0:
		h.IsNonExistent = true
	case 2:
		h.IsAmbiguous = true
	}
	return h
}

// wallClock carries the parsed calendar fields of a wall-clock string before
// any zone is applied, so DST normalization cannot rewrite them.
type wallClock struct {
	year  int
	month time.Month
	day   int
	hour  int
	min   int
	sec   int
}

func (wc wallClock) in(loc *time.Location) time.Time {
	return time.Date(wc.year, wc.month, wc.day, wc.hour, wc.min, wc.sec, 0, loc)
}

func (wc wallClock) matches(t time.Time) bool {
	y, mo, d := t.Date()
	hh, mm, ss := t.Clock()
	return y == wc.year && mo == wc.month && d == wc.day &&
		hh == wc.hour && mm == wc.min && ss == wc.sec
}

func parseWallClock(local string) (wallClock, error) {
	for _, layout := range []string{WallClockLayout, wallClockLayoutShort} {
		t, err := time.Parse(layout, local)
		if err != nil {
			continue
		}
		y, mo, d := t.Date()
		hh, mm, ss := t.Clock()
		return wallClock{year: y, month: mo, day: d, hour: hh, min: mm, sec: ss}, nil
	}
	return wallClock{}, fmt.Errorf("%w: %q", ErrInvalidDate, local)
}
