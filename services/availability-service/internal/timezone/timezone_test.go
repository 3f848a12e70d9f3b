package timezone

import (
	"errors"
	"testing"
	"time"
)

func TestToUTCAndBack(t *testing.T) {
	utc, err := ToUTC("2024-06-15T14:30:45", "America/New_York")
	if err != nil {
		t.Fatalf("ToUTC failed: %v", err)
	}
	// EDT is UTC-4 in June.
	want := time.Date(2024, 6, 15, 18, 30, 45, 0, time.UTC)
	if !utc.Equal(want) {
		t.Fatalf("expected %s, got %s", want, utc)
	}

	back, err := FromUTC(utc, "America/New_York")
	if err != nil {
		t.Fatalf("FromUTC failed: %v", err)
	}
	if back != "2024-06-15T14:30:45" {
		t.Fatalf("round trip mismatch: got %q", back)
	}
}

func TestToUTCSecondsOptional(t *testing.T) {
	withSecs, err := ToUTC("2024-06-15T14:30:00", "UTC")
	if err != nil {
		t.Fatalf("ToUTC with seconds failed: %v", err)
	}
	withoutSecs, err := ToUTC("2024-06-15T14:30", "UTC")
	if err != nil {
		t.Fatalf("ToUTC without seconds failed: %v", err)
	}
	if !withSecs.Equal(withoutSecs) {
		t.Fatalf("expected equal instants, got %s and %s", withSecs, withoutSecs)
	}
}

func TestToUTCInvalidDate(t *testing.T) {
	if _, err := ToUTC("not-a-date", "UTC"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := ToUTC("", "UTC"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for empty input, got %v", err)
	}
}

func TestToUTCUnrecognizedZoneFallsBack(t *testing.T) {
	// Unknown zones are treated as fixed zero-offset zones, not errors.
	got, err := ToUTC("2024-06-15T12:00:00", "Not/AZone")
	if err != nil {
		t.Fatalf("ToUTC failed: %v", err)
	}
	want := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected zero-offset interpretation %s, got %s", want, got)
	}
}

func TestFromUTCZeroInstant(t *testing.T) {
	if _, err := FromUTC(time.Time{}, "UTC"); !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
}

func TestFormatInZone(t *testing.T) {
	instant := time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)

	got, err := FormatInZone(instant, "America/New_York", Format12Hour)
	if err != nil {
		t.Fatalf("FormatInZone failed: %v", err)
	}
	if got != "2:30 PM" {
		t.Fatalf("expected 2:30 PM, got %q", got)
	}

	got, err = FormatInZone(instant, "America/New_York", FormatShortDate)
	if err != nil {
		t.Fatalf("FormatInZone failed: %v", err)
	}
	if got != "Jun 15, 2024" {
		t.Fatalf("expected Jun 15, 2024, got %q", got)
	}

	if _, err := FormatInZone(time.Time{}, "UTC", Format12Hour); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for zero instant, got %v", err)
	}
	if _, err := FormatInZone(instant, "UTC", Format(99)); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for unknown spec, got %v", err)
	}
}

func TestIsValidZone(t *testing.T) {
	if !IsValidZone("America/New_York") {
		t.Fatal("expected America/New_York to be valid")
	}
	if IsValidZone("Not/AZone") {
		t.Fatal("expected Not/AZone to be invalid")
	}
	if IsValidZone("") {
		t.Fatal("expected empty zone to be invalid")
	}
}

func TestDisplayName(t *testing.T) {
	got := DisplayName("America/New_York")
	if got != "America/New_York (EST)" && got != "America/New_York (EDT)" {
		t.Fatalf("unexpected display name %q", got)
	}
	if got := DisplayName("Not/AZone"); got != "Not/AZone" {
		t.Fatalf("expected unknown zone returned unchanged, got %q", got)
	}
}

func TestCheckDSTHazardNonExistent(t *testing.T) {
	// 2024-03-10 02:30 never happens in New York; clocks jump 02:00 -> 03:00.
	h := CheckDSTHazard("2024-03-10T02:30:00", "America/New_York")
	if !h.IsNonExistent {
		t.Fatal("expected IsNonExistent")
	}
	if h.IsAmbiguous {
		t.Fatal("did not expect IsAmbiguous")
	}
	if !h.IsTransitionWindow {
		t.Fatal("expected IsTransitionWindow")
	}
}

func TestCheckDSTHazardAmbiguous(t *testing.T) {
	// 2024-11-03 01:30 happens twice in New York; clocks fall back at 02:00.
	h := CheckDSTHazard("2024-11-03T01:30:00", "America/New_York")
	if !h.IsAmbiguous {
		t.Fatal("expected IsAmbiguous")
	}
	if h.IsNonExistent {
		t.Fatal("did not expect IsNonExistent")
	}
	if !h.IsTransitionWindow {
		t.Fatal("expected IsTransitionWindow")
	}
}

func TestCheckDSTHazardOrdinaryTime(t *testing.T) {
	h := CheckDSTHazard("2024-06-15T12:00:00", "America/New_York")
	if h.IsTransitionWindow || h.IsAmbiguous || h.IsNonExistent {
		t.Fatalf("expected no hazard flags, got %+v", h)
	}
}

func TestCheckDSTHazardBadInput(t *testing.T) {
	h := CheckDSTHazard("garbage", "America/New_York")
	if h.IsTransitionWindow || h.IsAmbiguous || h.IsNonExistent {
		t.Fatalf("expected all-false on bad input, got %+v", h)
	}
}
