package game

import (
	"errors"
	"math"
	"testing"
)

func TestMulMicros(t *testing.T) {
	got, err := mulMicros(3*MicrosPerCoin, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 150 * MicrosPerCoin; got != want {
		t.Fatalf("got %d want %d", got, want)
	}

	if _, err := mulMicros(math.MaxInt64, 2); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestCoinConversionRoundTrip(t *testing.T) {
	if got := CoinsToMicros(12.34); got != 12_340_000 {
		t.Fatalf("got %d", got)
	}
	if got := MicrosToCoins(12_340_000); got != 12.34 {
		t.Fatalf("got %v", got)
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	var err error = &NotReadyError{RemainingSeconds: 42}
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("NotReadyError does not unwrap to ErrNotReady")
	}
	err = &LockedByLevelError{RequiredLevel: 10}
	if !errors.Is(err, ErrLockedByLevel) {
		t.Fatalf("LockedByLevelError does not unwrap to ErrLockedByLevel")
	}
	err = &PrestigeIneligibleError{RequiredLevel: MinPrestigeLevel}
	if !errors.Is(err, ErrPrestigeIneligible) {
		t.Fatalf("PrestigeIneligibleError does not unwrap to ErrPrestigeIneligible")
	}
}

func TestUsernameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{email: "Ada.Lovelace@example.com", want: "ada_lovelace"},
		{email: "x@example.com", want: "player_x"},
		{email: "a-very-long-address-that-keeps-going@example.com", want: "a_very_long_address_that"},
	}
	for _, tc := range tests {
		if got := usernameFromEmail(tc.email); got != tc.want {
			t.Fatalf("email=%q got=%q want=%q", tc.email, got, tc.want)
		}
	}
}
