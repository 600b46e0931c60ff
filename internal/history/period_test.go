package history

import (
	"testing"
	"time"

	"daoportal/internal/apperr"
)

func TestParsePeriod(t *testing.T) {
	cases := map[string]time.Duration{
		"30d": 30 * 24 * time.Hour,
		"4w":  28 * 24 * time.Hour,
		"2m":  60 * 24 * time.Hour,
		"1d":  24 * time.Hour,
	}
	for token, want := range cases {
		got, err := ParsePeriod(token)
		if err != nil {
			t.Fatalf("parse %s: %v", token, err)
		}
		if got != want {
			t.Fatalf("parse %s: expect %v, got %v", token, want, got)
		}
	}
}

func TestParsePeriodRejects(t *testing.T) {
	for _, token := range []string{"", "30", "d", "0d", "-1d", "3y", "1.5d", " 30d", "30D", "99999999999999999999d"} {
		_, err := ParsePeriod(token)
		if !apperr.Is(err, apperr.CodeInvalidArgument) {
			t.Fatalf("expect invalid argument for %q, got %v", token, err)
		}
		if apperr.Message(err) != invalidPeriodMessage {
			t.Fatalf("unexpected message %q", apperr.Message(err))
		}
	}
}
