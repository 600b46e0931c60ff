package logging

import "testing"

func TestNew(t *testing.T) {
	logger, err := New("debug", false)
	if err != nil {
		t.Fatalf("build development logger: %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Fatalf("debug level should be enabled")
	}
	if _, err := New("warn", true); err != nil {
		t.Fatalf("build production logger: %v", err)
	}
	if _, err := New("loud", false); err == nil {
		t.Fatalf("expect invalid level error")
	}
}
