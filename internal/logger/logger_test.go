package logger

import "testing"

func TestNewAcceptsKnownLevels(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		log, err := New("debug", format)
		if err != nil {
			t.Fatalf("New(debug, %q) returned error: %v", format, err)
		}
		if !log.Core().Enabled(-1) {
			t.Fatalf("expected debug level enabled for format %q", format)
		}
	}

	log, err := New("", "json")
	if err != nil {
		t.Fatalf("New with empty level returned error: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Fatal("expected default level to be info")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", "json"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
