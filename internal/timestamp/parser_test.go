package timestamp

import (
	"testing"
	"time"
)

func TestParseFromText_ISO8601(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name  string
		input string
	}{
		{"RFC3339", "2024-01-15T10:30:45Z kernel: [UFW BLOCK] IN=eth0"},
		{"RFC3339Nano", "2024-01-15T10:30:45.123456789Z kernel: [UFW BLOCK] IN=eth0"},
		{"RFC3339 offset", "2024-01-15T10:30:45+05:00 some message"},
		{"space separated", "2024-01-15 10:30:45 some log message"},
		{"millis", "2024-01-15 10:30:45.123 some log message"},
		{"micros", "2024-01-15 10:30:45.123456 some log message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ParseFromText(tt.input)
			if !result.Found {
				t.Errorf("ParseFromText(%q) did not find timestamp", tt.input)
			}
			if result.Timestamp.IsZero() {
				t.Errorf("ParseFromText(%q) returned zero timestamp", tt.input)
			}
		})
	}
}

func TestParseFromText_Syslog(t *testing.T) {
	p := NewParser()

	result := p.ParseFromText("Sep  1 00:00:00 host kernel: [UFW BLOCK] IN=br-abc SRC=10.0.0.5")
	if !result.Found {
		t.Fatal("syslog format not parsed")
	}
	if result.Timestamp.Year() != time.Now().Year() {
		t.Errorf("syslog year = %d, want current year", result.Timestamp.Year())
	}
	if result.Timestamp.Month() != time.September || result.Timestamp.Day() != 1 {
		t.Errorf("syslog date = %v, want Sep 1", result.Timestamp)
	}
	if result.Remaining != "host kernel: [UFW BLOCK] IN=br-abc SRC=10.0.0.5" {
		t.Errorf("remaining = %q", result.Remaining)
	}
}

func TestParseFromText_SyslogSingleSpaceDay(t *testing.T) {
	p := NewParser()

	result := p.ParseFromText("Sep 1 00:00:00 host kernel: message")
	if !result.Found {
		t.Fatal("single-space syslog day not parsed")
	}
	if result.Timestamp.Day() != 1 {
		t.Errorf("day = %d, want 1", result.Timestamp.Day())
	}
}

func TestParseFromText_TimeOnly(t *testing.T) {
	p := NewParser()

	result := p.ParseFromText("10:30:45.123 some log message")
	if !result.Found {
		t.Fatal("time-only format not parsed")
	}
	now := time.Now()
	if result.Timestamp.Year() != now.Year() || result.Timestamp.Month() != now.Month() {
		t.Errorf("time-only date = %v, want today", result.Timestamp)
	}
}

func TestParseFromText_CommaDecimal(t *testing.T) {
	p := NewParser()

	result := p.ParseFromText("2024-01-15 10:30:45,123 international format")
	if !result.Found {
		t.Error("comma decimal format not parsed")
	}
}

func TestParseFromText_NoTimestamp(t *testing.T) {
	p := NewParser()

	result := p.ParseFromText("just a regular log message")
	if result.Found {
		t.Error("should not find timestamp in plain text")
	}
	if result.Remaining != "just a regular log message" {
		t.Errorf("remaining = %q, want original text", result.Remaining)
	}
}

func TestParseFromText_MidLineTimestampIgnored(t *testing.T) {
	p := NewParser()

	result := p.ParseFromText("kernel logged at 2024-01-15T10:30:45Z something")
	if result.Found {
		t.Error("timestamps not at the start of the line must be ignored")
	}
}
