package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "production", "info")

	logger.Info().Str("course", "CS101").Msg("seeded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["message"] != "seeded" {
		t.Errorf("message = %v, want %q", line["message"], "seeded")
	}
	if line["course"] != "CS101" {
		t.Errorf("course = %v, want %q", line["course"], "CS101")
	}
}

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "production", "warn")

	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %q", buf.String())
	}

	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want %v", logger.GetLevel(), zerolog.WarnLevel)
	}
}

func TestNewWithWriterInvalidLevel(t *testing.T) {
	logger := NewWithWriter(&bytes.Buffer{}, "production", "loud")
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want %v", logger.GetLevel(), zerolog.InfoLevel)
	}
}
