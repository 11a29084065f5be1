package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestJSONFormatCarriesFields(t *testing.T) {
	log := New(LoggingConfig{Level: "debug", Format: "json"})
	var buf bytes.Buffer
	log.entry.Logger.SetOutput(&buf)

	log.WithField("client_id", 42).WithError(nil).Info("client added")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["client_id"] != float64(42) {
		t.Fatalf("field not carried: %v", record)
	}
	if record["msg"] != "client added" {
		t.Fatalf("unexpected message: %v", record)
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	log := New(LoggingConfig{Level: "nope", Format: "text"})
	if got := log.entry.Logger.GetLevel(); got != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %v", got)
	}
}

func TestNewDefaultTagsComponent(t *testing.T) {
	log := NewDefault("storage")
	if log.entry.Data["component"] != "storage" {
		t.Fatalf("component field missing: %v", log.entry.Data)
	}
}
