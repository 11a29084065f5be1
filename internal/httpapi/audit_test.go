package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAuditLogCapsEntries(t *testing.T) {
	log := newAuditLog(3, nil)
	for i := 0; i < 5; i++ {
		log.add(auditEntry{Path: fmt.Sprintf("/api/clients/%d", i)})
	}
	entries := log.list()
	if len(entries) != 3 {
		t.Fatalf("expected 3 retained entries, got %d", len(entries))
	}
	if entries[0].Path != "/api/clients/2" || entries[2].Path != "/api/clients/4" {
		t.Fatalf("expected oldest entries evicted, got %+v", entries)
	}
}

func TestAuditLogListLimit(t *testing.T) {
	log := newAuditLog(10, nil)
	for i := 0; i < 6; i++ {
		log.add(auditEntry{Status: 200 + i})
	}
	got := log.listLimit(2)
	if len(got) != 2 || got[1].Status != 205 {
		t.Fatalf("expected the 2 newest entries, got %+v", got)
	}
	if got := log.listLimit(0); len(got) != 6 {
		t.Fatalf("limit 0 should return everything, got %d", len(got))
	}
	if got := log.listLimit(100); len(got) != 6 {
		t.Fatalf("oversized limit should clamp, got %d", len(got))
	}
}

func TestFileAuditSinkWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := newFileAuditSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}

	log := newAuditLog(10, sink)
	log.add(auditEntry{Time: time.Now().UTC(), User: "alice", Method: http.MethodGet, Path: "/api/stats", Status: 200})
	log.add(auditEntry{Time: time.Now().UTC(), Method: http.MethodPost, Path: "/api/login", Status: 401})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer f.Close()

	var lines []auditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry auditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(lines)+1, err)
		}
		lines = append(lines, entry)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}
	if lines[0].User != "alice" || lines[0].Path != "/api/stats" {
		t.Fatalf("unexpected first entry %+v", lines[0])
	}
	if lines[1].Status != 401 {
		t.Fatalf("unexpected second entry %+v", lines[1])
	}
}

func TestFileAuditSinkDisabledWithoutPath(t *testing.T) {
	sink, err := newFileAuditSink("")
	if err != nil {
		t.Fatalf("empty path should not error: %v", err)
	}
	if sink != nil {
		t.Fatal("expected nil sink for empty path")
	}
	// A nil sink must still be safe to write to.
	if err := sink.Write(auditEntry{}); err != nil {
		t.Fatalf("nil sink write: %v", err)
	}
}
