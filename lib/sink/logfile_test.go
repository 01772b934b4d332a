package sink

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLogFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.drec")

	s, err := NewLogFileSink(path)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}

	schema := Schema{
		Channel: "chan",
		Fields: []SchemaField{
			{Name: "speed", Type: "float64"},
			{Name: "ticks", Type: "int32[4]"},
		},
		Types: map[string]string{"pose": "pos: float64[3]"},
	}
	if err := s.AddChannel("chan", schema); err != nil {
		t.Fatalf("AddChannel failed: %v", err)
	}

	snapshots := []Snapshot{
		{Channel: "chan", TimestampNS: 1000, Payload: []byte{1, 2, 3, 4}},
		{Channel: "chan", TimestampNS: 2000, Payload: []byte{}},
		{Channel: "chan", TimestampNS: 3000, Payload: []byte{0xff, 0x00}},
	}
	for i, snap := range snapshots {
		if err := s.StoreSnapshot(snap); err != nil {
			t.Fatalf("StoreSnapshot %d failed: %v", i, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// read everything back
	r, err := OpenLogFile(path)
	if err != nil {
		t.Fatalf("failed to open log file: %v", err)
	}
	defer r.Close()

	block, err := r.Next()
	if err != nil {
		t.Fatalf("failed to read schema block: %v", err)
	}
	if block.Type != BlockTSchema || block.Channel != "chan" {
		t.Errorf("unexpected first block: %+v", block)
	}
	if block.Schema != schema.String() {
		t.Errorf("schema mismatch:\nwrote: %q\nread:  %q", schema.String(), block.Schema)
	}

	for i, want := range snapshots {
		block, err := r.Next()
		if err != nil {
			t.Fatalf("failed to read snapshot block %d: %v", i, err)
		}
		if block.Type != BlockTSnapshot {
			t.Fatalf("block %d has type %d, want snapshot", i, block.Type)
		}
		if block.TimestampNS != want.TimestampNS {
			t.Errorf("snapshot %d timestamp = %d, want %d", i, block.TimestampNS, want.TimestampNS)
		}
		if string(block.Payload) != string(want.Payload) {
			t.Errorf("snapshot %d payload mismatch", i)
		}
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after last block, got %v", err)
	}
}

func TestOpenLogFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.drec")

	s, err := NewLogFileSink(path)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}
	_ = s.Close()

	// a valid but empty file is fine
	r, err := OpenLogFile(path)
	if err != nil {
		t.Fatalf("failed to open empty log file: %v", err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF on empty file, got %v", err)
	}
	_ = r.Close()

	// a file that is not a dRec log is rejected
	garbage := filepath.Join(t.TempDir(), "not-a-log.drec")
	if err := os.WriteFile(garbage, []byte("definitely not a log file"), 0o644); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}
	if _, err := OpenLogFile(garbage); err == nil {
		t.Error("expected error for wrong magic number")
	}

	if _, err := OpenLogFile(path + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSchemaString(t *testing.T) {
	schema := Schema{
		Channel: "chan",
		Fields: []SchemaField{
			{Name: "a", Type: "float64"},
			{Name: "b", Type: "point[]"},
		},
		Types: map[string]string{
			"point": "x: float64\ny: float64",
		},
	}

	want := "float64 a\npoint[] b\n=== point ===\nx: float64\ny: float64\n"
	if got := schema.String(); got != want {
		t.Errorf("Schema.String() = %q, want %q", got, want)
	}
}

func TestDummySinkCounts(t *testing.T) {
	s := NewDummySink()

	if err := s.AddChannel("a", Schema{Channel: "a"}); err != nil {
		t.Fatalf("AddChannel failed: %v", err)
	}
	if err := s.AddChannel("b", Schema{Channel: "b"}); err != nil {
		t.Fatalf("AddChannel failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.StoreSnapshot(Snapshot{Channel: "a", Payload: make([]byte, 10)}); err != nil {
			t.Fatalf("StoreSnapshot failed: %v", err)
		}
	}

	if got := s.Channels(); got != 2 {
		t.Errorf("Channels() = %d, want 2", got)
	}
	if got := s.Snapshots(); got != 5 {
		t.Errorf("Snapshots() = %d, want 5", got)
	}
	if got := s.Bytes(); got != 50 {
		t.Errorf("Bytes() = %d, want 50", got)
	}
	if _, ok := s.Schema("a"); !ok {
		t.Error("expected schema for channel a")
	}
}
