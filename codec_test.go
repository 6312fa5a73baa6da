package syncfile_test

import (
	"os"
	"strings"
	"testing"

	"github.com/brianhealey/syncfile"
)

func TestYAMLCodec_ThroughStore(t *testing.T) {
	path := tempPath(t, "state.yaml")
	opts := &syncfile.Options{Codec: syncfile.YAMLCodec{}}

	m, err := syncfile.New(path, map[string]any{"name": "living room"}, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.Set("vol", 11); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(raw), "name: living room") {
		t.Errorf("file does not look like YAML: %q", raw)
	}

	reopened, err := syncfile.New(path, nil, opts)
	if err != nil {
		t.Fatalf("reopen New() error = %v", err)
	}
	if v, _ := reopened.Get("name"); v != "living room" {
		t.Errorf("reopened name = %v, want %q", v, "living room")
	}
	if v, _ := reopened.Get("vol"); v != uint64(11) && v != 11 && v != float64(11) {
		t.Errorf("reopened vol = %v (%T), want 11", v, v)
	}
}

func TestMsgpackCodec_ThroughStore(t *testing.T) {
	path := tempPath(t, "state.bin")
	opts := &syncfile.Options{Codec: syncfile.MsgpackCodec{}}

	m, err := syncfile.New(path, map[string]any{"name": "office"}, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.Set("muted", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reopened, err := syncfile.New(path, nil, opts)
	if err != nil {
		t.Fatalf("reopen New() error = %v", err)
	}
	if v, _ := reopened.Get("name"); v != "office" {
		t.Errorf("reopened name = %v, want %q", v, "office")
	}
	if v, _ := reopened.Get("muted"); v != true {
		t.Errorf("reopened muted = %v, want true", v)
	}
}
