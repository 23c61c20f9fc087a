package channels_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"streamwatch/internal/channels"
	"streamwatch/internal/logging"
)

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	names, dups, err := channels.Parse(strings.NewReader("alice\n#bob\n\n   \n  # indented comment\ncarol  \n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"alice", "carol"}) {
		t.Fatalf("unexpected names %v", names)
	}
	if len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %v", dups)
	}
}

func TestParseKeepsTrailingCommentVerbatim(t *testing.T) {
	names, _, err := channels.Parse(strings.NewReader("alice # main\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(names) != 1 || names[0] != "alice # main" {
		t.Fatalf("expected trailing comment kept, got %v", names)
	}
}

func TestParseDropsDuplicatesByKey(t *testing.T) {
	names, dups, err := channels.Parse(strings.NewReader("Alice\nbob\nalice\nBOB\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"Alice", "bob"}) {
		t.Fatalf("unexpected names %v", names)
	}
	if !reflect.DeepEqual(dups, []string{"alice", "BOB"}) {
		t.Fatalf("unexpected duplicates %v", dups)
	}
}

func TestKeyFoldsCase(t *testing.T) {
	if channels.Key(" Alice ") != channels.Key("alice") {
		t.Fatalf("expected folded keys to match: %q vs %q", channels.Key(" Alice "), channels.Key("alice"))
	}
}

func TestSourceKeepsPreviousListOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streamlist.txt")
	source := channels.NewSource(path, logging.NewNop())

	names, err := source.Read()
	if err == nil {
		t.Fatal("expected error for missing list")
	}
	if len(names) != 0 {
		t.Fatalf("expected empty list before first read, got %v", names)
	}

	if err := os.WriteFile(path, []byte("alice\n#bob\n\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	names, err = source.Read()
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"alice"}) {
		t.Fatalf("expected [alice], got %v", names)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove list: %v", err)
	}
	names, err = source.Read()
	if err == nil {
		t.Fatal("expected error once list disappears")
	}
	if !reflect.DeepEqual(names, []string{"alice"}) {
		t.Fatalf("expected previous list retained, got %v", names)
	}
}

func TestSourceReadsChangesEachCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streamlist.txt")
	if err := os.WriteFile(path, []byte("alice\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	source := channels.NewSource(path, nil)
	if _, err := source.Read(); err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if err := os.WriteFile(path, []byte("alice\nbob\n"), 0o644); err != nil {
		t.Fatalf("rewrite list: %v", err)
	}
	names, err := source.Read()
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"alice", "bob"}) {
		t.Fatalf("expected updated list, got %v", names)
	}
}
