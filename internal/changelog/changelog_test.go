package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInsertEntry(t *testing.T) {
	existing := "# Changelog\n\n" +
		StartMarker + "\n\n" +
		"# v0.1.0...v0.2.0\n\n- Old entry\n\n" +
		EndMarker + "\n\n" +
		"# v0.0.1...v0.1.0\n\n- Ancient entry\n"

	got, err := InsertEntry(existing, "# v0.2.0...v0.3.0\n\n- New entry\n")
	if err != nil {
		t.Fatalf("InsertEntry() error = %v", err)
	}

	if !strings.Contains(got, "- New entry") {
		t.Errorf("result missing new entry:\n%s", got)
	}
	if strings.Contains(got, "- Old entry") {
		t.Errorf("previous marked entry must be replaced:\n%s", got)
	}
	if !strings.Contains(got, "- Ancient entry") {
		t.Errorf("entries past the end marker must survive:\n%s", got)
	}
	if strings.Index(got, StartMarker) > strings.Index(got, "- New entry") {
		t.Errorf("new entry must sit after the start marker:\n%s", got)
	}
	if strings.Count(got, StartMarker) != 1 || strings.Count(got, EndMarker) != 1 {
		t.Errorf("markers must stay unique:\n%s", got)
	}
}

func TestInsertEntryMarkerErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no marker", "# Changelog\n"},
		{"duplicate markers", StartMarker + "\n" + StartMarker + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := InsertEntry(tt.content, "entry"); err == nil {
				t.Error("InsertEntry() expected error")
			}
		})
	}
}

func TestWriteFileFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	if err := WriteFile(path, "# v0.1.0...v0.2.0\n\n- Something\n", false); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.HasPrefix(content, StartMarker) {
		t.Errorf("fresh file must open with the start marker:\n%s", content)
	}
	if !strings.Contains(content, EndMarker) {
		t.Errorf("fresh file missing end marker:\n%s", content)
	}
}

func TestWriteFileAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	if err := WriteFile(path, "# first\n\n- a\n", false); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, "# second\n\n- b\n", true); err != nil {
		t.Fatalf("WriteFile(append) error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "# second") {
		t.Errorf("appended entry missing:\n%s", content)
	}
	if strings.Contains(content, "# first") {
		t.Errorf("marked entry must be replaced on append:\n%s", content)
	}
}

func TestWriteFileAppendMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	if err := WriteFile(path, "entry", true); err == nil {
		t.Error("WriteFile(append) expected error for missing file")
	}
}
