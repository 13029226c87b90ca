// Package changelog renders activity into grouped markdown entries
// and splices them into an existing changelog file.
package changelog

import (
	"fmt"
	"os"
	"strings"
)

// Marker comments delimiting the most recent entry in a maintained
// changelog file.
const (
	StartMarker = "<!-- <START NEW CHANGELOG ENTRY> -->"
	EndMarker   = "<!-- <END NEW CHANGELOG ENTRY> -->"
)

// InsertEntry splices a fresh entry into existing changelog content.
// The content must contain the start marker exactly once; the new
// entry replaces whatever sits between the markers, and earlier
// entries after the end marker are preserved.
func InsertEntry(content, entry string) (string, error) {
	switch n := strings.Count(content, StartMarker); n {
	case 1:
	case 0:
		return "", fmt.Errorf("changelog has no %q marker to insert at", StartMarker)
	default:
		return "", fmt.Errorf("changelog has %d %q markers, expected exactly one", n, StartMarker)
	}

	head, rest, _ := strings.Cut(content, StartMarker)
	if _, after, ok := strings.Cut(rest, EndMarker); ok {
		rest = after
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(head, "\n"))
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(StartMarker + "\n\n")
	b.WriteString(strings.TrimRight(entry, "\n") + "\n\n")
	b.WriteString(EndMarker + "\n")
	if trimmed := strings.TrimLeft(rest, "\n"); trimmed != "" {
		b.WriteString("\n" + trimmed)
	}
	return b.String(), nil
}

// WriteFile writes the entry to path. In append mode the entry is
// spliced between the file's markers; otherwise the file is replaced
// with a fresh marker-wrapped entry.
func WriteFile(path, entry string, appendMode bool) error {
	var content string
	if appendMode {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read changelog %s: %w", path, err)
		}
		content, err = InsertEntry(string(data), entry)
		if err != nil {
			return err
		}
	} else {
		content = StartMarker + "\n\n" + strings.TrimRight(entry, "\n") + "\n\n" + EndMarker + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write changelog %s: %w", path, err)
	}
	return nil
}
