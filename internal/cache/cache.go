// Package cache persists fetched activity records as per-repository
// CSV files so that repeated report runs can reuse earlier data.
package cache

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

const dirName = "gitlab-activity-data"

// csvHeader is the column layout of every cache file. Existing files
// with a different header are rejected rather than silently misread.
var csvHeader = []string{
	"id", "state", "title", "web_url", "reference",
	"created_at", "updated_at", "closed_at", "merged_at",
	"labels", "contributors",
}

// Cache reads and writes activity CSV files under a root directory,
// one subdirectory per org/repo and one file per activity kind.
type Cache struct {
	root string
}

// DefaultPath returns the cache location used when the caller does not
// choose one, ~/.cache/gitlab-activity-data.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), dirName)
	}
	return filepath.Join(home, ".cache", dirName)
}

// New opens a cache rooted at path, creating the directory when
// needed. An empty path means DefaultPath.
func New(path string) (*Cache, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", path, err)
	}
	return &Cache{root: path}, nil
}

// Root returns the cache directory.
func (c *Cache) Root() string {
	return c.root
}

func (c *Cache) file(org, repo string, kind model.Kind) string {
	return filepath.Join(c.root, org, repo, string(kind)+".csv")
}

// Save merges the records into the cache. Records are spread over
// per-repository files by their Org and Repo fields; within a file
// rows are unique by web URL and an already cached row wins over a
// fresh one carrying the same URL.
func (c *Cache) Save(records []model.ActivityRecord) error {
	byFile := make(map[string][]model.ActivityRecord)
	for _, r := range records {
		if r.Org == "" || r.Repo == "" {
			continue
		}
		key := c.file(r.Org, r.Repo, r.Kind)
		byFile[key] = append(byFile[key], r)
	}

	for path, recs := range byFile {
		if err := c.saveFile(path, recs); err != nil {
			return err
		}
		log.Debug("cache file updated", "path", path, "records", len(recs))
	}
	return nil
}

func (c *Cache) saveFile(path string, records []model.ActivityRecord) error {
	existing, err := readFile(path)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		seen[row[3]] = struct{}{}
	}

	rows := existing
	for _, r := range records {
		if _, ok := seen[r.WebURL]; ok {
			continue
		}
		seen[r.WebURL] = struct{}{}
		rows = append(rows, toRow(r))
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i][5] < rows[j][5] })

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Load returns the cached rows for one repository and kind, without
// the header. A missing file yields no rows.
func (c *Cache) Load(org, repo string, kind model.Kind) ([][]string, error) {
	return readFile(c.file(org, repo, kind))
}

func readFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		return nil, fmt.Errorf("cache file %s has an unexpected header", path)
	}
	return rows[1:], nil
}

func toRow(r model.ActivityRecord) []string {
	var users []string
	for _, u := range r.Contributors {
		users = append(users, u.Username)
	}
	return []string{
		r.ID,
		string(r.State),
		r.Title,
		r.WebURL,
		r.Reference,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
		formatTime(r.ClosedAt),
		formatTime(r.MergedAt),
		strings.Join(r.Labels, ";"),
		strings.Join(users, ";"),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// RepoStats summarises one cached repository file.
type RepoStats struct {
	Org     string
	Repo    string
	Kind    model.Kind
	Records int
	// Oldest and newest createdAt in the file.
	First string
	Last  string
}

// Stats walks the cache and reports the record count of every file.
func (c *Cache) Stats() ([]RepoStats, error) {
	var out []RepoStats
	err := filepath.WalkDir(c.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".csv" {
			return err
		}
		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) < 3 {
			return nil
		}
		rows, err := readFile(path)
		if err != nil {
			return err
		}
		stat := RepoStats{
			Org:     parts[0],
			Repo:    strings.Join(parts[1:len(parts)-1], "/"),
			Kind:    model.Kind(strings.TrimSuffix(parts[len(parts)-1], ".csv")),
			Records: len(rows),
		}
		// rows are kept sorted by createdAt
		if len(rows) > 0 {
			stat.First = rows[0][5]
			stat.Last = rows[len(rows)-1][5]
		}
		out = append(out, stat)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk cache directory %s: %w", c.root, err)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Org != out[j].Org {
			return out[i].Org < out[j].Org
		}
		if out[i].Repo != out[j].Repo {
			return out[i].Repo < out[j].Repo
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

// Clear removes every cached file and recreates the empty root.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.root); err != nil {
		return fmt.Errorf("failed to clear cache directory %s: %w", c.root, err)
	}
	return os.MkdirAll(c.root, 0o755)
}

// Describe renders the stats as aligned text lines for the CLI.
func Describe(stats []RepoStats) string {
	if len(stats) == 0 {
		return "cache is empty\n"
	}
	var b strings.Builder
	for _, s := range stats {
		b.WriteString(s.Org + "/" + s.Repo + " " + string(s.Kind) + ": " + strconv.Itoa(s.Records) + " records")
		if s.First != "" {
			b.WriteString(" (" + s.First + " to " + s.Last + ")")
		}
		b.WriteString("\n")
	}
	return b.String()
}
