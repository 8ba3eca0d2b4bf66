package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// versionLayout orders files lexically by creation time
const versionLayout = "20060102150405"

var (
	// ErrEmptyName is returned when a name has no usable characters
	ErrEmptyName = errors.New("migration name has no letters or digits")

	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
)

// Pair is a scaffolded up/down migration
type Pair struct {
	Version  string
	Slug     string
	UpPath   string
	DownPath string
}

// Scaffold writes an empty transactional up/down pair into dir, creating dir
// when needed. The body is left for the author.
func Scaffold(dir, name, description string, now time.Time) (*Pair, error) {
	slug := Slug(name)
	if slug == "" {
		return nil, ErrEmptyName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	p := &Pair{Version: now.UTC().Format(versionLayout), Slug: slug}
	base := filepath.Join(dir, p.Version+"_"+slug)
	p.UpPath, p.DownPath = base+".up.sql", base+".down.sql"

	header := fmt.Sprintf("-- %s\n-- Created: %s\n", name, now.UTC().Format(time.RFC3339))
	up := header
	if description != "" {
		up += "-- " + description + "\n"
	}

	// O_EXCL so two scaffolds in the same second never overwrite each other
	if err := writeNew(p.UpPath, up+"\nBEGIN;\n\nCOMMIT;\n"); err != nil {
		return nil, err
	}
	if err := writeNew(p.DownPath, header+"-- Rollback\n\nBEGIN;\n\nCOMMIT;\n"); err != nil {
		_ = os.Remove(p.UpPath)
		return nil, err
	}
	return p, nil
}

// Slug lowercases name and joins its alphanumeric runs with underscores
func Slug(name string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// List returns the base names of the up migrations in fsys, oldest first
func List(fsys fs.FS) ([]string, error) {
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ups))
	for _, up := range ups {
		names = append(names, strings.TrimSuffix(up, ".up.sql"))
	}
	sort.Strings(names)
	return names, nil
}

// Unpaired returns the up migrations in fsys that have no down file
func Unpaired(fsys fs.FS) ([]string, error) {
	names, err := List(fsys)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range names {
		if _, err := fs.Stat(fsys, name+".down.sql"); err != nil {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
