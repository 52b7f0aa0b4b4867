package migrate

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const versionLayout = "20060102150405"

var migrationFileRe = regexp.MustCompile(`^(\d{14})_([a-z][a-z0-9]*(?:_[a-z0-9]+)*)\.sql$`)

// Verbs a migration name may start with, e.g. create_products_table or
// add_products_slug.
var migrationVerbs = []string{"create", "add", "alter", "drop", "rename", "backfill", "index"}

// Migration is one SQL file in the migrations directory.
type Migration struct {
	Version  string
	Name     string
	Filename string
}

// ListMigrations returns the SQL migrations in dir sorted by version; an
// empty dir lists the embedded migrations. Files whose names break the
// naming rules are reported in the error, and the well-named files are still
// returned.
func ListMigrations(dir string) ([]Migration, error) {
	migrations, naming, err := scanDir(source(dir), ".")
	if err != nil {
		return nil, err
	}
	return migrations, naming
}

// ValidateDir checks every migration in dir and reports all problems at once:
// file naming, duplicate versions, goose section order and balanced
// StatementBegin/StatementEnd blocks.
// An empty dir validates the embedded migrations.
func ValidateDir(dir string) error {
	return ValidateFS(source(dir), ".")
}

// ValidateFS is ValidateDir over dir inside fsys.
func ValidateFS(fsys fs.FS, dir string) error {
	migrations, errs, err := scanDir(fsys, dir)
	if err != nil {
		return err
	}

	seen := make(map[string]string, len(migrations))
	for _, m := range migrations {
		if prev, ok := seen[m.Version]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m.Version, prev, m.Filename))
			continue
		}
		seen[m.Version] = m.Filename

		body, err := fs.ReadFile(fsys, path.Join(dir, m.Filename))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", m.Filename, err))
			continue
		}
		for _, problem := range checkSections(body) {
			errs = multierr.Append(errs, fmt.Errorf("migration %q: %s", m.Filename, problem))
		}
	}
	return errs
}

func scanDir(fsys fs.FS, dir string) (migrations []Migration, naming error, err error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m, perr := parseFilename(e.Name())
		if perr != nil {
			naming = multierr.Append(naming, perr)
			continue
		}
		migrations = append(migrations, m)
	}
	sort.SliceStable(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, naming, nil
}

func parseFilename(name string) (Migration, error) {
	match := migrationFileRe.FindStringSubmatch(name)
	if match == nil {
		return Migration{}, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_<verb>_<subject>.sql)", name)
	}
	if _, err := time.Parse(versionLayout, match[1]); err != nil {
		return Migration{}, fmt.Errorf("invalid migration filename %q: version is not a timestamp", name)
	}
	verb, _, _ := strings.Cut(match[2], "_")
	if !knownVerb(verb) {
		return Migration{}, fmt.Errorf("invalid migration filename %q: name must start with one of %s", name, strings.Join(migrationVerbs, ", "))
	}
	return Migration{Version: match[1], Name: match[2], Filename: name}, nil
}

func knownVerb(verb string) bool {
	for _, v := range migrationVerbs {
		if v == verb {
			return true
		}
	}
	return false
}

// checkSections expects exactly one Up annotation followed by exactly one
// Down annotation, with statement blocks opened and closed inside a section.
func checkSections(body []byte) []string {
	var (
		problems []string
		section  string
		ups      int
		downs    int
		open     bool
	)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "-- +goose Up":
			ups++
			if downs > 0 {
				problems = append(problems, fmt.Sprintf("line %d: Up section after Down", line))
			}
			if open {
				problems = append(problems, fmt.Sprintf("line %d: statement block left open", line))
				open = false
			}
			section = "up"
		case "-- +goose Down":
			downs++
			if open {
				problems = append(problems, fmt.Sprintf("line %d: statement block left open", line))
				open = false
			}
			section = "down"
		case "-- +goose StatementBegin":
			if section == "" {
				problems = append(problems, fmt.Sprintf("line %d: statement block outside a section", line))
			}
			if open {
				problems = append(problems, fmt.Sprintf("line %d: nested StatementBegin", line))
			}
			open = true
		case "-- +goose StatementEnd":
			if !open {
				problems = append(problems, fmt.Sprintf("line %d: StatementEnd without StatementBegin", line))
			}
			open = false
		}
	}
	if open {
		problems = append(problems, "statement block left open at end of file")
	}
	switch {
	case ups == 0:
		problems = append(problems, `missing "-- +goose Up"`)
	case ups > 1:
		problems = append(problems, `more than one "-- +goose Up"`)
	}
	switch {
	case downs == 0:
		problems = append(problems, `missing "-- +goose Down"`)
	case downs > 1:
		problems = append(problems, `more than one "-- +goose Down"`)
	}
	return problems
}
