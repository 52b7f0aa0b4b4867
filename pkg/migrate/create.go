package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9]+`)

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<name>.sql. The name is
// normalized to snake case and must start with a known verb. The version is
// kept strictly after the newest migration already in dir.
//
// A name shaped like create_<table>_table gets a table skeleton in the
// catalog's conventions (varchar ids, epoch millisecond timestamps).
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigrationAt(dir, name, time.Now().UTC())
}

func createSQLMigrationAt(dir string, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := strings.Trim(nameSanitizeRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_"), "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	verb, _, _ := strings.Cut(safe, "_")
	if !knownVerb(verb) {
		return "", fmt.Errorf("migration name %q must start with one of %s", name, strings.Join(migrationVerbs, ", "))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	existing, _, err := scanDir(os.DirFS(dir), ".")
	if err != nil {
		return "", fmt.Errorf("existing migrations: %w", err)
	}

	version := now.Truncate(time.Second)
	if n := len(existing); n > 0 {
		latest, _ := time.Parse(versionLayout, existing[n-1].Version)
		if !version.After(latest) {
			version = latest.Add(time.Second)
		}
	}

	filename := fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), safe)
	fullpath := filepath.Join(dir, filename)
	f, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", fullpath, err)
	}
	_, err = f.WriteString(migrationTemplate(safe))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func migrationTemplate(name string) string {
	up, down := "-- "+name, "-- rollback "+name
	if table, ok := strings.CutPrefix(name, "create_"); ok {
		if table, ok = strings.CutSuffix(table, "_table"); ok && table != "" {
			up = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id         varchar(64) PRIMARY KEY,
    created_at bigint      NOT NULL DEFAULT 0,
    updated_at bigint      NOT NULL DEFAULT 0
);`, table)
			down = fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
		}
	}
	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
%s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
%s
-- +goose StatementEnd
`, up, down)
}
