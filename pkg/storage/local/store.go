package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/atacado-catalog/pkg/config"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/storage"
)

// Store writes uploads under a directory that the API also serves statically.
type Store struct {
	dir        string
	publicPath string
}

var _ storage.Store = (*Store)(nil)

// New prepares the upload directory.
func New(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Store, error) {
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %q: %w", dir, err)
	}
	publicPath := "/" + strings.Trim(strings.TrimSpace(cfg.PublicPath), "/")
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"dir": dir, "public_path": publicPath}), "local upload store ready")
	}
	return &Store{dir: dir, publicPath: publicPath}, nil
}

// Dir returns the directory served at the public path.
func (s *Store) Dir() string {
	return s.dir
}

// PublicPath is the URL prefix returned by Put.
func (s *Store) PublicPath() string {
	return s.publicPath
}

// Handler serves stored objects under PublicPath. Directory listings are
// refused.
func (s *Store) Handler() http.Handler {
	files := http.StripPrefix(s.publicPath+"/", http.FileServer(http.Dir(s.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// Put writes body to <dir>/<name> and returns <publicPath>/<name>.
func (s *Store) Put(ctx context.Context, name, _ string, body io.Reader) (string, error) {
	clean, err := storage.CleanObjectName(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, clean)
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %q: %w", clean, err)
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("writing %q: %w", clean, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("closing %q: %w", clean, err)
	}
	return s.publicPath + "/" + clean, nil
}

// Ping verifies the upload directory still exists.
func (s *Store) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
