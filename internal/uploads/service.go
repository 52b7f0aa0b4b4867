package uploads

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/storage"
)

// allowedTypes maps accepted image MIME types to the stored extension.
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Result describes a stored image.
type Result struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Service stores product images.
type Service interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*Result, error)
}

type ServiceParams struct {
	Store    storage.Store
	MaxBytes int64
	Logger   *logger.Logger
}

type service struct {
	store    storage.Store
	maxBytes int64
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.MaxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:    params.Store,
		maxBytes: params.MaxBytes,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Upload sniffs the content, rejects anything but png/jpeg/webp/gif and
// stores it as <unix-ms>-<random><ext>. The client filename is only logged.
func (s *service) Upload(ctx context.Context, filename string, body io.Reader) (*Result, error) {
	if body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large").
			WithDetails(map[string]any{"max_bytes": s.maxBytes})
	}

	detected := mimetype.Detect(data)
	contentType, ext, ok := allowed(detected)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only png, jpeg, webp and gif images are accepted").
			WithDetails(map[string]any{"content_type": detected.String()})
	}

	name, err := s.objectName(ext)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate object name")
	}
	url, err := s.store.Put(ctx, name, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store upload")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"object":        name,
		"original_name": filename,
		"content_type":  contentType,
		"size":          len(data),
	})
	s.logg.Info(logCtx, "uploads.stored")

	return &Result{URL: url, Name: name, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *service) objectName(ext string) (string, error) {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), hex.EncodeToString(suffix), ext), nil
}

func allowed(detected *mimetype.MIME) (contentType, ext string, ok bool) {
	for m := detected; m != nil; m = m.Parent() {
		if ext, ok := allowedTypes[m.String()]; ok {
			return m.String(), ext, true
		}
	}
	return "", "", false
}
