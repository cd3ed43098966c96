// Package store persists exported documents.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/chatexport/internal/config"
)

// Store saves an export under name and returns the key it was written to.
type Store interface {
	Save(ctx context.Context, name string, markdown []byte) (string, error)
}

// FromConfig builds the configured backend. It returns nil for "none".
func FromConfig(cfg config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "", config.StoreNone:
		return nil, nil
	case config.StoreFile:
		return NewFileStore(cfg.StoreDir), nil
	case config.StoreMinio:
		return NewMinioStore(MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns  = regexp.MustCompile(`-+`)
	stampForm = "2006-01-02T15-04-05"
)

// Slugify converts a string to a path-safe slug of at most 50 bytes.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}

// Filename derives the export file name from the title and export time.
func Filename(title string, t time.Time) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "claude-chat"
	}
	return slug + "-" + t.Format(stampForm) + ".md"
}

// FileStore writes exports into a local directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Save(_ context.Context, name string, markdown []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid export name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, markdown, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
