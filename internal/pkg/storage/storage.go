// Package storage persists uploaded avatars and returns the path clients use
// to fetch them.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AvatarStorage interface {
	// Save stores data under key and returns its public location.
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// AvatarKey builds a collision free object key for a user's avatar.
func AvatarKey(userId uuid.UUID, ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("avatars/%s/%d%02d%02d-%s%s", userId, d.Year(), d.Month(), d.Day(), uuid.NewString(), ext)
}

type LocalStorage struct {
	dir          string
	publicPrefix string
}

func NewLocalStorage(dir, publicPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStorage{dir: dir, publicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

func (s *LocalStorage) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	clean := filepath.Clean("/" + key)
	path := filepath.Join(s.dir, clean)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create avatar dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}

	return s.publicPrefix + filepath.ToSlash(clean), nil
}
