// Package settings provides SettingsStore implementations: a viper-backed
// file store for persistent configuration and an in-memory store used as the
// zero-configuration default.
package settings

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// FileStore persists settings to a single config file via viper. Every Set
// writes the file through, so a crash never loses more than the in-flight
// change.
type FileStore struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// NewFileStore loads the store from path, which decides the format by
// extension (yaml, json, toml). A missing file is an empty store; it is
// created on the first Set.
func NewFileStore(path string) (*FileStore, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read settings %q: %w", path, err)
		}
	}

	return &FileStore{v: v, path: path}, nil
}

// Get decodes the stored value for key into out.
func (s *FileStore) Get(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return fmt.Errorf("%w: %s", contracts.ErrSettingNotFound, key)
	}
	if err := s.v.UnmarshalKey(key, out); err != nil {
		return fmt.Errorf("decode setting %q: %w", key, err)
	}
	return nil
}

// Set stores the value and writes the file.
func (s *FileStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings %q: %w", s.path, err)
	}
	return nil
}
