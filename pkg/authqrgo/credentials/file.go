package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore keeps credentials in a YAML file readable only by the owner.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (fs *FileStore) Load() (map[Name]string, error) {
	data, err := os.ReadFile(fs.Path)
	if errors.Is(err, os.ErrNotExist) {
		return map[Name]string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read credential state: %w", err)
	}

	stored := make(map[Name]string)
	if err = yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse credential state %s: %w", fs.Path, err)
	}
	return stored, nil
}

func (fs *FileStore) Save(values map[Name]string) error {
	if len(values) == 0 {
		err := os.Remove(fs.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove credential state: %w", err)
		}
		return nil
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(fs.Path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.Path), ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credential state: %w", err)
	}
	if err = tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fs.Path)
}
