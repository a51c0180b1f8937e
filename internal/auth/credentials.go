package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoadCredentials reads and validates the credentials file at path.
func LoadCredentials(path string) (*CredentialsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var file CredentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if err := file.Validate(validator.New()); err != nil {
		return nil, err
	}
	if file.Credentials.Usernames == nil {
		file.Credentials.Usernames = map[string]User{}
	}
	return &file, nil
}

func (f *CredentialsFile) Validate(v *validator.Validate) error {
	if err := v.Struct(f); err != nil {
		return fmt.Errorf("invalid credentials file: %w", err)
	}
	return nil
}

// Save writes the file next to path and renames it into place so readers
// never see a partial document.
func (f *CredentialsFile) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".credentials-*.yaml")
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
