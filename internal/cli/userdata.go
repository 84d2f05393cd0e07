package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/marofny/deckhand/internal/shell/client"
)

// =============================================================================
// Stored User Data
// =============================================================================

// ErrNotLoggedIn is returned when no stored login exists.
var ErrNotLoggedIn = errors.New("not logged in, run: deckhand-cli login")

// UserData is the stored login: which control plane to talk to and as whom.
type UserData struct {
	RemoteURL string `yaml:"remote_url"`
	Token     string `yaml:"token"`
}

// userDataPath returns the config file location under the user config dir.
func userDataPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate user config directory: %w", err)
	}
	return filepath.Join(dir, "deckhand", "config.yaml"), nil
}

// LoadUserData reads the stored login.
func LoadUserData() (*UserData, error) {
	path, err := userDataPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}
	var data UserData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("corrupt login file %s: %w", path, err)
	}
	if data.RemoteURL == "" || data.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return &data, nil
}

// Save writes the login with owner-only permissions - the token is a
// credential.
func (d *UserData) Save() error {
	path, err := userDataPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// apiClient builds a control-plane client from the stored login.
func apiClient() (*client.Client, error) {
	data, err := LoadUserData()
	if err != nil {
		return nil, err
	}
	return client.New(data.RemoteURL, data.Token)
}
