// Package storage resolves XDG-compliant storage paths for styleguard's log
// file and run-history database.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// AppName is the application name used for XDG directory paths.
const AppName = "styleguard"

const (
	logFilename     = "styleguard.log"
	historyFilename = "history.db"
)

// Manager handles storage path operations with filesystem abstraction.
type Manager struct {
	fs afero.Fs
}

// New creates a storage manager with the given filesystem.
func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// DataDir returns the XDG data directory for styleguard, creating it if
// necessary.
func (m *Manager) DataDir() (string, error) {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	if err := m.fs.MkdirAll(dataDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return dataDir, nil
}

// LogPath returns the full path to the styleguard log file.
func (m *Manager) LogPath() (string, error) {
	dataDir, err := m.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, logFilename), nil
}

// HistoryPath returns the full path to the run-history database.
func (m *Manager) HistoryPath() (string, error) {
	dataDir, err := m.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, historyFilename), nil
}
