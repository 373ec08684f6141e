// Package backup exports and restores the application's documents as a
// single passphrase-encrypted archive file on local disk.
package backup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

const (
	filePrefix = "backup-"
	fileSuffix = ".json.enc"
)

// archive is the plaintext payload of a backup file: every persisted
// document, verbatim.
type archive struct {
	ID        string                     `json:"id"`
	CreatedAt time.Time                  `json:"createdAt"`
	Documents map[string]json.RawMessage `json:"documents"`
}

// Info describes one backup file on disk.
type Info struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Manager exports and restores document archives under a directory.
type Manager struct {
	docs   storage.DocumentStore
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a Manager writing archives under dir.
func NewManager(docs storage.DocumentStore, dir string, logger *slog.Logger) *Manager {
	return &Manager{docs: docs, dir: dir, logger: logger, now: time.Now}
}

// Export snapshots every document into an encrypted archive file and
// returns its path.
func (m *Manager) Export(passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("passphrase is required")
	}

	names, err := m.docs.Names()
	if err != nil {
		return "", fmt.Errorf("list documents: %w", err)
	}

	a := archive{
		ID:        uuid.NewString(),
		CreatedAt: m.now(),
		Documents: make(map[string]json.RawMessage, len(names)),
	}
	for _, name := range names {
		var raw json.RawMessage
		found, err := m.docs.Read(name, &raw)
		if err != nil {
			return "", fmt.Errorf("read document %s: %w", name, err)
		}
		if found {
			a.Documents[name] = raw
		}
	}

	plaintext, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal archive: %w", err)
	}
	sealed, err := Encrypt(plaintext, passphrase)
	if err != nil {
		return "", err
	}

	name := filePrefix + m.now().UTC().Format("2006-01-02T150405Z") + fileSuffix
	path := filepath.Join(m.dir, name)
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return "", fmt.Errorf("write backup file: %w", err)
	}

	m.logger.Info("backup exported", "file", name, "documents", len(a.Documents))
	return path, nil
}

// Restore decrypts the archive and writes every document back, replacing
// current contents wholesale.
func (m *Manager) Restore(path, passphrase string) error {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup file: %w", err)
	}

	plaintext, err := Decrypt(sealed, passphrase)
	if err != nil {
		return err
	}

	var a archive
	if err := json.Unmarshal(plaintext, &a); err != nil {
		return fmt.Errorf("parse archive: %w", err)
	}
	if a.Documents == nil {
		return fmt.Errorf("not a backup archive")
	}

	for name, raw := range a.Documents {
		if err := m.docs.Write(name, raw); err != nil {
			return fmt.Errorf("restore document %s: %w", name, err)
		}
	}

	m.logger.Info("backup restored", "file", filepath.Base(path), "documents", len(a.Documents))
	return nil
}

// Path resolves a bare backup file name to its on-disk path.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, name)
}

// List returns the backup files under the directory, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	var out []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: name, SizeBytes: fi.Size(), CreatedAt: fi.ModTime()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes one backup file by name. The name must be a bare file
// name produced by Export, never a path.
func (m *Manager) Delete(name string) error {
	if name != filepath.Base(name) || !strings.HasPrefix(name, filePrefix) {
		return fmt.Errorf("invalid backup name")
	}
	if err := os.Remove(filepath.Join(m.dir, name)); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}
