package backup

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testDocs(t *testing.T) storage.DocumentStore {
	t.Helper()
	docs, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test storage: %v", err)
	}
	t.Cleanup(func() { docs.Close() })
	return docs
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	plaintext := []byte(`{"events":[{"id":1}]}`)

	sealed, err := Encrypt(plaintext, "correct horse")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	got, err := Decrypt(sealed, "correct horse")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("roundtrip = %q, want %q", got, plaintext)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(sealed, "wrong"); err == nil {
		t.Error("expected error for wrong passphrase")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "pass")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := Decrypt(sealed, "pass"); err == nil {
		t.Error("expected error for tampered ciphertext")
	}
}

func TestDecryptTruncated(t *testing.T) {
	if _, err := Decrypt([]byte("short"), "pass"); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestExportRestoreRoundtrip(t *testing.T) {
	src := testDocs(t)
	if err := src.Write(storage.DocGroups, []map[string]any{{"id": 1, "name": "Runners"}}); err != nil {
		t.Fatalf("seed groups: %v", err)
	}
	if err := src.Write(storage.DocSettings, map[string]any{"timingMinutes": 30}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	dir := t.TempDir()
	path, err := NewManager(src, dir, discard()).Export("hunter2")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := testDocs(t)
	if err := NewManager(dst, dir, discard()).Restore(path, "hunter2"); err != nil {
		t.Fatalf("restore: %v", err)
	}

	var groups []map[string]any
	found, err := dst.Read(storage.DocGroups, &groups)
	if err != nil || !found {
		t.Fatalf("read restored groups: found=%v err=%v", found, err)
	}
	if len(groups) != 1 || groups[0]["name"] != "Runners" {
		t.Errorf("restored groups = %v", groups)
	}

	var settings map[string]any
	if found, _ := dst.Read(storage.DocSettings, &settings); !found {
		t.Fatal("restored settings missing")
	}
	if settings["timingMinutes"] != float64(30) {
		t.Errorf("restored timing = %v, want 30", settings["timingMinutes"])
	}
}

func TestRestoreWrongPassphrase(t *testing.T) {
	src := testDocs(t)
	src.Write(storage.DocGroups, []string{})

	dir := t.TempDir()
	path, err := NewManager(src, dir, discard()).Export("right")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := NewManager(src, dir, discard()).Restore(path, "wrong"); err == nil {
		t.Error("expected error for wrong passphrase")
	}
}

func TestExportRequiresPassphrase(t *testing.T) {
	m := NewManager(testDocs(t), t.TempDir(), discard())
	if _, err := m.Export(""); err == nil {
		t.Error("expected error for empty passphrase")
	}
}

func TestListAndDelete(t *testing.T) {
	docs := testDocs(t)
	docs.Write(storage.DocGroups, []string{})

	dir := t.TempDir()
	m := NewManager(docs, dir, discard())
	if _, err := m.Export("p"); err != nil {
		t.Fatalf("export: %v", err)
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("%d backups, want 1", len(backups))
	}
	if backups[0].SizeBytes == 0 {
		t.Error("backup size should be non-zero")
	}

	if err := m.Delete(backups[0].Name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	backups, _ = m.List()
	if len(backups) != 0 {
		t.Errorf("%d backups after delete, want 0", len(backups))
	}

	// Path traversal is rejected outright.
	if err := m.Delete("../evil"); err == nil {
		t.Error("expected error for path-like name")
	}
}
