package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/shiftlog/internal/constants"
)

func setupSqliteStore(t *testing.T) string {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "shiftlog.db")

	db, err := sql.Open("sqlite", storePath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO settings (key, value) VALUES ('standard_work_hours', '8')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}

	return storePath
}

func setupJSONStore(t *testing.T) string {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "shiftlog.json")
	if err := os.WriteFile(storePath, []byte(`{"version":1,"records":{}}`), 0600); err != nil {
		t.Fatalf("failed to write test store: %v", err)
	}
	return storePath
}

func TestCreateBackupSqlite(t *testing.T) {
	storePath := setupSqliteStore(t)

	mgr := NewManager(storePath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	if filepath.Ext(backupPath) != ".db" {
		t.Errorf("backup extension = %s, want .db", filepath.Ext(backupPath))
	}

	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup: %v", err)
	}
	defer db.Close()

	var value string
	if err := db.QueryRow("SELECT value FROM settings WHERE key = 'standard_work_hours'").Scan(&value); err != nil {
		t.Fatalf("failed to query backup: %v", err)
	}
	if value != "8" {
		t.Errorf("backed up value = %s, want 8", value)
	}
}

func TestCreateBackupJSON(t *testing.T) {
	storePath := setupJSONStore(t)

	mgr := NewManager(storePath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	if filepath.Ext(backupPath) != ".json" {
		t.Errorf("backup extension = %s, want .json", filepath.Ext(backupPath))
	}

	original, _ := os.ReadFile(storePath)
	copied, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(original) != string(copied) {
		t.Error("backup content differs from store")
	}
}

func TestCreateBackupMissingStore(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("CreateBackup() succeeded for a missing store")
	}
}

func TestListBackups(t *testing.T) {
	storePath := setupJSONStore(t)
	mgr := NewManager(storePath)

	t.Run("empty without backup dir", func(t *testing.T) {
		backups, err := mgr.ListBackups()
		if err != nil {
			t.Fatalf("ListBackups() error = %v", err)
		}
		if len(backups) != 0 {
			t.Errorf("len(backups) = %d, want 0", len(backups))
		}
	})

	// Fabricate backups with known timestamps.
	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stamps := []string{"20230913-090000", "20230915-090000", "20230914-090000"}
	for _, stamp := range stamps {
		name := constants.BackupFilePrefix + stamp + ".json"
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("{}"), 0600); err != nil {
			t.Fatalf("write backup fixture: %v", err)
		}
	}
	// Files with a foreign extension or name are not ours.
	os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), []byte("x"), 0600)
	os.WriteFile(filepath.Join(mgr.GetBackupDir(), constants.BackupFilePrefix+"garbage.json"), []byte("{}"), 0600)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("len(backups) = %d, want 3", len(backups))
	}

	want := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	if !backups[0].Timestamp.Equal(want) {
		t.Errorf("first backup timestamp = %v, want newest %v", backups[0].Timestamp, want)
	}
}

func TestRotateBackups(t *testing.T) {
	storePath := setupJSONStore(t)
	mgr := NewManager(storePath)

	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for i := 0; i < constants.MaxBackups+3; i++ {
		stamp := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format(timestampFormat)
		name := constants.BackupFilePrefix + stamp + ".json"
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("{}"), 0600); err != nil {
			t.Fatalf("write backup fixture: %v", err)
		}
	}

	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("len(backups) = %d, want %d after rotation", len(backups), constants.MaxBackups)
	}
}

func TestRestoreBackup(t *testing.T) {
	storePath := setupJSONStore(t)
	mgr := NewManager(storePath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	// The store moves on after the backup.
	if err := os.WriteFile(storePath, []byte(`{"version":1,"records":{"2023-09-15":[]}}`), 0600); err != nil {
		t.Fatalf("write store: %v", err)
	}

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup() error = %v", err)
	}

	restored, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if string(restored) != `{"version":1,"records":{}}` {
		t.Errorf("restored content = %s", restored)
	}

	// Restoring also snapshots the pre-restore store.
	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(backups) < 2 {
		t.Errorf("len(backups) = %d, want the original and the pre-restore snapshot", len(backups))
	}
}

func TestRestoreBackupRejectsCorrupt(t *testing.T) {
	storePath := setupJSONStore(t)
	mgr := NewManager(storePath)

	corrupt := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(corrupt, []byte("not json"), 0600); err != nil {
		t.Fatalf("write corrupt backup: %v", err)
	}

	if err := mgr.RestoreBackup(corrupt); err == nil {
		t.Error("RestoreBackup() accepted a corrupt backup")
	}
}

func TestBackupNameCollision(t *testing.T) {
	storePath := setupJSONStore(t)
	mgr := NewManager(storePath)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup() #%d error = %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}
}
