package core

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDefaultAtomicConfig(t *testing.T) {
	config := DefaultAtomicConfig()

	if config.TempSuffix != ".regraft.tmp" {
		t.Errorf("Expected TempSuffix '.regraft.tmp', got '%s'", config.TempSuffix)
	}
	if !config.BackupOriginal {
		t.Error("Expected BackupOriginal to be true")
	}
	if config.UseFsync {
		t.Error("Expected UseFsync to be false by default")
	}
}

func TestAtomicWriter_WriteFile_Simple(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.rb")

	config := DefaultAtomicConfig()
	config.BackupOriginal = false
	writer := NewAtomicWriter(config)

	content := "puts(1)\n"
	if err := writer.WriteFile(testFile, content); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	if string(data) != content {
		t.Errorf("Expected content %q, got %q", content, string(data))
	}
}

func TestAtomicWriter_WriteFile_Overwrite(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.rb")
	if err := os.WriteFile(testFile, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	writer := NewAtomicWriter(DefaultAtomicConfig())
	if err := writer.WriteFile(testFile, "new\n"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, _ := os.ReadFile(testFile)
	if string(data) != "new\n" {
		t.Errorf("Expected overwritten content, got %q", string(data))
	}

	backup, err := os.ReadFile(testFile + ".bak")
	if err != nil {
		t.Fatalf("Expected backup file: %v", err)
	}
	if string(backup) != "old\n" {
		t.Errorf("Expected backup to hold original content, got %q", string(backup))
	}
}

func TestAtomicWriter_NoBackupForNewFile(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "fresh.rb")

	writer := NewAtomicWriter(DefaultAtomicConfig())
	if err := writer.WriteFile(testFile, "x = 1\n"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := os.Stat(testFile + ".bak"); !os.IsNotExist(err) {
		t.Error("Expected no backup for a file that did not exist")
	}
}

func TestAtomicWriter_NoTempFileLeftBehind(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.rb")

	config := DefaultAtomicConfig()
	config.BackupOriginal = false
	writer := NewAtomicWriter(config)

	if err := writer.WriteFile(testFile, "x = 1\n"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := os.Stat(testFile + config.TempSuffix); !os.IsNotExist(err) {
		t.Error("Expected temp file to be renamed away")
	}
}

func TestAtomicWriter_PreservesMode(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "exec.rb")
	if err := os.WriteFile(testFile, []byte("old\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	config := DefaultAtomicConfig()
	config.BackupOriginal = false
	writer := NewAtomicWriter(config)
	if err := writer.WriteFile(testFile, "new\n"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("Expected mode 0755 preserved, got %v", info.Mode().Perm())
	}
}

func TestAtomicWriter_ConcurrentWritesSamePath(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "contended.rb")

	config := DefaultAtomicConfig()
	config.BackupOriginal = false
	writer := NewAtomicWriter(config)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := writer.WriteFile(testFile, "content\n"); err != nil {
				t.Errorf("WriteFile failed: %v", err)
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content\n" {
		t.Errorf("Expected intact content after concurrent writes, got %q", string(data))
	}
}
