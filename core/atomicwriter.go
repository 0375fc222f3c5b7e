package core

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// AtomicWriteConfig controls how rewritten sources reach disk.
type AtomicWriteConfig struct {
	UseFsync       bool   // force fsync before rename for durability
	TempSuffix     string // suffix for the temporary file
	BackupOriginal bool   // keep a .bak copy of the original
}

// DefaultAtomicConfig provides sensible defaults.
func DefaultAtomicConfig() AtomicWriteConfig {
	return AtomicWriteConfig{
		UseFsync:       false,
		TempSuffix:     ".regraft.tmp",
		BackupOriginal: true,
	}
}

// AtomicWriter writes whole files via a temp file and rename, so a
// crash mid-write never leaves a half-rewritten source behind. Writes
// to the same path are serialized.
type AtomicWriter struct {
	config AtomicWriteConfig
	mu     sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewAtomicWriter creates a writer with the given configuration.
func NewAtomicWriter(config AtomicWriteConfig) *AtomicWriter {
	return &AtomicWriter{config: config, locks: make(map[string]*sync.Mutex)}
}

// WriteFile atomically replaces the content of path.
func (aw *AtomicWriter) WriteFile(path, content string) error {
	lock := aw.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	var mode os.FileMode = 0o644
	info, statErr := os.Stat(path)
	if statErr == nil {
		mode = info.Mode()
	}

	if aw.config.BackupOriginal && statErr == nil {
		if err := copyFile(path, path+".bak", mode); err != nil {
			return fmt.Errorf("creating backup of %s: %w", path, err)
		}
	}

	tempPath := path + aw.config.TempSuffix
	temp, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := temp.WriteString(content); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if aw.config.UseFsync {
		if err := temp.Sync(); err != nil {
			temp.Close()
			os.Remove(tempPath)
			return fmt.Errorf("syncing temp file: %w", err)
		}
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func (aw *AtomicWriter) pathLock(path string) *sync.Mutex {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	lock, ok := aw.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		aw.locks[path] = lock
	}
	return lock
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
