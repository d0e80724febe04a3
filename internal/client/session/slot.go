package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptySlot is returned by Slot.Read when nothing has been saved.
var ErrEmptySlot = errors.New("session slot is empty")

// Slot is a single named durable value holding the serialized identity.
type Slot interface {
	// Read returns the saved bytes, or ErrEmptySlot.
	Read() ([]byte, error)
	// Write replaces the saved bytes as a whole.
	Write(data []byte) error
	// Clear erases the saved bytes. Clearing an empty slot is not an error.
	Clear() error
}

// FileSlot stores the slot in a single file.
type FileSlot struct {
	Path string
}

// NewFileSlot returns a slot backed by the file at path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{Path: path}
}

func (s *FileSlot) Read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptySlot
	}
	return data, nil
}

// Write saves data through a temp file and rename so readers never see a
// partially written file.
func (s *FileSlot) Write(data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Chmod(tmp, 0o600); err != nil {
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *FileSlot) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
