package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const maxExtLen = 16

// AttachmentStore keeps uploaded files in a local directory. Files are stored
// under generated keys so concurrent uploads with the same name never collide.
type AttachmentStore struct {
	fs  afero.Fs
	dir string
}

// NewAttachmentStore returns a store rooted at dir on fs.
func NewAttachmentStore(fs afero.Fs, dir string) *AttachmentStore {
	return &AttachmentStore{fs: fs, dir: dir}
}

// NewOSAttachmentStore returns a store on the host filesystem.
func NewOSAttachmentStore(dir string) (*AttachmentStore, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachments dir: %w", err)
	}
	return NewAttachmentStore(fs, dir), nil
}

// Save writes r under a fresh key and returns the descriptor to attach to a ticket.
func (s *AttachmentStore) Save(fileName, contentType string, r io.Reader) (*domain.Attachment, error) {
	original := cleanFileName(fileName)
	key := uuid.NewString() + safeExt(original)
	path := filepath.Join(s.dir, key)

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = s.fs.Remove(path)
		return nil, err
	}

	return &domain.Attachment{
		FileName:    original,
		FilePath:    path,
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   n,
	}, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *AttachmentStore) Remove(att *domain.Attachment) error {
	if att == nil || att.FilePath == "" {
		return nil
	}
	err := s.fs.Remove(att.FilePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "attachment"
	}
	return name
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
