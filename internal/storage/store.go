package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists document blobs and hands back opaque references. The core
// only ever stores the reference; swapping in an object store later means
// implementing this interface.
type Store interface {
	Save(ownerID, fileName string, content []byte) (ref string, err error)
	Load(ref string) ([]byte, error)
}

// DiskStore is a content-addressed file store rooted at Dir. References
// look like "<owner>/<sha256>-<name>" and never escape the root.
type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir}, nil
}

func (s *DiskStore) Save(ownerID, fileName string, content []byte) (string, error) {
	sum := sha256.Sum256(content)
	name := sanitize(fileName)
	ref := fmt.Sprintf("%s/%s-%s", ownerID, hex.EncodeToString(sum[:8]), name)
	path := filepath.Join(s.Dir, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *DiskStore) Load(ref string) ([]byte, error) {
	if strings.Contains(ref, "..") {
		return nil, errors.New("invalid storage ref")
	}
	return os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(ref)))
}

func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
