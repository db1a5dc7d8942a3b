// Package storage is a local-disk object store for uploaded files. Objects
// live under a fixed set of path prefixes mirroring the upload areas of the
// application: post attachments, library files and thumbnails, and coursework
// submissions with their proof files.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	PrefixPosts             = "posts"
	PrefixContentFiles      = "content_files"
	PrefixContentThumbnails = "content_thumbnails"
	PrefixCoursework        = "submissions/coursework"
	PrefixProof             = "submissions/proof"
)

type Store struct {
	root string
}

// New creates the store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// SavePostAttachment stores a post's attachment under posts/{postID}/ and
// returns the object path.
func (s *Store) SavePostAttachment(postID int, file *multipart.FileHeader) (string, error) {
	prefix := fmt.Sprintf("%s/%d", PrefixPosts, postID)
	return s.save(prefix, file)
}

// Save stores a file under one of the fixed prefixes and returns the object path.
func (s *Store) Save(prefix string, file *multipart.FileHeader) (string, error) {
	switch prefix {
	case PrefixContentFiles, PrefixContentThumbnails, PrefixCoursework, PrefixProof:
		return s.save(prefix, file)
	}
	return "", fmt.Errorf("unknown storage prefix %q", prefix)
}

func (s *Store) save(prefix string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening upload: %w", err)
	}
	defer src.Close()

	// uuid object name, original extension kept for content-type sniffing
	ext := filepath.Ext(file.Filename)
	objectPath := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	fullPath := filepath.Join(s.root, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("error creating object dir: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("error creating object: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("error writing object: %w", err)
	}
	return objectPath, nil
}

// Open returns a reader for a stored object.
func (s *Store) Open(objectPath string) (io.ReadCloser, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// FilePath resolves an object path to an absolute file path for serving.
func (s *Store) FilePath(objectPath string) (string, error) {
	return s.resolve(objectPath)
}

// Delete removes a stored object. Missing objects are not an error.
func (s *Store) Delete(objectPath string) error {
	if objectPath == "" {
		return nil
	}
	full, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeletePostDir removes everything stored for a post.
func (s *Store) DeletePostDir(postID int) error {
	dir := filepath.Join(s.root, PrefixPosts, fmt.Sprintf("%d", postID))
	return os.RemoveAll(dir)
}

// resolve rejects path traversal and maps an object path onto the root.
func (s *Store) resolve(objectPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(objectPath))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return filepath.Join(s.root, clean), nil
}
