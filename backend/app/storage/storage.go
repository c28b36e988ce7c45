// Package storage keeps uploaded objects in a vfs location (file://, mem://,
// s3:// or gs://).
package storage

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/c2fo/vfs/v6"
	"github.com/c2fo/vfs/v6/vfssimple"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
)

type Bucket struct {
	loc vfs.Location
}

// Open returns a bucket rooted at uri. The uri must name a directory, with a
// trailing slash.
func Open(uri string) (*Bucket, error) {
	if !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	loc, err := vfssimple.NewLocation(uri)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &Bucket{loc: loc}, nil
}

func (b *Bucket) URI() string { return b.loc.URI() }

// ObjectKey is "<user id>/<root|f_<folder id>>/<file name>".
func ObjectKey(userID string, folderID *string, name string) string {
	prefix := "root"
	if folderID != nil {
		prefix = "f_" + *folderID
	}
	return path.Join(userID, prefix, name)
}

// Put writes r to a new object at key and returns the number of bytes
// written. An existing object is never replaced: Put fails with
// ErrObjectExists instead.
func (b *Bucket) Put(key string, r io.Reader) (int64, error) {
	f, err := b.loc.NewFile(key)
	if err != nil {
		return 0, fmt.Errorf("new object %s: %w", key, err)
	}
	taken, err := f.Exists()
	if err != nil {
		return 0, fmt.Errorf("stat object %s: %w", key, err)
	}
	if taken {
		return 0, fmt.Errorf("%s: %w", key, ErrObjectExists)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, fmt.Errorf("write object %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close object %s: %w", key, err)
	}
	return n, nil
}

// Get opens key for reading. The caller closes the reader.
func (b *Bucket) Get(key string) (io.ReadCloser, int64, error) {
	f, err := b.file(key)
	if err != nil {
		return nil, 0, err
	}
	size, err := f.Size()
	if err != nil {
		return nil, 0, fmt.Errorf("stat object %s: %w", key, err)
	}
	return f, int64(size), nil
}

func (b *Bucket) Exists(key string) (bool, error) {
	f, err := b.loc.NewFile(key)
	if err != nil {
		return false, err
	}
	return f.Exists()
}

// Remove deletes key. A missing object is not an error.
func (b *Bucket) Remove(key string) error {
	f, err := b.file(key)
	if errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := f.Delete(); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Move renames src to dst inside the bucket. dst must not exist.
func (b *Bucket) Move(src, dst string) error {
	if src == dst {
		return nil
	}
	from, err := b.file(src)
	if err != nil {
		return err
	}
	to, err := b.loc.NewFile(dst)
	if err != nil {
		return fmt.Errorf("new object %s: %w", dst, err)
	}
	taken, err := to.Exists()
	if err != nil {
		return fmt.Errorf("stat object %s: %w", dst, err)
	}
	if taken {
		return fmt.Errorf("%s: %w", dst, ErrObjectExists)
	}
	if err := from.MoveToFile(to); err != nil {
		return fmt.Errorf("move object %s: %w", src, err)
	}
	return nil
}

func (b *Bucket) file(key string) (vfs.File, error) {
	f, err := b.loc.NewFile(key)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", key, err)
	}
	ok, err := f.Exists()
	if err != nil {
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return f, nil
}
