package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBucket(t *testing.T) *Bucket {
	t.Helper()
	b, err := Open("mem://" + uuid.NewString() + "/objects")
	require.NoError(t, err)
	return b
}

func read(t *testing.T, b *Bucket, key string) string {
	t.Helper()
	rc, size, err := b.Get(key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	return string(data)
}

func TestObjectKey(t *testing.T) {
	folder := "42"

	assert.Equal(t, "u1/root/a.txt", ObjectKey("u1", nil, "a.txt"))
	assert.Equal(t, "u1/f_42/report (1).pdf", ObjectKey("u1", &folder, "report (1).pdf"))
}

func TestBucket_PutGetRemove(t *testing.T) {
	b := newBucket(t)
	key := ObjectKey("u1", nil, "notes.txt")

	n, err := b.Put(key, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	ok, err := b.Exists(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", read(t, b, key))

	require.NoError(t, b.Remove(key))
	ok, err = b.Exists(key)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, b.Remove(key))
	_, _, err = b.Get(key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestBucket_Move(t *testing.T) {
	b := newBucket(t)
	_, err := b.Put("u1/root/a.txt", strings.NewReader("data"))
	require.NoError(t, err)

	require.NoError(t, b.Move("u1/root/a.txt", "u1/f_9/a.txt"))

	assert.Equal(t, "data", read(t, b, "u1/f_9/a.txt"))
	ok, err := b.Exists("u1/root/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, b.Move("u1/root/missing.txt", "x/y.txt"), ErrObjectNotFound)
}

func TestBucket_PutAndMoveNeverReplace(t *testing.T) {
	b := newBucket(t)
	_, err := b.Put("u1/root/a.txt", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = b.Put("u1/root/b.txt", strings.NewReader("other"))
	require.NoError(t, err)

	_, err = b.Put("u1/root/a.txt", strings.NewReader("second"))
	assert.ErrorIs(t, err, ErrObjectExists)
	assert.Equal(t, "first", read(t, b, "u1/root/a.txt"))

	err = b.Move("u1/root/b.txt", "u1/root/a.txt")
	assert.ErrorIs(t, err, ErrObjectExists)
	assert.Equal(t, "first", read(t, b, "u1/root/a.txt"))
	assert.Equal(t, "other", read(t, b, "u1/root/b.txt"))
}
