package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarKey(t *testing.T) {
	userId := uuid.New()
	a := AvatarKey(userId, ".png")
	b := AvatarKey(userId, ".png")

	assert.True(t, strings.HasPrefix(a, "avatars/"+userId.String()+"/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
}

func TestLocalStorage_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	path, err := s.Save(context.Background(), "avatars/u/pic.png", []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/u/pic.png", path)

	data, err := os.ReadFile(filepath.Join(dir, "avatars", "u", "pic.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))
}

func TestLocalStorage_KeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "root"), "/uploads")
	require.NoError(t, err)

	path, err := s.Save(context.Background(), "../../evil.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/evil.png", path)

	_, err = os.Stat(filepath.Join(dir, "root", "evil.png"))
	assert.NoError(t, err)
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_Save(t *testing.T) {
	fake := &fakeS3{}
	s := newS3Storage(fake, S3Config{Bucket: "avatars", Endpoint: "http://localhost:9000/"})

	url, err := s.Save(context.Background(), "/avatars/u/pic.png", []byte("img"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/avatars/avatars/u/pic.png", url)
	assert.Equal(t, "avatars", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "avatars/u/pic.png", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, "img", string(fake.body))
}

func TestS3Storage_PublicURLOverride(t *testing.T) {
	s := newS3Storage(&fakeS3{}, S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"})

	url, err := s.Save(context.Background(), "k.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k.png", url)
}

func TestS3Storage_UploadError(t *testing.T) {
	s := newS3Storage(&fakeS3{err: errors.New("boom")}, S3Config{Bucket: "b"})

	_, err := s.Save(context.Background(), "k.png", []byte("x"), "image/png")
	assert.ErrorContains(t, err, "boom")
}
