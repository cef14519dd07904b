package objectstore

import (
	"context"
	"strings"
	"testing"

	cfgpkg "civic-project-system/config"

	"github.com/stretchr/testify/require"
)

func TestLocalLifecycle(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(t.TempDir(), "http://localhost/uploads", "media")

	blob, err := l.Upload(ctx, "IMG_20240105_1200.JPG", "image/jpeg", 5, strings.NewReader("hello"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(blob.Key, "media/"))
	require.True(t, strings.HasSuffix(blob.Key, ".jpg"))
	require.Equal(t, "http://localhost/uploads/"+blob.Key, blob.URL)
	require.Equal(t, int64(5), blob.Size)

	obj, err := l.Stat(ctx, blob.Key)
	require.NoError(t, err)
	require.Equal(t, int64(5), obj.Size)

	objects, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	require.Equal(t, blob.Key, objects[0].Key)

	require.NoError(t, l.Delete(ctx, blob.Key))
	// 幂等
	require.NoError(t, l.Delete(ctx, blob.Key))

	_, err = l.Stat(ctx, blob.Key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalListEmptyDir(t *testing.T) {
	l := NewLocal(t.TempDir(), "http://localhost", "media")
	objects, err := l.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, objects)
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(t.TempDir(), "http://localhost", "media")
	require.Error(t, l.Delete(ctx, "../etc/passwd"))
	require.Error(t, l.Delete(ctx, "other/file.jpg"))
	_, err := l.Stat(ctx, "media/../../x")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = l.Presign(ctx, "a.jpg", "image/jpeg", 0)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestKeys(t *testing.T) {
	require.True(t, strings.HasPrefix(newKey("/media/", "a.PNG"), "media/"))
	require.False(t, strings.HasPrefix(newKey("", "a.png"), "/"))
	require.NoError(t, inPrefix("media", "media/x.png"))
	require.Error(t, inPrefix("media", ""))
}

func TestS3URL(t *testing.T) {
	s := &S3{cfg: cfgpkg.S3{Bucket: "b", Region: "us-east-1"}}
	require.Equal(t, "https://b.s3.us-east-1.amazonaws.com/media/k.png", s.URL("media/k.png"))

	s.cfg.Endpoint = "http://minio:9000"
	s.cfg.UsePathStyle = true
	require.Equal(t, "http://minio:9000/b/media/k.png", s.URL("media/k.png"))

	s.cfg.BaseURL = "https://cdn.example.com/"
	s.cfg.UsePathStyle = false
	require.Equal(t, "https://cdn.example.com/media/k.png", s.URL("media/k.png"))
}
