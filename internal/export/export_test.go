package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket, f.key, f.contentType = *in.Bucket, *in.Key, *in.ContentType
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func writeArchive(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "all_notes.zip")
	require.NoError(t, os.WriteFile(p, []byte("PK\x05\x06"), 0o644))
	return p
}

func TestS3_Publish(t *testing.T) {
	fake := &fakeS3{}
	s := &S3{Bucket: "study", Prefix: "exports/", client: fake,
		now: func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }}

	require.NoError(t, s.Publish(context.Background(), writeArchive(t)))
	require.Equal(t, "study", fake.bucket)
	require.Equal(t, "exports/2026/03/01/all_notes.zip", fake.key)
	require.Equal(t, "application/zip", fake.contentType)
	require.Equal(t, []byte("PK\x05\x06"), fake.body)
}

func TestS3_PublishMissingFile(t *testing.T) {
	s := &S3{Bucket: "b", client: &fakeS3{}, now: time.Now}
	require.Error(t, s.Publish(context.Background(), filepath.Join(t.TempDir(), "nope.zip")))
}

func TestMirror_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	failing := &S3{Bucket: "b", client: &fakeS3{err: errors.New("access denied")}, now: time.Now}

	Mirror(context.Background(), logger, writeArchive(t), Local{}, failing)
	require.Contains(t, buf.String(), "archive mirror failed")
	require.Contains(t, buf.String(), "access denied")
}
