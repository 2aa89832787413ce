package sav

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/cenkalti/backoff"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// OpenMode selects whether storage.Open resolves a source to read from
// or a sink to write to.
type OpenMode uint8

const (
	OpenRead OpenMode = iota
	OpenWrite
)

// OpenStorage resolves path to a readable or writable byte stream,
// dispatching on its scheme: gs:// via Google Cloud Storage, s3:// via
// an S3-compatible endpoint, "-" to stdin/stdout, and anything else to
// a local file. Opening a gs:// or s3:// object for reading is retried
// with a small bounded exponential backoff (grounded on
// bento-platform-gohan's cenkalti/backoff retry loop around its
// Elasticsearch connection); no other open is retried, including a local
// file open, since a missing local path will not become valid by waiting.
func OpenStorage(ctx context.Context, path string, mode OpenMode) (io.ReadWriteCloser, error) {
	switch {
	case path == "-":
		return openStdio(mode)
	case strings.HasPrefix(path, "gs://"):
		return openGCS(ctx, path, mode)
	case strings.HasPrefix(path, "s3://"):
		return openS3(ctx, path, mode)
	default:
		return openLocal(path, mode)
	}
}

// openStdio returns os.Stdout for writing and os.Stdin for reading; both
// are *os.File and already satisfy io.ReadWriteCloser, so no adapter is
// involved, and the caller's deferred Close closes the stdio handle.
func openStdio(mode OpenMode) (io.ReadWriteCloser, error) {
	if mode == OpenWrite {
		return os.Stdout, nil
	}
	return os.Stdin, nil
}

func openLocal(path string, mode OpenMode) (io.ReadWriteCloser, error) {
	if mode == OpenWrite {
		f, err := os.Create(path)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return f, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return f, nil
}

// withRetry wraps a network-backed open in a bounded exponential
// backoff, resetting the backoff on the first attempt the way
// bento-platform-gohan's RetryBackoff callback does.
func withRetry(open func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(open, b)
}

func splitBucketKey(path, scheme string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(path, scheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("sav: malformed %s path %q", scheme, path)
	}
	return parts[0], parts[1], nil
}

type gcsObjectReadWriteCloser struct {
	io.ReadCloser
	io.WriteCloser
}

func (g *gcsObjectReadWriteCloser) Read(p []byte) (int, error) {
	if g.ReadCloser == nil {
		return 0, fmt.Errorf("sav: gcs object not opened for reading")
	}
	return g.ReadCloser.Read(p)
}

func (g *gcsObjectReadWriteCloser) Write(p []byte) (int, error) {
	if g.WriteCloser == nil {
		return 0, fmt.Errorf("sav: gcs object not opened for writing")
	}
	return g.WriteCloser.Write(p)
}

func (g *gcsObjectReadWriteCloser) Close() error {
	if g.ReadCloser != nil {
		return g.ReadCloser.Close()
	}
	if g.WriteCloser != nil {
		return g.WriteCloser.Close()
	}
	return nil
}

func openGCS(ctx context.Context, path string, mode OpenMode) (io.ReadWriteCloser, error) {
	bucket, key, err := splitBucketKey(path, "gs://")
	if err != nil {
		return nil, pfx.Err(err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	obj := client.Bucket(bucket).Object(key)

	result := &gcsObjectReadWriteCloser{}
	err = withRetry(func() error {
		if mode == OpenWrite {
			result.WriteCloser = obj.NewWriter(ctx)
			return nil
		}
		r, rerr := obj.NewReader(ctx)
		if rerr != nil {
			return rerr
		}
		result.ReadCloser = r
		return nil
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	return result, nil
}

type minioObjectReadWriteCloser struct {
	io.ReadCloser
	io.WriteCloser
}

func (m *minioObjectReadWriteCloser) Read(p []byte) (int, error) {
	if m.ReadCloser == nil {
		return 0, fmt.Errorf("sav: s3 object not opened for reading")
	}
	return m.ReadCloser.Read(p)
}

func (m *minioObjectReadWriteCloser) Write(p []byte) (int, error) {
	if m.WriteCloser == nil {
		return 0, fmt.Errorf("sav: s3 object not opened for writing")
	}
	return m.WriteCloser.Write(p)
}

func (m *minioObjectReadWriteCloser) Close() error {
	if m.ReadCloser != nil {
		return m.ReadCloser.Close()
	}
	if m.WriteCloser != nil {
		return m.WriteCloser.Close()
	}
	return nil
}

func openS3(ctx context.Context, path string, mode OpenMode) (io.ReadWriteCloser, error) {
	bucket, key, err := splitBucketKey(path, "s3://")
	if err != nil {
		return nil, pfx.Err(err)
	}

	endpoint := envOrDefault("AWS_S3_ENDPOINT", "s3.amazonaws.com")
	useSSL := envOrDefault("AWS_S3_USE_SSL", "true") != "false"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewEnvAWS(),
		Secure: useSSL,
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	if mode == OpenWrite {
		pr, pw := io.Pipe()
		go func() {
			_, err := client.PutObject(ctx, bucket, key, pr, -1, minio.PutObjectOptions{})
			pr.CloseWithError(err)
		}()
		return &minioObjectReadWriteCloser{WriteCloser: pw}, nil
	}

	var obj *minio.Object
	err = withRetry(func() error {
		o, oerr := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
		if oerr != nil {
			return oerr
		}
		obj = o
		return nil
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &minioObjectReadWriteCloser{ReadCloser: obj}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
