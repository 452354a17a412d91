// Package feed opens the static JSON feeds the catalog is built from.
//
// A feed URI is one of:
//
//	https://host/path/category.json   fetched with net/http
//	s3://bucket/key.json              fetched from S3-compatible storage (MINIO_* env)
//	web/static/category.json          read from the local filesystem
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source yields the raw bytes of one feed.
type Source interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// Options configures how feed sources are built.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Open returns the Source for uri.
func Open(uri string, opts Options) (Source, error) {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: opts.Timeout}
		}
		return &HTTPSource{URL: uri, Client: client}, nil
	case strings.HasPrefix(uri, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 feed %q: want s3://bucket/key", uri)
		}
		client, err := NewS3ClientFromEnv()
		if err != nil {
			return nil, err
		}
		return &S3Source{Client: client, Bucket: bucket, Key: key}, nil
	case uri == "":
		return nil, fmt.Errorf("empty feed uri")
	default:
		return FileSource(strings.TrimPrefix(uri, "file://")), nil
	}
}

// HTTPSource fetches a feed with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", s.URL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: unexpected status %s", s.URL, resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string { return s.URL }

// FileSource reads a feed from disk.
type FileSource string

func (s FileSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(string(s))
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	return f, nil
}

func (s FileSource) String() string { return string(s) }

// S3Source reads a feed object from S3-compatible storage.
type S3Source struct {
	Client *minio.Client
	Bucket string
	Key    string
}

func (s *S3Source) Fetch(ctx context.Context) (io.ReadCloser, error) {
	obj, err := s.Client.GetObject(ctx, s.Bucket, s.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", s, err)
	}
	// GetObject is lazy; Stat surfaces missing objects before decoding starts.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("getting %s: %w", s, err)
	}
	return obj, nil
}

func (s *S3Source) String() string { return "s3://" + s.Bucket + "/" + s.Key }

// NewS3ClientFromEnv builds a MinIO client from MINIO_ENDPOINT,
// MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_USE_SSL.
func NewS3ClientFromEnv() (*minio.Client, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("s3 feed needs MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}
	return client, nil
}
