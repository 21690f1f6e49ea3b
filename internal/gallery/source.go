package gallery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// maxManifestBytes bounds how much of a remote manifest is read.
const maxManifestBytes = 4 << 20

// Source fetches the raw manifest document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// LoadManifest fetches and parses the manifest. Every failure wraps ErrManifestUnavailable.
func LoadManifest(ctx context.Context, src Source) (*Manifest, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrManifestUnavailable)
	}
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrManifestUnavailable, src, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrManifestUnavailable, src, err)
	}
	return m, nil
}

// ParseSource picks a Source for ref: gs://bucket/object, http(s)://..., or a local path.
func ParseSource(ref string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("manifest source is empty")
	}
	switch {
	case strings.HasPrefix(ref, "gs://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("parse manifest source %q: %w", ref, err)
		}
		object := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || object == "" {
			return nil, fmt.Errorf("manifest source %q must name a bucket and an object", ref)
		}
		return &GCSSource{Bucket: u.Host, Object: object}, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if _, err := url.Parse(ref); err != nil {
			return nil, fmt.Errorf("parse manifest source %q: %w", ref, err)
		}
		return &HTTPSource{URL: ref}, nil
	default:
		return FileSource(ref), nil
	}
}

// FileSource reads the manifest from the local filesystem.
type FileSource string

// Fetch implements Source.
func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	return os.ReadFile(string(s))
}

func (s FileSource) String() string { return string(s) }

// HTTPSource downloads the manifest the way a browser would fetch the static asset.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
}

func (s *HTTPSource) String() string { return s.URL }

// GCSSource reads the manifest from a Cloud Storage object.
type GCSSource struct {
	Bucket string
	Object string
	Client *storage.Client
}

// Fetch implements Source. Without a Client a short-lived one is created from ambient credentials.
func (s *GCSSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		c, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		defer c.Close()
		client = c
	}
	rc, err := client.Bucket(s.Bucket).Object(s.Object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxManifestBytes))
}

func (s *GCSSource) String() string { return "gs://" + s.Bucket + "/" + s.Object }
