package deck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrResourceNotFound is returned when a source has no resource by that name
var ErrResourceNotFound = errors.New("resource not found")

// Source fetches static JSON resources by slash-separated name
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Location describes where resources come from, for messages
	Location() string
}

// NewSource returns an HTTP source for http(s) URLs and a directory source otherwise.
// A zero timeout leaves HTTP fetches unbounded.
func NewSource(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &HTTPSource{
			BaseURL: strings.TrimRight(location, "/"),
			Client:  &http.Client{Timeout: timeout},
		}
	}
	return &DirSource{Root: location}
}

// DirSource reads resources from a local directory
type DirSource struct {
	Root string
}

// Location returns the root directory
func (s *DirSource) Location() string { return s.Root }

// Fetch reads name relative to the root
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean != name {
		return nil, fmt.Errorf("invalid resource name: %q", name)
	}

	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// HTTPSource fetches resources below a base URL
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// Location returns the base URL
func (s *HTTPSource) Location() string { return s.BaseURL }

// Fetch performs a GET for BaseURL/name
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.JoinPath(s.BaseURL, name)
	if err != nil {
		return nil, fmt.Errorf("invalid resource name %q: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, u)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
