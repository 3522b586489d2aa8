package widget

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

//go:embed assets/default.html
var defaultHTML string

// maxAssetSize bounds how much of a fetched asset is read.
const maxAssetSize = 10 * 1024 * 1024

// Source produces the raw widget HTML.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	String() string
}

// FileSource reads the widget from a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read widget %s: %w", s.Path, err)
	}
	return string(data), nil
}

func (s FileSource) String() string { return "file:" + s.Path }

// HTTPSource fetches the widget from BaseURL+Path.
type HTTPSource struct {
	BaseURL string
	Path    string
	Client  *http.Client
}

// NewHTTPSource returns an HTTPSource with a bounded client timeout.
func NewHTTPSource(baseURL, path string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Path:    path,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPSource) URL() string {
	path := s.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.BaseURL + path
}

func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(), nil)
	if err != nil {
		return "", fmt.Errorf("build widget request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch widget %s: %w", s.URL(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch widget %s: unexpected status %d", s.URL(), resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return "", fmt.Errorf("read widget body: %w", err)
	}
	return string(body), nil
}

func (s *HTTPSource) String() string { return s.URL() }

// EmbeddedSource serves the default widget compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Fetch(context.Context) (string, error) { return defaultHTML, nil }

func (EmbeddedSource) String() string { return "embedded:default.html" }

// DefaultHTML returns the compiled-in widget asset.
func DefaultHTML() string { return defaultHTML }

// SelectSource picks the widget source: a local file wins over a base URL,
// and the embedded asset is used when neither is configured.
func SelectSource(file, baseURL, path string) Source {
	switch {
	case file != "":
		return FileSource{Path: file}
	case baseURL != "":
		return NewHTTPSource(baseURL, path)
	default:
		return EmbeddedSource{}
	}
}
