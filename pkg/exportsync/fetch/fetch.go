// Package fetch wraps the upstream HTTP endpoints. Transient failures are
// retried transparently with bounded exponential backoff; callers only see
// terminal outcomes.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/ulikunitz/xz/lzma"

	"github.com/tennoforge/exportsync/pkg/exportsync/logging"
)

// Upstream paths, relative to the origin and content hosts.
const (
	indexPath    = "/PublicExport/index_en.txt.lzma"
	manifestPath = "/PublicExport/Manifest"
	exportPath   = "/PublicExport"

	proxyTokenHeader = "X-Proxy-Token"
)

// StatusError reports a non-2xx terminal response after retries were
// exhausted.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Options configures a Client.
type Options struct {
	// OriginURL hosts the compressed export index.
	OriginURL string

	// ContentURL hosts manifests and textures.
	ContentURL string

	// ProxyToken, when set, is sent as the X-Proxy-Token header on index
	// requests.
	ProxyToken string

	// RetryMax caps transient retries per request. Defaults to 3.
	RetryMax int
}

// Client fetches the export index and individual resources.
type Client struct {
	http       *http.Client
	originURL  string
	contentURL string
	proxyToken string
	log        *log.Logger
}

// New builds a Client with retrying transport.
func New(opts Options) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	if rc.RetryMax <= 0 {
		rc.RetryMax = 3
	}
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = nil

	return &Client{
		http:       rc.StandardClient(),
		originURL:  opts.OriginURL,
		contentURL: opts.ContentURL,
		proxyToken: opts.ProxyToken,
		log:        logging.Get("fetch"),
	}
}

// Index downloads and decompresses the export index, returning its text.
// Each line of the result is one `name!hash` descriptor.
func (c *Client) Index(ctx context.Context) (string, error) {
	url := c.originURL + indexPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building index request: %w", err)
	}
	if c.proxyToken != "" {
		req.Header.Set(proxyTokenHeader, c.proxyToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching export index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	reader, err := lzma.NewReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("opening lzma stream: %w", err)
	}

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decompressing export index: %w", err)
	}

	c.log.Debug("fetched export index", "bytes", len(decompressed))
	return string(decompressed), nil
}

// Get downloads url and returns the response body. Non-2xx responses after
// exhausted retries surface as a StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// ManifestURL returns the download URL for an export index line, which
// names the manifest resource together with its hash.
func (c *Client) ManifestURL(line string) string {
	return c.contentURL + manifestPath + "/" + line
}

// TextureURL returns the download URL for a manifest texture location.
// The location already begins with a slash.
func (c *Client) TextureURL(location string) string {
	return c.contentURL + exportPath + location
}
