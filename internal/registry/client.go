// Package registry talks to the npm registry.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

// DefaultURL is the public npm registry.
const DefaultURL = "https://registry.npmjs.org"

// Options configures a registry client.
type Options struct {
	BaseURL string
	Token   string
	Retries int
	Timeout time.Duration
}

// call is a single, possibly in-flight, package lookup shared by all
// callers asking for the same key during a session.
type call struct {
	done chan struct{}
	pkg  *Package
	err  error
}

// Client fetches package documents and remembers them for the lifetime of
// the client.
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client

	mu    sync.Mutex
	calls map[string]*call
}

// NewHTTPClient returns a retrying HTTP client that logs through zerolog.
func NewHTTPClient(retries int, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil
	client.HTTPClient.Timeout = timeout
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		log.Trace().Str("url", req.URL.String()).Int("attempt", attempt).Msg("HTTP request")
	}
	return client
}

// NewClient creates a registry client.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   opts.Token,
		http:    NewHTTPClient(opts.Retries, timeout),
		calls:   make(map[string]*call),
	}
}

// HTTP exposes the underlying retrying client for other lookups made
// during the session.
func (c *Client) HTTP() *retryablehttp.Client {
	return c.http
}

// PackageURL returns the document URL of a package. Scoped names keep
// their "@" but have the slash escaped.
func (c *Client) PackageURL(name string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.Replace(name, "/", "%2f", 1))
}

// Package returns the registry document of name. Concurrent and repeated
// lookups of the same name share one request.
func (c *Client) Package(ctx context.Context, name string) (*Package, error) {
	c.mu.Lock()
	if existing, ok := c.calls[name]; ok {
		c.mu.Unlock()
		select {
		case <-existing.done:
			return existing.pkg, existing.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	current := &call{done: make(chan struct{})}
	c.calls[name] = current
	c.mu.Unlock()

	current.pkg, current.err = c.fetchPackage(ctx, name)
	close(current.done)
	return current.pkg, current.err
}

func (c *Client) fetchPackage(ctx context.Context, name string) (*Package, error) {
	url := c.PackageURL(name)
	log.Debug().Str("module", name).Str("url", url).Msg("Fetching package document")

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var pkg Package
	if err := json.Unmarshal(body, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package document for %s: %w", name, err)
	}
	if pkg.Name == "" {
		pkg.Name = name
	}
	return &pkg, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if c.token != "" && c.withinRegistry(url) {
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	response, err := c.http.Do(request)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: response.StatusCode}
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}

// withinRegistry reports whether rawURL points below the registry base URL
// on the same scheme and host.
func (c *Client) withinRegistry(rawURL string) bool {
	base, err := neturl.Parse(c.baseURL)
	if err != nil {
		return false
	}
	target, err := neturl.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(target.Scheme, base.Scheme) || !strings.EqualFold(target.Host, base.Host) {
		return false
	}
	return target.Path == base.Path || strings.HasPrefix(target.Path, strings.TrimSuffix(base.Path, "/")+"/")
}

// Exists reports whether url answers a GET request with a 2xx status.
// Any failure counts as absent.
func (c *Client) Exists(ctx context.Context, url string) bool {
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	response, err := c.http.Do(request)
	if err != nil {
		log.Trace().Err(err).Str("url", url).Msg("Existence check failed")
		return false
	}
	defer response.Body.Close()
	io.Copy(io.Discard, response.Body)
	return response.StatusCode >= 200 && response.StatusCode < 300
}

// Ping checks that the registry answers its ping endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, c.baseURL+"/-/ping")
	return err
}
