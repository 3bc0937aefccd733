package render

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/webp"
)

// Fetcher loads the images a page draws.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// maxImageBytes bounds a single downloaded image.
const maxImageBytes = 10 << 20

// HTTPFetcher downloads and decodes images over HTTP and caches decoded
// images by URL. Failures are not cached.
type HTTPFetcher struct {
	mu        sync.Mutex
	cache     map[string]image.Image
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher. A nil client gets a 10s timeout.
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{
		cache:     make(map[string]image.Image),
		client:    client,
		userAgent: userAgent,
	}
}

// Fetch returns the decoded image at url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	f.mu.Lock()
	if img, ok := f.cache[url]; ok {
		f.mu.Unlock()
		return img, nil
	}
	f.mu.Unlock()

	img, err := f.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cache[url] = img
	f.mu.Unlock()

	return img, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create image request")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "image request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("image request failed: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %s", url)
	}

	return img, nil
}
