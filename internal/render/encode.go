package render

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/jfmyers9/chartfm/internal/chart"
	"github.com/jfmyers9/chartfm/internal/layout"
)

// Encoding is an export image format.
type Encoding string

const (
	EncodingPNG  Encoding = "png"
	EncodingJPEG Encoding = "jpeg"

	DefaultJPEGQuality = 90
)

// ParseEncoding accepts png, jpeg and jpg.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "png":
		return EncodingPNG, nil
	case "jpeg", "jpg":
		return EncodingJPEG, nil
	default:
		return "", errors.Newf("unsupported image encoding %q", s)
	}
}

// Ext returns the file extension without a dot.
func (e Encoding) Ext() string {
	if e == EncodingJPEG {
		return "jpg"
	}
	return "png"
}

// ContentType returns the MIME type.
func (e Encoding) ContentType() string {
	if e == EncodingJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, enc Encoding, quality int) error {
	switch enc {
	case EncodingJPEG:
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		return errors.Wrap(jpeg.Encode(w, img, &jpeg.Options{Quality: quality}), "failed to encode jpeg")
	default:
		return errors.Wrap(png.Encode(w, img), "failed to encode png")
	}
}

// Filename names an export: username_type_period.ext.
func Filename(req chart.Request, enc Encoding) string {
	return req.Username + "_" + string(req.Type) + "_" + string(req.Period) + "." + enc.Ext()
}

// Export rasterizes page and encodes it.
func (r *Rasterizer) Export(ctx context.Context, page *layout.Page, enc Encoding, quality int) ([]byte, error) {
	img, err := r.Rasterize(ctx, page)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, enc, quality); err != nil {
		return nil, err
	}

	r.logger.Debug().
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Int("bytes", buf.Len()).
		Str("encoding", string(enc)).
		Msg("Exported page")

	return buf.Bytes(), nil
}

// Capture produces an export once and reuses it. Concurrent callers wait
// for the first to finish; a failed attempt is not cached.
type Capture struct {
	mu      sync.Mutex
	produce func(ctx context.Context) ([]byte, error)
	data    []byte
}

// NewCapture wraps produce.
func NewCapture(produce func(ctx context.Context) ([]byte, error)) *Capture {
	return &Capture{produce: produce}
}

// NewPageCapture captures page with r.
func NewPageCapture(r *Rasterizer, page *layout.Page, enc Encoding, quality int) *Capture {
	return NewCapture(func(ctx context.Context) ([]byte, error) {
		return r.Export(ctx, page, enc, quality)
	})
}

// Bytes returns the export, producing it on first use.
func (c *Capture) Bytes(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil {
		return c.data, nil
	}

	data, err := c.produce(ctx)
	if err != nil {
		return nil, err
	}
	c.data = data
	return data, nil
}

// Ready reports whether the export has been produced.
func (c *Capture) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data != nil
}
