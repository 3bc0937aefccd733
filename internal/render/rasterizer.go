// Package render draws laid-out chart pages to images and text.
package render

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"

	"github.com/jfmyers9/chartfm/internal/layout"
)

const (
	// DefaultScale upsamples exports for sharpness.
	DefaultScale = 2.33

	defaultWorkers = 8
)

// Rasterizer draws a layout.Page onto an RGBA canvas.
type Rasterizer struct {
	fetcher Fetcher
	fonts   *fonts
	scale   float64
	workers int
	logger  zerolog.Logger
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithScale sets the export scale factor.
func WithScale(scale float64) Option {
	return func(r *Rasterizer) {
		if scale > 0 {
			r.scale = scale
		}
	}
}

// WithWorkers bounds concurrent image downloads.
func WithWorkers(n int) Option {
	return func(r *Rasterizer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a Rasterizer that loads images through fetcher.
func New(fetcher Fetcher, logger zerolog.Logger, opts ...Option) (*Rasterizer, error) {
	f, err := loadFonts()
	if err != nil {
		return nil, err
	}

	r := &Rasterizer{
		fetcher: fetcher,
		fonts:   f,
		scale:   DefaultScale,
		workers: defaultWorkers,
		logger:  logger.With().Str("component", "render").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Scale returns the configured scale factor.
func (r *Rasterizer) Scale() float64 {
	return r.scale
}

// Size returns the canvas size for page.
func (r *Rasterizer) Size(page *layout.Page) (int, int) {
	return int(math.Ceil(float64(page.Width) * r.scale)), int(math.Ceil(float64(page.Height) * r.scale))
}

// Rasterize draws every non-ignored element of page. It waits for all of
// the page's images before drawing; images that fail to load are drawn as
// placeholders.
func (r *Rasterizer) Rasterize(ctx context.Context, page *layout.Page) (*image.RGBA, error) {
	if page == nil {
		return nil, errors.New("nil page")
	}

	images := r.loadImages(ctx, page.Images())
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "rasterize cancelled")
	}

	w, h := r.Size(page)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(page.Background), image.Point{}, xdraw.Src)

	faces := r.fonts.newCache()
	defer faces.close()

	for _, el := range page.Visible() {
		rect := r.scaled(el.Rect)
		switch el.Kind {
		case layout.KindBox:
			fill(dst, rect, el.Fill, el.Round)
		case layout.KindImage:
			drawImage(dst, rect, images[el.Src], el.Round)
		case layout.KindText:
			face := faces.face(el.Style.Size*r.scale, el.Style.Bold)
			drawText(dst, face, rect, el.Text, el.Style)
		}
	}

	return dst, nil
}

// loadImages fetches urls concurrently and returns the ones that loaded.
func (r *Rasterizer) loadImages(ctx context.Context, urls []string) map[string]image.Image {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		sem    = make(chan struct{}, r.workers)
		loaded = make(map[string]image.Image, len(urls))
	)

	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			img, err := r.fetcher.Fetch(ctx, url)
			if err != nil {
				r.logger.Warn().Err(err).Str("url", url).Msg("Failed to load image")
				return
			}

			mu.Lock()
			loaded[url] = img
			mu.Unlock()
		}(url)
	}
	wg.Wait()

	r.logger.Debug().Int("requested", len(urls)).Int("loaded", len(loaded)).Msg("Loaded images")
	return loaded
}

func (r *Rasterizer) scaled(rect layout.Rect) image.Rectangle {
	s := r.scale
	return image.Rect(
		int(math.Round(float64(rect.X)*s)),
		int(math.Round(float64(rect.Y)*s)),
		int(math.Round(float64(rect.X+rect.W)*s)),
		int(math.Round(float64(rect.Y+rect.H)*s)),
	)
}

func fill(dst *image.RGBA, rect image.Rectangle, c color.RGBA, round bool) {
	if c.A == 0 {
		return
	}
	src := image.NewUniform(c)
	if round {
		xdraw.DrawMask(dst, rect, src, image.Point{}, ellipse{rect}, rect.Min, xdraw.Over)
		return
	}
	xdraw.Draw(dst, rect, src, image.Point{}, xdraw.Over)
}

func drawImage(dst *image.RGBA, rect image.Rectangle, img image.Image, round bool) {
	if img == nil {
		fill(dst, rect, layout.ColorStripeOdd, round)
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	if round {
		xdraw.DrawMask(dst, rect, scaled, image.Point{}, ellipse{rect}, rect.Min, xdraw.Over)
		return
	}
	xdraw.Draw(dst, rect, scaled, image.Point{}, xdraw.Over)
}

// ellipse is an alpha mask covering the ellipse inscribed in r.
type ellipse struct {
	r image.Rectangle
}

func (e ellipse) ColorModel() color.Model { return color.AlphaModel }

func (e ellipse) Bounds() image.Rectangle { return e.r }

func (e ellipse) At(x, y int) color.Color {
	rx := float64(e.r.Dx()) / 2
	ry := float64(e.r.Dy()) / 2
	if rx == 0 || ry == 0 {
		return color.Alpha{}
	}
	dx := (float64(x) + 0.5 - float64(e.r.Min.X) - rx) / rx
	dy := (float64(y) + 0.5 - float64(e.r.Min.Y) - ry) / ry
	if dx*dx+dy*dy <= 1 {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
