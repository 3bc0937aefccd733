// Package view loads chart views: it reads the previous snapshot, fetches
// the user and chart concurrently, saves the new snapshot, computes deltas
// and lays out the page.
package view

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/chartfm/internal/chart"
	"github.com/jfmyers9/chartfm/internal/layout"
	"github.com/jfmyers9/chartfm/internal/render"
	"github.com/jfmyers9/chartfm/internal/upstream"
)

// RedirectDelay is how long an error is shown before returning to
// the request form.
const RedirectDelay = 3 * time.Second

// Snapshots is the snapshot storage a Service reads and writes.
type Snapshots interface {
	Load(ctx context.Context, key string) (chart.Snapshot, bool)
	Save(ctx context.Context, key string, items []chart.Item) error
}

// Config configures a Service.
type Config struct {
	TableLimit  int
	Encoding    render.Encoding
	JPEGQuality int
}

// Service loads views.
type Service struct {
	source     upstream.Source
	snapshots  Snapshots
	rasterizer *render.Rasterizer
	cfg        Config
	logger     zerolog.Logger
}

// NewService creates a Service.
func NewService(source upstream.Source, snapshots Snapshots, rasterizer *render.Rasterizer, cfg Config, logger zerolog.Logger) *Service {
	if cfg.TableLimit <= 0 {
		cfg.TableLimit = 16
	}
	if cfg.Encoding == "" {
		cfg.Encoding = render.EncodingPNG
	}
	return &Service{
		source:     source,
		snapshots:  snapshots,
		rasterizer: rasterizer,
		cfg:        cfg,
		logger:     logger.With().Str("component", "view").Logger(),
	}
}

// View is one loaded chart.
type View struct {
	Request  chart.Request
	User     chart.User
	Items    []chart.Item
	Previous chart.Snapshot
	Deltas   map[string]chart.Delta
	Page     *layout.Page
	LoadedAt time.Time

	encoding render.Encoding
	capture  *render.Capture
}

// Filename names the view's export.
func (v *View) Filename() string {
	return render.Filename(v.Request, v.encoding)
}

// ContentType is the MIME type of the view's export.
func (v *View) ContentType() string {
	return v.encoding.ContentType()
}

// Export returns the rendered image, producing it on first use.
func (v *View) Export(ctx context.Context) ([]byte, error) {
	if v.capture == nil {
		return nil, errors.New("view has no renderer")
	}
	return v.capture.Bytes(ctx)
}

// Exported reports whether the image has already been produced.
func (v *View) Exported() bool {
	return v.capture != nil && v.capture.Ready()
}

// Load runs the chart pipeline for req.
//
// The previous snapshot is read before the fetch so deltas compare against
// the state before this load. The new snapshot is saved whenever the chart
// fetch succeeds, even if the user fetch failed. When both fetches fail a
// not-found error wins over other upstream errors.
func (s *Service) Load(ctx context.Context, req chart.Request) (*View, error) {
	key := req.Key()
	previous, ok := s.snapshots.Load(ctx, key)
	if !ok {
		previous = nil
	}

	var (
		wg       sync.WaitGroup
		user     chart.User
		items    []chart.Item
		userErr  error
		chartErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		user, userErr = s.source.GetUser(ctx, req.Username)
	}()
	go func() {
		defer wg.Done()
		items, chartErr = s.source.GetChart(ctx, req, req.Limit(s.cfg.TableLimit))
	}()
	wg.Wait()

	if chartErr == nil {
		if err := s.snapshots.Save(ctx, key, items); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to save snapshot")
		}
	}

	if err := pickError(userErr, chartErr); err != nil {
		s.logger.Info().Err(err).Str("user", req.Username).Msg("Chart load failed")
		return nil, err
	}

	deltas := chart.ComputeDeltas(items, previous)
	page := layout.Build(layout.Input{
		Request: req,
		User:    user,
		Items:   items,
		Deltas:  deltas,
	})

	v := &View{
		Request:  req,
		User:     user,
		Items:    items,
		Previous: previous,
		Deltas:   deltas,
		Page:     page,
		LoadedAt: time.Now(),
		encoding: s.cfg.Encoding,
	}
	if s.rasterizer != nil {
		v.capture = render.NewPageCapture(s.rasterizer, page, s.cfg.Encoding, s.cfg.JPEGQuality)
	}

	s.logger.Debug().
		Str("key", key).
		Str("mode", string(req.Mode())).
		Int("items", len(items)).
		Bool("previous", previous != nil).
		Msg("Loaded view")

	return v, nil
}

func pickError(userErr, chartErr error) error {
	switch {
	case userErr == nil:
		return chartErr
	case chartErr == nil:
		return userErr
	case errors.Is(chartErr, chart.ErrNotFound) && !errors.Is(userErr, chart.ErrNotFound):
		return chartErr
	default:
		return userErr
	}
}
