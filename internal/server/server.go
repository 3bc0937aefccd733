// Package server serves the chart form, chart pages and image exports over
// HTTP.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/chartfm/internal/chart"
	"github.com/jfmyers9/chartfm/internal/upstream"
	"github.com/jfmyers9/chartfm/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

const shutdownTimeout = 10 * time.Second

// Loader loads chart views.
type Loader interface {
	Load(ctx context.Context, req chart.Request) (*view.View, error)
}

// History remembers the most recently submitted request.
type History interface {
	LastRequest(ctx context.Context) (chart.Request, bool)
	SaveLastRequest(ctx context.Context, req chart.Request) error
}

// Config configures a Server.
type Config struct {
	Addr          string
	RedirectDelay time.Duration
	ViewTTL       time.Duration
	TableLimit    int
}

// Server is the HTTP front end.
type Server struct {
	cfg      Config
	loader   Loader
	history  History
	source   upstream.Source
	registry *Registry
	engine   *gin.Engine
	logger   zerolog.Logger
}

// New creates a Server and registers its routes.
func New(cfg Config, loader Loader, history History, source upstream.Source, logger zerolog.Logger) (*Server, error) {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = view.RedirectDelay
	}
	if cfg.ViewTTL <= 0 {
		cfg.ViewTTL = 30 * time.Minute
	}
	if cfg.TableLimit <= 0 {
		cfg.TableLimit = 16
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	s := &Server{
		cfg:      cfg,
		loader:   loader,
		history:  history,
		source:   source,
		registry: NewRegistry(cfg.ViewTTL),
		logger:   logger.With().Str("component", "server").Logger(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(s.logger), gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.showForm)
	r.POST("/", s.submitForm)
	r.GET("/chart", s.showChart(chart.ModeTable))
	r.GET("/grid", s.showChart(chart.ModeGrid))
	r.GET("/views/:id/image", s.downloadImage)

	api := r.Group("/api")
	api.GET("/user", s.apiUser)
	api.GET("/chart", s.apiChart)

	s.engine = r
	return s, nil
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Registry returns the loaded view registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}
	return nil
}

func (s *Server) sweep(ctx context.Context) {
	interval := s.cfg.ViewTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.registry.Sweep(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("Swept expired views")
			}
		}
	}
}

// formValues is the form as displayed.
type formValues struct {
	Username string
	Type     string
	Period   string
	Format   string
}

func (s *Server) renderForm(c *gin.Context, status int, values formValues, fieldErrors map[string]string) {
	c.HTML(status, "form.html", gin.H{
		"Title":   "Last.fm Charts",
		"Form":    values,
		"Errors":  fieldErrors,
		"Types":   chart.Types,
		"Periods": chart.Periods,
		"Formats": chart.Formats,
	})
}

func (s *Server) showForm(c *gin.Context) {
	values := formValues{
		Type:   string(chart.TypeAlbums),
		Period: string(chart.Period7Day),
	}
	if last, ok := s.history.LastRequest(c.Request.Context()); ok {
		values = formValuesFor(last)
	}
	s.renderForm(c, http.StatusOK, values, nil)
}

func (s *Server) submitForm(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}
	posted := c.Request.PostForm

	mode := chart.ModeTable
	if posted.Get("format") != "" {
		mode = chart.ModeGrid
	}

	req, err := chart.ParseRequest(posted, mode)
	if err != nil {
		var verr *chart.ValidationError
		if errors.As(err, &verr) {
			s.renderForm(c, http.StatusUnprocessableEntity, formValues{
				Username: posted.Get("username"),
				Type:     posted.Get("type"),
				Period:   posted.Get("period"),
				Format:   posted.Get("format"),
			}, verr.Fields)
			return
		}
		s.logger.Error().Err(err).Msg("Failed to parse form")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.history.SaveLastRequest(c.Request.Context(), req); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save last request")
	}

	c.Redirect(http.StatusSeeOther, chartPath(req))
}

func (s *Server) showChart(mode chart.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		if query.Get("username") == "" {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}

		req, err := chart.ParseRequest(query, mode)
		if err != nil {
			s.renderError(c, http.StatusBadRequest, err)
			return
		}

		v, err := s.loader.Load(c.Request.Context(), req)
		if err != nil {
			s.renderError(c, errorStatus(err), err)
			return
		}

		id := s.registry.Add(v)
		if mode == chart.ModeGrid {
			go s.warm(id, v)
		}

		data := gin.H{
			"Title":    v.Page.Title,
			"Page":     v.Page,
			"ViewID":   id,
			"Filename": v.Filename(),
		}
		if req.Format != nil {
			data["Cols"] = req.Format.Cols
		}
		c.HTML(http.StatusOK, "chart.html", data)
	}
}

// warm produces a grid export ahead of the first download.
func (s *Server) warm(id string, v *view.View) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := v.Export(ctx); err != nil {
		s.logger.Debug().Err(err).Str("view", id).Msg("Failed to warm export")
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	delay := int(s.cfg.RedirectDelay.Round(time.Second) / time.Second)
	refresh := strconv.Itoa(delay) + "; url=/"

	c.Header("Refresh", refresh)
	c.HTML(status, "error.html", gin.H{
		"Title":        "Last.fm Charts",
		"Message":      chart.Message(err),
		"Refresh":      refresh,
		"DelaySeconds": delay,
	})
}

func (s *Server) downloadImage(c *gin.Context) {
	v, err := s.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "view not found"})
		return
	}

	data, err := v.Export(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Str("view", c.Param("id")).Msg("Failed to export view")
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+v.Filename()+`"`)
	c.Data(http.StatusOK, v.ContentType(), data)
}

func (s *Server) apiUser(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "username is required"})
		return
	}

	user, err := s.source.GetUser(c.Request.Context(), username)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) apiChart(c *gin.Context) {
	query := c.Request.URL.Query()
	mode := chart.ModeTable
	if query.Get("format") != "" {
		mode = chart.ModeGrid
	}

	req, err := chart.ParseRequest(query, mode)
	if err != nil {
		s.apiError(c, err)
		return
	}

	limit := req.Limit(s.cfg.TableLimit)
	if raw := query.Get("limit"); raw != "" && req.Format == nil {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	items, err := s.source.GetChart(c.Request.Context(), req, limit)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "items": items})
}

func (s *Server) apiError(c *gin.Context, err error) {
	status := errorStatus(err)
	var verr *chart.ValidationError
	if errors.As(err, &verr) {
		c.JSON(status, gin.H{"code": status, "message": "invalid request", "fields": verr.Fields})
		return
	}
	c.JSON(status, gin.H{"code": status, "message": chart.Message(err)})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, chart.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, chart.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func chartPath(req chart.Request) string {
	path := "/chart"
	if req.Mode() == chart.ModeGrid {
		path = "/grid"
	}
	return path + "?" + req.Values().Encode()
}

func formValuesFor(req chart.Request) formValues {
	values := formValues{
		Username: req.Username,
		Type:     string(req.Type),
		Period:   string(req.Period.Canonical()),
	}
	if req.Format != nil {
		values.Format = req.Format.String()
	}
	return values
}

var templateFuncs = template.FuncMap{
	"deltaClass": func(d chart.Delta) string {
		switch {
		case d.Status == chart.StatusNew:
			return "new"
		case d.Status == chart.StatusChanged && d.Change > 0:
			return "up"
		case d.Status == chart.StatusChanged:
			return "down"
		default:
			return "same"
		}
	},
}
