package tui

import (
	"context"
	"fmt"
	"image/color"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/chartfm/internal/chart"
	"github.com/jfmyers9/chartfm/internal/layout"
	"github.com/jfmyers9/chartfm/internal/view"
)

const (
	pageForm  = "form"
	pageChart = "chart"
	pageError = "error"

	tableFormatLabel = "Table"
)

// Loader loads chart views.
type Loader interface {
	Load(ctx context.Context, req chart.Request) (*view.View, error)
}

// History remembers the most recently submitted request.
type History interface {
	LastRequest(ctx context.Context) (chart.Request, bool)
	SaveLastRequest(ctx context.Context, req chart.Request) error
}

// Config holds TUI configuration options
type Config struct {
	RedirectDelay time.Duration // How long errors stay up before the form returns
	OutDir        string        // Where downloaded images are written
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RedirectDelay: view.RedirectDelay,
		OutDir:        ".",
	}
}

// App is the terminal front end: a request form and a chart page
type App struct {
	app   *tview.Application
	pages *tview.Pages

	form     *tview.Form
	username *tview.InputField
	types    *tview.DropDown
	periods  *tview.DropDown
	formats  *tview.DropDown

	header  *tview.TextView
	table   *tview.Table
	status  *tview.TextView
	message *tview.TextView

	loader  Loader
	history History
	config  Config
	logger  zerolog.Logger

	// mu guards current and loadSeq, which are read by export, reload and
	// redirect callbacks running off the UI goroutine.
	mu      sync.Mutex
	current *view.View
	loadSeq uint64

	// queueUpdate runs f on the UI goroutine
	queueUpdate func(f func())

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// New creates a TUI application
func New(loader Loader, history History, cfg Config, logger zerolog.Logger) *App {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = view.RedirectDelay
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}

	a := &App{
		app:     tview.NewApplication(),
		loader:  loader,
		history: history,
		config:  cfg,
		logger:  logger.With().Str("component", "tui").Logger(),
		ctx:     context.Background(),
	}
	a.queueUpdate = func(f func()) { a.app.QueueUpdateDraw(f) }
	a.setupUI()
	return a
}

// setupUI creates the pages
func (a *App) setupUI() {
	a.username = tview.NewInputField().
		SetLabel("Username ").
		SetFieldWidth(32)

	typeLabels := make([]string, len(chart.Types))
	for i, t := range chart.Types {
		typeLabels[i] = t.Label()
	}
	a.types = tview.NewDropDown().
		SetLabel("Type ").
		SetOptions(typeLabels, nil).
		SetCurrentOption(0)

	periodLabels := make([]string, len(chart.Periods))
	for i, p := range chart.Periods {
		periodLabels[i] = p.Label()
	}
	a.periods = tview.NewDropDown().
		SetLabel("Period ").
		SetOptions(periodLabels, nil).
		SetCurrentOption(0)

	formatLabels := []string{tableFormatLabel}
	for _, f := range chart.Formats {
		formatLabels = append(formatLabels, f.String())
	}
	a.formats = tview.NewDropDown().
		SetLabel("Format ").
		SetOptions(formatLabels, nil).
		SetCurrentOption(0)

	a.form = tview.NewForm().
		AddFormItem(a.username).
		AddFormItem(a.types).
		AddFormItem(a.periods).
		AddFormItem(a.formats).
		AddButton("Generate", a.submit).
		AddButton("Quit", func() { a.Stop() })
	a.form.SetBorder(true).
		SetTitle(" Last.fm Charts ").
		SetTitleAlign(tview.AlignLeft)

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	formPage := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.form, 0, 1, true).
		AddItem(a.status, 1, 1, false)

	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.header.SetBorder(true)

	a.table = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	a.table.SetBorder(true)
	a.table.SetInputCapture(a.handleChartKey)

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]d:download  r:reload  b:back  q:quit[-]")

	chartPage := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 5, 1, false).
		AddItem(a.table, 0, 1, true).
		AddItem(footer, 1, 1, false)

	a.message = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.message.SetBorder(true)

	a.pages = tview.NewPages().
		AddPage(pageForm, formPage, true, true).
		AddPage(pageChart, chartPage, true, false).
		AddPage(pageError, a.message, true, false)

	a.app.SetRoot(a.pages, true)
}

// handleChartKey processes keyboard input on the chart page
func (a *App) handleChartKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEscape {
		a.showForm()
		return nil
	}

	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case 'b', 'B':
		a.showForm()
		return nil
	case 'r', 'R':
		if v := a.currentView(); v != nil {
			a.load(v.Request)
		}
		return nil
	case 'd', 'D':
		if v := a.currentView(); v != nil {
			go a.download(v)
		}
		return nil
	}
	return event
}

// Run prefills the form and runs the application until it is stopped
func (a *App) Run(ctx context.Context) error {
	a.ctx, a.cancelFunc = context.WithCancel(ctx)

	if last, ok := a.history.LastRequest(a.ctx); ok {
		a.prefill(last)
	}

	go func() {
		<-a.ctx.Done()
		a.app.Stop()
	}()

	if err := a.app.Run(); err != nil {
		return errors.Wrap(err, "TUI error")
	}
	return nil
}

// Stop stops the application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// prefill sets the form fields from req
func (a *App) prefill(req chart.Request) {
	a.username.SetText(req.Username)
	for i, t := range chart.Types {
		if t == req.Type {
			a.types.SetCurrentOption(i)
		}
	}
	for i, p := range chart.Periods {
		if p == req.Period.Canonical() {
			a.periods.SetCurrentOption(i)
		}
	}
	a.formats.SetCurrentOption(0)
	if req.Format != nil {
		for i, f := range chart.Formats {
			if f == *req.Format {
				a.formats.SetCurrentOption(i + 1)
			}
		}
	}
}

// values reads the form fields
func (a *App) values() url.Values {
	v := url.Values{}
	v.Set("username", a.username.GetText())
	if i, _ := a.types.GetCurrentOption(); i >= 0 {
		v.Set("type", string(chart.Types[i]))
	}
	if i, _ := a.periods.GetCurrentOption(); i >= 0 {
		v.Set("period", string(chart.Periods[i]))
	}
	if i, label := a.formats.GetCurrentOption(); i > 0 {
		v.Set("format", label)
	}
	return v
}

// submit validates the form and loads the chart
func (a *App) submit() {
	values := a.values()
	mode := chart.ModeTable
	if values.Get("format") != "" {
		mode = chart.ModeGrid
	}

	req, err := chart.ParseRequest(values, mode)
	if err != nil {
		a.setStatus("[red]" + tview.Escape(chart.Message(err)) + "[-]")
		return
	}

	if err := a.history.SaveLastRequest(a.ctx, req); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to save last request")
	}
	a.load(req)
}

// load fetches req in the background and shows the result. Results of
// loads superseded by a later one are dropped.
func (a *App) load(req chart.Request) {
	a.setStatus("[yellow]Loading " + tview.Escape(req.Username) + "...[-]")

	a.mu.Lock()
	a.loadSeq++
	seq := a.loadSeq
	a.mu.Unlock()

	go func() {
		v, err := a.loader.Load(a.ctx, req)
		a.queueUpdate(func() {
			if !a.isLatest(seq) {
				a.logger.Debug().Str("username", req.Username).Msg("Dropping stale chart")
				return
			}
			if err != nil {
				a.showError(err)
				return
			}
			a.showView(v)
		})
	}()
}

// showView renders v on the chart page
func (a *App) showView(v *view.View) {
	a.mu.Lock()
	a.current = v
	a.mu.Unlock()

	a.setStatus("")
	a.header.SetText(headerText(v.Page))
	a.header.SetTitle(" " + v.Page.Title + " ")
	fillTable(a.table, v.Page)
	a.table.ScrollToBeginning()

	a.pages.SwitchToPage(pageChart)
	a.app.SetFocus(a.table)

	if v.Page.Mode == chart.ModeGrid {
		go a.download(v)
	}
}

// showError shows err and returns to the form after the redirect delay
func (a *App) showError(err error) {
	a.message.SetText("\n[red::b]" + tview.Escape(chart.Message(err)) + "[-:-:-]\n\n[gray]Returning to the form...[-]")
	a.pages.SwitchToPage(pageError)

	a.mu.Lock()
	seq := a.loadSeq
	a.mu.Unlock()

	time.AfterFunc(a.config.RedirectDelay, func() {
		a.queueUpdate(func() {
			if name, _ := a.pages.GetFrontPage(); name != pageError || !a.isLatest(seq) {
				return
			}
			a.showForm()
		})
	})
}

func (a *App) isLatest(seq uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadSeq == seq
}

// showForm returns to the request form
func (a *App) showForm() {
	a.setStatus("")
	a.pages.SwitchToPage(pageForm)
	a.app.SetFocus(a.form)
}

// download writes the view's image to the output directory
func (a *App) download(v *view.View) {
	a.queueUpdate(func() {
		a.header.SetTitle(" Rendering... ")
	})

	path, err := a.writeExport(a.ctx, v)

	a.queueUpdate(func() {
		if err != nil {
			a.logger.Error().Err(err).Msg("Failed to download image")
			a.header.SetTitle(" [red]Download failed[-] ")
			return
		}
		a.header.SetTitle(" Saved " + tview.Escape(path) + " ")
	})
}

func (a *App) writeExport(ctx context.Context, v *view.View) (string, error) {
	data, err := v.Export(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(a.config.OutDir, v.Filename())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	a.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Saved image")
	return path, nil
}

func (a *App) currentView() *view.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *App) setStatus(text string) {
	a.status.SetText(text)
}

// headerText renders the profile block above the chart
func headerText(page *layout.Page) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]", tview.Escape(page.User.Name)))
	sb.WriteString(fmt.Sprintf("  [red]%d[-] scrobbles\n", page.User.Playcount))
	sb.WriteString(fmt.Sprintf("[yellow]%s[-]\n", tview.Escape(page.Subtitle)))
	sb.WriteString(fmt.Sprintf("[gray]%s[-]", tview.Escape(page.User.URL)))
	return sb.String()
}

// fillTable lays page out as table cells: one row per item for table
// pages, one cell per tile for grid pages.
func fillTable(table *tview.Table, page *layout.Page) {
	table.Clear()

	if page.Mode == chart.ModeGrid {
		for _, tile := range page.Tiles {
			text := tview.Escape(tile.Item.Name)
			if page.ShowArtist && tile.Item.Artist != nil {
				text += "\n" + tview.Escape(tile.Item.Artist.Name)
			}
			table.SetCell(tile.Row, tile.Col, tview.NewTableCell(text).
				SetMaxWidth(24).
				SetExpansion(1))
		}
		return
	}

	headers := []string{"#", "CHANGE", "PLAYS", page.Column}
	if page.ShowArtist {
		headers = append(headers, "ARTIST")
	}
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorGray).
			SetSelectable(false))
	}

	for i, row := range page.Rows {
		r := i + 1
		bg := tcellColor(layout.ColorStripeEven)
		if row.Striped {
			bg = tcellColor(layout.ColorStripeOdd)
		}

		cells := []*tview.TableCell{
			tview.NewTableCell(fmt.Sprintf("%d", row.Index+1)).SetTextColor(tcell.ColorGray),
			tview.NewTableCell(row.Delta.Indicator()).SetTextColor(tcellColor(layout.DeltaColor(row.Delta))),
			tview.NewTableCell(fmt.Sprintf("%d", row.Item.Playcount)).SetTextColor(tcellColor(layout.ColorAccent)).SetAlign(tview.AlignRight),
			tview.NewTableCell(tview.Escape(row.Item.Name)).SetAttributes(tcell.AttrBold).SetMaxWidth(40).SetExpansion(2),
		}
		if page.ShowArtist {
			name := ""
			if row.Item.Artist != nil {
				name = row.Item.Artist.Name
			}
			cells = append(cells, tview.NewTableCell(tview.Escape(name)).SetMaxWidth(30).SetExpansion(1))
		}
		for col, cell := range cells {
			table.SetCell(r, col, cell.SetBackgroundColor(bg))
		}
	}
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
