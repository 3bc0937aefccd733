package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jfmyers9/chartfm/internal/chart"
	"github.com/jfmyers9/chartfm/internal/render"
	"github.com/jfmyers9/chartfm/internal/view"
)

var (
	chartType   string
	chartPeriod string
	chartFormat string
	chartGrid   bool
	chartOutput string
	chartImage  bool
	chartOut    string
	chartQuiet  bool
)

// chartCmd represents the chart command
var chartCmd = &cobra.Command{
	Use:   "chart [username]",
	Short: "Build a chart for a Last.fm user",
	Long: `Fetch a Last.fm user's top albums, artists or tracks and print them with
the change since the previous chart for the same user, type and period.

Without a username the most recently requested chart is repeated.

Tables list the top items; grids (--grid or --format RxC) lay out cover
art in R rows of C columns. Use --image to export the chart as an image.

Examples:
  chartfm chart alice
  chartfm chart alice --type tracks --period 1month
  chartfm chart alice --format 5x5 --image
  chartfm chart alice --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)

	chartCmd.Flags().StringVarP(&chartType, "type", "t", "", "Chart type (albums, artists, tracks)")
	chartCmd.Flags().StringVarP(&chartPeriod, "period", "p", "", "Period (7day, 1month, 3month, 6month, 1year, overall)")
	chartCmd.Flags().StringVarP(&chartFormat, "format", "f", "", "Grid shape RxC, e.g. 5x5 (implies --grid)")
	chartCmd.Flags().BoolVarP(&chartGrid, "grid", "g", false, "Build a grid instead of a table")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "table", "Output format (table, json, yaml)")
	chartCmd.Flags().BoolVar(&chartImage, "image", false, "Export the chart as an image")
	chartCmd.Flags().StringVar(&chartOut, "out", "", "Image file or directory (implies --image)")
	chartCmd.Flags().BoolVarP(&chartQuiet, "quiet", "q", false, "Do not print the chart")
}

func runChart(cmd *cobra.Command, args []string) error {
	if err := requireConfig(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := chartRequest(ctx, a, args)
	if err != nil {
		return err
	}

	if err := a.snapshots.SaveLastRequest(ctx, req); err != nil {
		logger.Warn().Err(err).Msg("Failed to save last request")
	}

	v, err := a.views.Load(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", chart.Message(err), err)
	}

	if !chartQuiet {
		if err := writeChart(cmd.OutOrStdout(), v, chartOutput); err != nil {
			return err
		}
	}

	if chartImage || chartOut != "" {
		path, err := exportChart(ctx, v, chartOut)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
	}

	return nil
}

// chartRequest builds the request from flags, falling back to the last
// request when no username is given.
func chartRequest(ctx context.Context, a *app, args []string) (chart.Request, error) {
	values := url.Values{}

	if len(args) == 0 {
		last, ok := a.snapshots.LastRequest(ctx)
		if !ok {
			return chart.Request{}, fmt.Errorf("no username given and no previous chart to repeat")
		}
		values = last.Values()
	} else {
		values.Set("username", args[0])
	}

	if chartType != "" {
		values.Set("type", chartType)
	}
	if chartPeriod != "" {
		values.Set("period", chartPeriod)
	}
	if chartFormat != "" {
		values.Set("format", chartFormat)
	}

	mode := chart.ModeTable
	if chartGrid || values.Get("format") != "" {
		mode = chart.ModeGrid
	}

	req, err := chart.ParseRequest(values, mode)
	if err != nil {
		return chart.Request{}, err
	}
	return req, nil
}

// exportChart writes the view's image to out. An empty out or a directory
// uses the default file name.
func exportChart(ctx context.Context, v *view.View, out string) (string, error) {
	path := out
	if path == "" {
		path = v.Filename()
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, v.Filename())
	}

	data, err := v.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render image: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// chartDocument is the json and yaml form of a chart
type chartDocument struct {
	Username string      `json:"username" yaml:"username"`
	Type     chart.Type  `json:"type" yaml:"type"`
	Period   string      `json:"period" yaml:"period"`
	Format   string      `json:"format,omitempty" yaml:"format,omitempty"`
	User     chart.User  `json:"user" yaml:"user"`
	Items    []chartItem `json:"items" yaml:"items"`
}

type chartItem struct {
	Rank      int         `json:"rank" yaml:"rank"`
	Name      string      `json:"name" yaml:"name"`
	Artist    string      `json:"artist,omitempty" yaml:"artist,omitempty"`
	Playcount int         `json:"playcount" yaml:"playcount"`
	URL       string      `json:"url" yaml:"url"`
	Delta     chart.Delta `json:"delta" yaml:"delta"`
}

func newChartDocument(v *view.View) chartDocument {
	doc := chartDocument{
		Username: v.Request.Username,
		Type:     v.Request.Type,
		Period:   v.Request.Period.Label(),
		User:     v.User,
		Items:    make([]chartItem, 0, len(v.Items)),
	}
	if v.Request.Format != nil {
		doc.Format = v.Request.Format.String()
	}
	for _, item := range v.Items {
		ci := chartItem{
			Rank:      item.Rank,
			Name:      item.Name,
			Playcount: item.Playcount,
			URL:       item.URL,
			Delta:     v.Deltas[item.URL],
		}
		if item.Artist != nil {
			ci.Artist = item.Artist.Name
		}
		doc.Items = append(doc.Items, ci)
	}
	return doc
}

// writeChart prints v in the given output format
func writeChart(w io.Writer, v *view.View, output string) error {
	switch output {
	case "", "table":
		return render.WriteTable(w, v.Page)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newChartDocument(v))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newChartDocument(v)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (expected table, json or yaml)", output)
	}
}
