package chart

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Request fully determines the upstream query, the snapshot key and the
// presentation of one chart. Format is nil for table requests.
type Request struct {
	Username string  `json:"username" yaml:"username"`
	Type     Type    `json:"type" yaml:"type"`
	Period   Period  `json:"period" yaml:"period"`
	Format   *Format `json:"-" yaml:"-"`
}

// Mode returns grid when a format is set, table otherwise.
func (r Request) Mode() Mode {
	if r.Format != nil {
		return ModeGrid
	}
	return ModeTable
}

// Key identifies the request's snapshot: username_type_period.
func (r Request) Key() string {
	return r.Username + "_" + string(r.Type) + "_" + string(r.Period.Canonical())
}

// Limit returns how many items to fetch: the grid size, or tableLimit for
// table requests.
func (r Request) Limit(tableLimit int) int {
	if r.Format != nil {
		return r.Format.Cells()
	}
	return tableLimit
}

// Values encodes the request as navigation query parameters.
func (r Request) Values() url.Values {
	v := url.Values{}
	v.Set("username", r.Username)
	v.Set("type", string(r.Type))
	v.Set("period", string(r.Period))
	if r.Format != nil {
		v.Set("format", r.Format.String())
	}
	return v
}

// form is the raw request as submitted, before parsing.
type form struct {
	Username string `mapstructure:"username" validate:"required,max=64"`
	Type     string `mapstructure:"type" default:"albums" validate:"oneof=albums artists tracks"`
	Period   string `mapstructure:"period" default:"7day" validate:"oneof=7day 1month 3month 6month 1year 12month overall"`
	Format   string `mapstructure:"format" validate:"omitempty,format"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("format", func(fl validator.FieldLevel) bool {
		_, err := ParseFormat(fl.Field().String())
		return err == nil
	})
	return v
}

// ParseRequest decodes, defaults and validates raw request values. Empty
// values count as missing. For grid mode a missing format defaults to
// DefaultFormat; for table mode any format is ignored.
//
// Validation failures are returned as *ValidationError.
func ParseRequest(values url.Values, mode Mode) (Request, error) {
	raw := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		if v := strings.TrimSpace(vs[0]); v != "" {
			raw[strings.ToLower(k)] = v
		}
	}

	var f form
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &f,
		TagName: "mapstructure",
	})
	if err != nil {
		return Request{}, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return Request{}, errors.Wrap(err, "failed to decode request")
	}

	if err := defaults.Set(&f); err != nil {
		return Request{}, errors.Wrap(err, "failed to set defaults")
	}
	if mode == ModeTable {
		f.Format = ""
	}

	if err := validate.Struct(f); err != nil {
		return Request{}, newValidationError(err)
	}

	req := Request{
		Username: f.Username,
		Type:     Type(f.Type),
		Period:   Period(f.Period).Canonical(),
	}
	if mode == ModeGrid {
		format := DefaultFormat
		if f.Format != "" {
			// validated above
			format, _ = ParseFormat(f.Format)
		}
		req.Format = &format
	}

	return req, nil
}

// Validate checks an already constructed request.
func (r Request) Validate() error {
	f := form{
		Username: r.Username,
		Type:     string(r.Type),
		Period:   string(r.Period),
	}
	if r.Format != nil {
		f.Format = r.Format.String()
	}
	if err := validate.Struct(f); err != nil {
		return newValidationError(err)
	}
	return nil
}
