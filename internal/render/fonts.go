package render

import (
	"github.com/cockroachdb/errors"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fonts holds the parsed Go fonts.
type fonts struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func loadFonts() (*fonts, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse regular font")
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse bold font")
	}
	return &fonts{regular: regular, bold: bold}, nil
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache is a per-rasterization face cache; faces are not safe for
// concurrent use.
type faceCache struct {
	fonts *fonts
	faces map[faceKey]font.Face
}

func (f *fonts) newCache() *faceCache {
	return &faceCache{fonts: f, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) face(size float64, bold bool) font.Face {
	key := faceKey{size: size, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f
	}

	ttf := c.fonts.regular
	if bold {
		ttf = c.fonts.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[key] = f
	return f
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		_ = f.Close()
	}
}
