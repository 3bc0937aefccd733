package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/jfmyers9/chartfm/internal/chart"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "This is a very long string that needs truncation",
			width:    20,
			expected: "This is a very lo...",
		},
		{
			name:     "handle unicode characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
		{
			name:     "truncate unicode text",
			input:    "日本語とても長いテキスト",
			width:    10,
			expected: "日本語... ", // 日本語 is 6 columns, ... is 3, one space of padding
		},
		{
			name:     "minimum width for truncation",
			input:    "Hello",
			width:    3,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}

			if tt.width > 0 {
				resultWidth := runewidth.StringWidth(result)
				if resultWidth != tt.width {
					t.Errorf("padToWidth(%q, %d) produced width %d, expected %d",
						tt.input, tt.width, resultWidth, tt.width)
				}
			}
		})
	}
}

func TestFitText(t *testing.T) {
	f, err := loadFonts()
	require.NoError(t, err)
	faces := f.newCache()
	defer faces.close()
	face := faces.face(12, false)

	short := "Hi"
	assert.Equal(t, short, fitText(face, short, fixed.I(200)))

	long := "Songs in the Key of Life and Other Very Long Album Titles"
	fitted := fitText(face, long, fixed.I(100))
	assert.True(t, strings.HasSuffix(fitted, ellipsis), fitted)
	assert.LessOrEqual(t, font.MeasureString(face, fitted), fixed.I(100))

	assert.Empty(t, fitText(face, long, fixed.I(1)))
}

func TestWriteTable(t *testing.T) {
	page := testPage(t, 3, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, page))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "alice · Albums - 7 days · 99 scrobbles", lines[0])
	assert.Contains(t, lines[1], "ALBUM")
	assert.Contains(t, lines[1], "ARTIST")
	assert.True(t, strings.HasPrefix(lines[2], "   1  (NEW)"), lines[2])
	assert.Contains(t, lines[2], "30")
	assert.Contains(t, lines[4], "Artist")
}

func TestWriteTable_Grid(t *testing.T) {
	f := chart.Format{Rows: 3, Cols: 3}
	page := testPage(t, 7, &f)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, page))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2+7)
}
