// Package fonts measures label text in pixels for node sizing.
//
// Sizing containers before auto-layout needs the rendered width of a label
// at a fixed font specification. When a system font can be located the
// measurement uses real glyph advances; otherwise a fixed per-character
// ratio approximates it, so sizing degrades instead of failing in
// environments without fonts installed.
package fonts

import (
	"os"
	"sync"
	"unicode/utf8"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Font specification assumed by node sizing. Rendered diagrams use the
// browser's sans-serif stack; measurement matches it approximately.
const (
	Family = "ui-sans-serif, system-ui, sans-serif"
	SizePx = 12.0
)

// charWidthRatio approximates the average advance of a sans-serif glyph as a
// fraction of the font size.
const charWidthRatio = 0.55

// candidates are tried in order when locating a system sans font.
var candidates = []string{
	"DejaVuSans.ttf",
	"LiberationSans-Regular.ttf",
	"Arial.ttf",
	"Helvetica.ttf",
}

// Measurer reports the rendered pixel width of text at a font size.
type Measurer interface {
	Width(text string, size float64) float64
}

// =============================================================================
// Heuristic Measurer
// =============================================================================

// Heuristic approximates width from a fixed per-character ratio. It is the
// fallback for environments without queryable font metrics.
type Heuristic struct{}

// Width implements Measurer.
func (Heuristic) Width(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * charWidthRatio
}

// =============================================================================
// System Measurer
// =============================================================================

// SystemMeasurer measures text with real glyph advances from a system font.
type SystemMeasurer struct {
	fnt *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face // faces are cached per size
}

// Load locates a system sans font and prepares it for measurement.
func Load() (*SystemMeasurer, error) {
	var lastErr error
	for _, name := range candidates {
		path, err := findfont.Find(name)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		fnt, err := opentype.Parse(data)
		if err != nil {
			lastErr = err
			continue
		}
		return &SystemMeasurer{fnt: fnt, faces: make(map[float64]font.Face)}, nil
	}
	return nil, lastErr
}

// Width implements Measurer. It falls back to the heuristic if a face cannot
// be built at the requested size.
func (m *SystemMeasurer) Width(text string, size float64) float64 {
	face, err := m.face(size)
	if err != nil {
		return Heuristic{}.Width(text, size)
	}
	return float64(font.MeasureString(face, text)) / 64.0
}

func (m *SystemMeasurer) face(size float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}

// =============================================================================
// Default
// =============================================================================

var (
	defaultOnce sync.Once
	defaultM    Measurer
)

// Default returns the system measurer when a font can be located, or the
// heuristic otherwise. The choice is made once per process.
func Default() Measurer {
	defaultOnce.Do(func() {
		if m, err := Load(); err == nil && m != nil {
			defaultM = m
		} else {
			defaultM = Heuristic{}
		}
	})
	return defaultM
}
