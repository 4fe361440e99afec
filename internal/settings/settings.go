// Package settings validates and normalizes print-configuration records
// against the fixed option set the device accepts.
package settings

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	PaperTypePlain  = "PlainPaper"
	PaperTypeGlossy = "Glossy"

	ColorModeColor     = "Color"
	ColorModeGrayscale = "Grayscale"

	PaperSizeA4     = "A4"
	PaperSizeLetter = "Letter"
	PaperSizeLegal  = "Legal"

	QualityDraft = 600
	QualityFine  = 1200
)

const (
	DefaultPaperType = PaperTypePlain
	DefaultQuality   = QualityDraft
	DefaultColorMode = ColorModeGrayscale
	DefaultPaperSize = PaperSizeA4
)

var (
	paperTypes = map[string]bool{
		PaperTypePlain:  true,
		PaperTypeGlossy: true,
	}
	colorModes = map[string]bool{
		ColorModeColor:     true,
		ColorModeGrayscale: true,
	}
	paperSizes = map[string]bool{
		PaperSizeA4:     true,
		PaperSizeLetter: true,
		PaperSizeLegal:  true,
	}
	qualities = map[int]bool{
		QualityDraft: true,
		QualityFine:  true,
	}
)

// Settings is the canonical, fully-populated form of a print configuration.
// Quality is a DPI value, restricted to the enumerated set.
type Settings struct {
	PaperType string `json:"paperType"`
	Quality   int    `json:"quality"`
	ColorMode string `json:"colorMode"`
	PaperSize string `json:"paperSize"`
}

// Validate checks each declared field of a raw settings payload for
// membership in its enum. Absent fields are not errors, unknown fields are
// ignored. A nil or non-object payload is invalid with a single error.
func Validate(raw map[string]any) (bool, []string) {
	if raw == nil {
		return false, []string{"settings must be an object"}
	}

	var errs []string

	if v, ok := raw["paperType"]; ok {
		if s, ok := v.(string); !ok || !paperTypes[s] {
			errs = append(errs, fmt.Sprintf("invalid paperType: %v", v))
		}
	}

	if v, ok := raw["quality"]; ok {
		if q, ok := coerceQuality(v); !ok || !qualities[q] {
			errs = append(errs, fmt.Sprintf("invalid quality: %v", v))
		}
	}

	if v, ok := raw["colorMode"]; ok {
		if s, ok := v.(string); !ok || !colorModes[s] {
			errs = append(errs, fmt.Sprintf("invalid colorMode: %v", v))
		}
	}

	if v, ok := raw["paperSize"]; ok {
		if s, ok := v.(string); !ok || !paperSizes[s] {
			errs = append(errs, fmt.Sprintf("invalid paperSize: %v", v))
		}
	}

	return len(errs) == 0, errs
}

// ApplyDefaults fills any missing field with its fixed default. Present
// fields pass through, with quality coerced to its numeric representation.
func ApplyDefaults(raw map[string]any) Settings {
	s := Settings{
		PaperType: DefaultPaperType,
		Quality:   DefaultQuality,
		ColorMode: DefaultColorMode,
		PaperSize: DefaultPaperSize,
	}

	if raw == nil {
		return s
	}

	if v, ok := raw["paperType"].(string); ok && v != "" {
		s.PaperType = v
	}
	if v, ok := raw["quality"]; ok {
		if q, ok := coerceQuality(v); ok {
			s.Quality = q
		}
	}
	if v, ok := raw["colorMode"].(string); ok && v != "" {
		s.ColorMode = v
	}
	if v, ok := raw["paperSize"].(string); ok && v != "" {
		s.PaperSize = v
	}

	return s
}

// Normalize produces the uniform representation stored with a job: every
// field coerced to its canonical type and spelling, defaults applied for
// anything missing. Normalizing an already-normal record is a no-op.
func Normalize(raw map[string]any) Settings {
	s := ApplyDefaults(raw)
	s.PaperType = canonical(s.PaperType, paperTypes, DefaultPaperType)
	s.ColorMode = canonical(s.ColorMode, colorModes, DefaultColorMode)
	s.PaperSize = canonical(s.PaperSize, paperSizes, DefaultPaperSize)
	if !qualities[s.Quality] {
		s.Quality = DefaultQuality
	}
	return s
}

// Map renders canonical settings back into the raw payload shape, so a
// normalized record can round-trip through Validate and Normalize.
func (s Settings) Map() map[string]any {
	return map[string]any{
		"paperType": s.PaperType,
		"quality":   s.Quality,
		"colorMode": s.ColorMode,
		"paperSize": s.PaperSize,
	}
}

func coerceQuality(v any) (int, bool) {
	switch q := v.(type) {
	case int:
		return q, true
	case int64:
		return int(q), true
	case float64:
		return int(q), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func canonical(v string, valid map[string]bool, fallback string) string {
	if valid[v] {
		return v
	}
	for k := range valid {
		if strings.EqualFold(k, v) {
			return k
		}
	}
	return fallback
}
