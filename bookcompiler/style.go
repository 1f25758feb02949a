package bookcompiler

import (
	"strings"
)

// DefaultTemplate is used for unknown template ids.
const DefaultTemplate = "original"

// TemplateStyle is the typography and colour bundle of a template.
type TemplateStyle struct {
	ID              string
	FontFamily      string
	FontSize        int // points
	LineHeight      float64
	TextColor       string
	BackgroundColor string
	AccentColor     string
	MarginBottom    string
}

// TemplateIDs lists the available templates.
func TemplateIDs() []string {
	return []string{"original", "modern", "creative", "classic", "business", "academic"}
}

// ResolveTemplateStyle returns the preset for id, or the original preset.
func ResolveTemplateStyle(id string) TemplateStyle {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "modern":
		return TemplateStyle{
			ID:              "modern",
			FontFamily:      `"Helvetica Neue", Helvetica, Arial, sans-serif`,
			FontSize:        11,
			LineHeight:      1.7,
			TextColor:       "#222222",
			BackgroundColor: "#ffffff",
			AccentColor:     "#3498db",
			MarginBottom:    "1.2em",
		}
	case "creative":
		return TemplateStyle{
			ID:              "creative",
			FontFamily:      `"Palatino Linotype", Palatino, "Book Antiqua", serif`,
			FontSize:        12,
			LineHeight:      1.8,
			TextColor:       "#4a4a4a",
			BackgroundColor: "#fffaf0",
			AccentColor:     "#e67e22",
			MarginBottom:    "1.6em",
		}
	case "classic":
		return TemplateStyle{
			ID:              "classic",
			FontFamily:      `"Times New Roman", Times, serif`,
			FontSize:        12,
			LineHeight:      1.5,
			TextColor:       "#000000",
			BackgroundColor: "#fdfdf8",
			AccentColor:     "#8b0000",
			MarginBottom:    "1em",
		}
	case "business":
		return TemplateStyle{
			ID:              "business",
			FontFamily:      `Arial, Helvetica, sans-serif`,
			FontSize:        11,
			LineHeight:      1.5,
			TextColor:       "#1a1a1a",
			BackgroundColor: "#ffffff",
			AccentColor:     "#1f4e79",
			MarginBottom:    "1em",
		}
	case "academic":
		return TemplateStyle{
			ID:              "academic",
			FontFamily:      `Cambria, "Times New Roman", serif`,
			FontSize:        12,
			LineHeight:      2.0,
			TextColor:       "#000000",
			BackgroundColor: "#ffffff",
			AccentColor:     "#003366",
			MarginBottom:    "1em",
		}
	default:
		return TemplateStyle{
			ID:              DefaultTemplate,
			FontFamily:      `Georgia, "Times New Roman", serif`,
			FontSize:        12,
			LineHeight:      1.6,
			TextColor:       "#333333",
			BackgroundColor: "#ffffff",
			AccentColor:     "#2c3e50",
			MarginBottom:    "1.5em",
		}
	}
}

// PrimaryFont is the first family in FontFamily, without quotes.
func (s TemplateStyle) PrimaryFont() string {
	first, _, _ := strings.Cut(s.FontFamily, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

// hexColor strips the leading '#', as OOXML expects.
func hexColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}
