package notify

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/rain-reminder/internal/domain"
)

//go:embed templates/*.html
var embedded embed.FS

// NoRainPlaceholder replaces the rain-hour list when it is empty.
const NoRainPlaceholder = "No rain expected today."

// ErrTemplateNotFound is returned when a tier has no template file.
var ErrTemplateNotFound = errors.New("email template not found")

var templateNames = map[domain.Tier]string{
	domain.TierLight:    "light_rain_template.html",
	domain.TierModerate: "moderate_rain_template.html",
	domain.TierHeavy:    "heavy_rain_template.html",
}

// TemplateData is what the tier templates can reference.
type TemplateData struct {
	Subject    string
	TierTitle  string
	Location   string
	Date       string
	RainHours  string
	TotalHours int
	PeakTime   string
	PeakAmount float64
}

// NewTemplateData flattens a summary into template fields.
func NewTemplateData(summary domain.RainSummary, loc domain.Location, day time.Time) TemplateData {
	data := TemplateData{
		TierTitle:  summary.WorstTier.Title(),
		Location:   loc.Label(),
		Date:       day.Format("2006-01-02"),
		RainHours:  FormatRainHours(summary.RainHours),
		TotalHours: summary.TotalHours,
	}
	if summary.Peak != nil {
		data.PeakTime = summary.Peak.Label
		data.PeakAmount = summary.Peak.RainVolume
	}
	return data
}

// FormatRainHours joins labels with ", " or returns NoRainPlaceholder.
func FormatRainHours(hours []string) string {
	if len(hours) == 0 {
		return NoRainPlaceholder
	}
	return strings.Join(hours, ", ")
}

// Renderer renders the per-tier HTML templates.
type Renderer struct {
	fsys fs.FS
}

// NewRenderer reads templates from dir, or from the embedded defaults when
// dir is empty.
func NewRenderer(dir string) *Renderer {
	if dir == "" {
		sub, _ := fs.Sub(embedded, "templates") // static path, cannot fail
		return &Renderer{fsys: sub}
	}
	return &Renderer{fsys: os.DirFS(dir)}
}

// Render executes the template for tier. TierNo has no template.
func (r *Renderer) Render(tier domain.Tier, data TemplateData) (string, error) {
	name, ok := templateNames[tier]
	if !ok {
		return "", fmt.Errorf("render %s: %w", tier, ErrTemplateNotFound)
	}

	src, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("render %s: %w: %s", tier, ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(src))
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// plainText is the text/plain alternative for clients that block HTML.
func plainText(data TemplateData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s rain expected", data.TierTitle)
	if data.Location != "" {
		fmt.Fprintf(&b, " in %s", data.Location)
	}
	fmt.Fprintf(&b, " on %s.\n\n", data.Date)
	fmt.Fprintf(&b, "Rain hours: %s\n", data.RainHours)
	fmt.Fprintf(&b, "Total hours: %d\n", data.TotalHours)
	if data.PeakTime != "" {
		fmt.Fprintf(&b, "Peak: %s, %.1f mm\n", data.PeakTime, data.PeakAmount)
	}
	return b.String()
}
