// Command preview runs the rain classifier on a saved One Call response and
// prints the resulting summary, optionally followed by the rendered email.
// It is meant for tuning thresholds and editing templates without calling
// OpenWeather or sending mail.
//
// Usage:
//
//	go run ./cmd/preview \
//	  -payload internal/adapter/openweather/testdata/onecall_shanghai.json \
//	  -now 2025-06-10T08:30:00+08:00 \
//	  -render -templates ./templates
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/rain-reminder/internal/domain"
	"github.com/couchcryptid/rain-reminder/internal/notify"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	payload   string
	now       string
	render    bool
	templates string
	prefix    string
	place     string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.StringVar(&o.payload, "payload", "", "path to a saved One Call JSON response")
	fs.StringVar(&o.now, "now", "", "RFC 3339 instant to treat as now (default: current time)")
	fs.BoolVar(&o.render, "render", false, "also render the reminder email body")
	fs.StringVar(&o.templates, "templates", "", "template directory (default: embedded templates)")
	fs.StringVar(&o.prefix, "subject-prefix", "降雨提醒", "subject prefix for the rendered email")
	fs.StringVar(&o.place, "place", "", "location label for the rendered email")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.payload == "" {
		fs.Usage()
		return o, fmt.Errorf("missing required flag: -payload")
	}
	return o, nil
}

func run(args []string, out io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(o.payload)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	payload, err := domain.ParseForecast(data)
	if err != nil {
		return err
	}

	now := time.Now()
	if o.now != "" {
		if now, err = time.Parse(time.RFC3339, o.now); err != nil {
			return fmt.Errorf("parse -now: %w", err)
		}
	}

	// Freeze the package clock so the summary matches a run at -now.
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	summary := domain.Summarize(payload)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	if !o.render {
		return nil
	}
	if !summary.WorstTier.IsRain() {
		fmt.Fprintln(out, "\nno rain expected today, no email would be sent")
		return nil
	}

	day := domain.ToLocal(now.Unix(), payload.TimezoneOffset)
	tmplData := notify.NewTemplateData(summary, domain.Location{Name: o.place}, day)
	tmplData.Subject = notify.Subject(o.prefix, summary.WorstTier)

	body, err := notify.NewRenderer(o.templates).Render(summary.WorstTier, tmplData)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSubject: %s\n\n%s\n", tmplData.Subject, body)
	return nil
}
