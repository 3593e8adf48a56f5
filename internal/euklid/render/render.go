// Package render writes calculator results for terminals and scripts.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/internal/euklid/store"
	"github.com/msto63/euklid/pkg/core/health"
	"github.com/msto63/euklid/pkg/rational"
)

// Format selects how results are written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat reads an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", mdwerror.New("unknown output format").
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("render.ParseFormat").
		WithDetail("format", s)
}

// Printer writes results in one format and locale
type Printer struct {
	Out       io.Writer
	Presenter service.Presenter
	Locale    string
	Format    Format
	// Steps adds the trace to text output
	Steps bool
}

// Print writes v, which is one of the service results, a history listing
// or any value for the structured formats
func (p *Printer) Print(v interface{}) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	_, err := io.WriteString(p.Out, p.Text(v))
	return err
}

// Error writes err as a localized problem
func (p *Printer) Error(err error) error {
	prob := p.Presenter.Explain(p.Locale, err)
	if p.Format == FormatText {
		_, werr := fmt.Fprintf(p.Out, "%s\n", prob.Message)
		return werr
	}
	return p.Print(map[string]interface{}{"error": prob})
}

// Text renders v as labelled lines ending in a newline
func (p *Printer) Text(v interface{}) string {
	var b strings.Builder
	switch r := v.(type) {
	case *service.ParseResult:
		p.line(&b, "result", r.Value.String())
		if r.Mixed.Whole != 0 {
			p.line(&b, "mixed", r.Mixed.String())
		}
		p.decimal(&b, r.Decimal, r.DecimalExact)
	case *service.EvaluateResult:
		p.line(&b, "result", r.Result.String())
		if r.Mixed != nil {
			p.line(&b, "mixed", r.Mixed.String())
		}
		p.decimal(&b, r.Decimal, r.DecimalExact)
		p.trace(&b, r.Trace)
	case *service.LCDResult:
		p.line(&b, "lcd", fmt.Sprint(r.LCD))
		p.line(&b, "equivalents", joinRatios(r.Equivalents))
		if len(r.Sorted) > 0 {
			p.line(&b, "sorted", rational.FormatAscending(r.Sorted))
		}
		p.trace(&b, r.Trace)
	case *service.DecimalResult:
		p.line(&b, "fraction", r.Fraction.String())
		if r.Mixed.Whole != 0 {
			p.line(&b, "mixed", r.Mixed.String())
		}
		p.trace(&b, r.Trace)
	case *service.ToDecimalResult:
		p.decimal(&b, r.Decimal, r.Exact)
	case []*store.Record:
		p.records(&b, r)
	case *store.Stats:
		p.stats(&b, r)
	case *health.Report:
		p.health(&b, r)
	default:
		fmt.Fprintf(&b, "%v\n", v)
	}
	return b.String()
}

func (p *Printer) line(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s: %s\n", p.Presenter.Label(p.Locale, label), value)
}

func (p *Printer) decimal(b *strings.Builder, decimal string, exact bool) {
	if !exact {
		decimal = p.Presenter.Label(p.Locale, "approximate") + " " + decimal
	}
	p.line(b, "decimal", decimal)
}

func (p *Printer) trace(b *strings.Builder, t rational.Trace) {
	if !p.Steps || t.Len() == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", p.Presenter.Label(p.Locale, "steps"))
	for i, s := range t.Steps() {
		fmt.Fprintf(b, "  %d. %s: %s\n", i+1, p.Presenter.StepTitle(p.Locale, s.Kind), s.Describe())
	}
}

func (p *Printer) records(b *strings.Builder, records []*store.Record) {
	tw := tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
	for _, r := range records {
		outcome := r.Result
		if r.Failed() {
			outcome = "! " + r.ErrorKind
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Kind, r.Input, outcome, shortID(r.ID))
	}
	tw.Flush()
}

func (p *Printer) stats(b *strings.Builder, s *store.Stats) {
	fmt.Fprintf(b, "total: %d\nfailed: %d\n", s.Total, s.Failed)
	for _, k := range []store.Kind{
		store.KindParse, store.KindCalculate, store.KindEvaluate, store.KindLCD,
		store.KindCompare, store.KindDecimal, store.KindToDecimal,
	} {
		if n := s.ByKind[k]; n > 0 {
			fmt.Fprintf(b, "  %s: %d\n", k, n)
		}
	}
	if !s.First.IsZero() {
		fmt.Fprintf(b, "first: %s\nlast: %s\n",
			s.First.Local().Format("2006-01-02 15:04:05"), s.Last.Local().Format("2006-01-02 15:04:05"))
	}
}

func (p *Printer) health(b *strings.Builder, r *health.Report) {
	fmt.Fprintf(b, "%s %s: %s\n", r.Service, r.Version, r.Status)
	tw := tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
	for _, c := range r.Checks {
		mark := "[+]"
		switch c.Status {
		case health.StatusDegraded:
			mark = "[~]"
		case health.StatusUnhealthy:
			mark = "[-]"
		}
		fmt.Fprintf(tw, "  %s %s\t%s\t%s\n", mark, c.Name, c.Status, c.Message)
	}
	tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinRatios(ratios []rational.Ratio) string {
	parts := make([]string, len(ratios))
	for i, r := range ratios {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

