// Package output renders relay results for terminals.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"code.cloudfoundry.org/bytefmt"
	"github.com/logrusorgru/aurora"

	"http-relay-go/internal/model"
)

// Options controls rendering.
type Options struct {
	EnableColor bool
	// HideHeaders suppresses the header block.
	HideHeaders bool
}

type palette struct {
	Status     aurora.Color
	Failure    aurora.Color
	FieldName  aurora.Color
	FieldValue aurora.Color
	Separator  aurora.Color
	Footer     aurora.Color
}

var defaultPalette = palette{
	Status:     aurora.GreenFg | aurora.BoldFm,
	Failure:    aurora.RedFg | aurora.BoldFm,
	FieldName:  aurora.BlueFg,
	FieldValue: aurora.CyanFg,
	Separator:  aurora.BrightFg | aurora.BlackFg,
	Footer:     aurora.BrightFg | aurora.BlackFg,
}

// Printer writes Results to a writer.
type Printer struct {
	w       io.Writer
	opts    Options
	au      aurora.Aurora
	palette palette
}

// NewPrinter creates a Printer.
func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{
		w:       w,
		opts:    opts,
		au:      aurora.NewAurora(opts.EnableColor),
		palette: defaultPalette,
	}
}

// Print renders r.
func (p *Printer) Print(r model.Result) error {
	switch v := r.(type) {
	case *model.Success:
		return p.printSuccess(v)
	case *model.Failure:
		return p.printFailure(v)
	default:
		return fmt.Errorf("unknown result type %T", r)
	}
}

func (p *Printer) printSuccess(s *model.Success) error {
	fmt.Fprintf(p.w, "%s\n", p.au.Colorize(statusLine(s.Status), p.palette.Status))
	if !p.opts.HideHeaders {
		p.printHeader(s.Headers)
	}
	fmt.Fprintln(p.w)
	if err := p.printData(s.Data); err != nil {
		return err
	}
	p.printFooter(s.Data)
	return nil
}

func (p *Printer) printFailure(f *model.Failure) error {
	fmt.Fprintf(p.w, "%s %s\n",
		p.au.Colorize(fmt.Sprintf("[%s]", f.Kind), p.palette.Failure),
		f.Message)
	if f.Details != "" {
		fmt.Fprintf(p.w, "%s %s\n", p.au.Colorize("details:", p.palette.FieldName), f.Details)
	}
	if f.Kind != model.TargetError {
		return nil
	}

	fmt.Fprintf(p.w, "%s\n", p.au.Colorize(statusLine(f.Status), p.palette.Failure))
	if !p.opts.HideHeaders {
		p.printHeader(f.Headers)
	}
	if f.Data == nil {
		return nil
	}
	fmt.Fprintln(p.w)
	if err := p.printData(*f.Data); err != nil {
		return err
	}
	p.printFooter(*f.Data)
	return nil
}

func (p *Printer) printHeader(h http.Header) {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range h[name] {
			fmt.Fprintf(p.w, "%s%s %s\n",
				p.au.Colorize(name, p.palette.FieldName),
				p.au.Colorize(":", p.palette.Separator),
				p.au.Colorize(value, p.palette.FieldValue))
		}
	}
}

func (p *Printer) printData(d model.Data) error {
	if !d.IsJSON() {
		if d.Text() == "" {
			return nil
		}
		_, err := fmt.Fprintln(p.w, d.Text())
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, d.JSON(), "", "    "); err != nil {
		return fmt.Errorf("indent JSON body: %w", err)
	}
	buf.WriteByte('\n')
	_, err := p.w.Write(buf.Bytes())
	return err
}

func (p *Printer) printFooter(d model.Data) {
	kind := "text"
	if d.IsJSON() {
		kind = "json"
	}
	fmt.Fprintf(p.w, "%s\n", p.au.Colorize(
		fmt.Sprintf("-- %s, %s", kind, bytefmt.ByteSize(uint64(d.Len()))),
		p.palette.Footer))
}

func statusLine(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprintf("%d", status)
}
