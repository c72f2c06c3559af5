package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muurk/blauberg/internal/protocol"
)

// Printer writes command output, either styled for a terminal or as JSON.
type Printer struct {
	out   io.Writer
	width int
	json  bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// SetJSON switches the printer to machine readable output
func (p *Printer) SetJSON(enabled bool) *Printer {
	p.json = enabled
	return p
}

// JSON reports whether the printer emits JSON
func (p *Printer) JSON() bool {
	return p.json
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box. Skipped in JSON mode.
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	if p.json {
		return
	}
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box, or details as JSON
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	if p.json {
		_ = p.PrintJSON(details)
		return
	}
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintWarning prints a warning box, or details as JSON
func (p *Printer) PrintWarning(title string, details map[string]string) {
	if p.json {
		_ = p.PrintJSON(details)
		return
	}
	p.Println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	if p.json {
		msg := title
		if err != nil {
			msg = err.Error()
		}
		_ = p.PrintJSON(map[string]string{"error": msg})
		return
	}
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintTable prints a table, or the rows as JSON objects keyed by header
func (p *Printer) PrintTable(headers []string, rows [][]string) {
	if p.json {
		objs := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			obj := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					obj[h] = row[i]
				}
			}
			objs = append(objs, obj)
		}
		_ = p.PrintJSON(objs)
		return
	}
	p.Println(RenderTable(headers, rows))
}

// PrintParams prints parameter values. In JSON mode ids map to integers,
// to hex strings when wider than eight bytes, or to null when invalid.
func (p *Printer) PrintParams(params protocol.Params, names map[protocol.ParamID]string) {
	if p.json {
		_ = p.PrintJSON(ParamsJSON(params))
		return
	}
	if len(params) == 0 {
		p.Println(HeaderParamKeyStyle.Render("no parameters returned"))
		return
	}
	p.Println(RenderParams(params, names))
}

// PrintJSON writes v as indented JSON
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ParamsJSON converts parameters to a JSON friendly map.
func ParamsJSON(params protocol.Params) map[string]any {
	out := make(map[string]any, len(params))
	for id, v := range params {
		switch {
		case !v.IsKnown():
			out[id.String()] = nil
		case v.Len() > 8:
			out[id.String()] = v.String()
		default:
			out[id.String()] = v.Uint()
		}
	}
	return out
}
