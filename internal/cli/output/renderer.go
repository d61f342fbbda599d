package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer writes command output in the resolved mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   OutputMode
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
// Colors are only emitted when isTTY is true.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		isTTY:  isTTY,
		mode:   mode.Resolve(isTTY),
		styles: NewStyles(lr),
	}
}

// DisableColor strips colors from text output.
func (r *Renderer) DisableColor() {
	lr := lipgloss.NewRenderer(r.out)
	lr.SetColorProfile(termenv.Ascii)
	r.styles = NewStyles(lr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Mode returns the effective mode, never ModeAuto.
func (r *Renderer) Mode() OutputMode {
	return r.mode
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the text styles.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the diagnostics writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	r.status(r.out, "✓", r.styles.Success, msg)
}

// Warning prints a warning to the diagnostics writer.
func (r *Renderer) Warning(msg string) {
	r.status(r.errOut, "!", r.styles.Warning, msg)
}

// Error prints an error to the diagnostics writer.
func (r *Renderer) Error(msg string) {
	r.status(r.errOut, "✗", r.styles.Error, msg)
}

// Muted prints secondary information.
func (r *Renderer) Muted(msg string) {
	if r.mode == ModeText {
		_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render(msg))
		return
	}
	_, _ = fmt.Fprintln(r.out, msg)
}

func (r *Renderer) status(w io.Writer, icon string, style lipgloss.Style, msg string) {
	if r.mode == ModeText {
		_, _ = fmt.Fprintln(w, style.Render(icon+" "+msg))
		return
	}
	_, _ = fmt.Fprintln(w, icon+" "+msg)
}

// Header prints a section header.
func (r *Renderer) Header(level int, text string) {
	if r.mode == ModeText {
		_, _ = fmt.Fprintln(r.out, r.styles.Header.Render(text))
		return
	}
	_, _ = fmt.Fprintln(r.out, FormatHeader(level, text))
}

// StatusLine prints "icon label detail" where status is success, failed or skipped.
func (r *Renderer) StatusLine(label, status, detail string) {
	var icon string
	var style lipgloss.Style
	switch status {
	case "success":
		icon, style = "✓", r.styles.StatusSuccess
	case "failed":
		icon, style = "✗", r.styles.StatusFailed
	default:
		icon, style = "-", r.styles.Muted
	}
	line := icon + " " + label
	if r.mode == ModeText {
		line = style.Render(icon) + " " + label
	}
	if detail != "" {
		if r.mode == ModeText {
			detail = r.styles.Muted.Render(detail)
		}
		line += " " + detail
	}
	_, _ = fmt.Fprintln(r.out, line)
}

// Code prints a file's content, fenced in markdown mode.
func (r *Renderer) Code(lang, content string) {
	if r.mode == ModeMarkdown {
		_, _ = fmt.Fprintln(r.out, FormatCodeBlock(lang, content))
		return
	}
	_, _ = fmt.Fprint(r.out, content)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders rows under header: a box table on terminals, a markdown
// table otherwise.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.mode == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
