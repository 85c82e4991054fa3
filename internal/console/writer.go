package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	UserPrompt      = "User > "
	AssistantPrompt = "Assistant > "
)

// ANSI Color codes
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorGray  = "\033[90m"
)

// Renderer formats an assistant answer for display.
type Renderer interface {
	Render(text string) (string, error)
}

// Writer prints assistant output to the console
type Writer struct {
	writer    io.Writer
	colorMode bool
	renderer  Renderer
}

func NewWriter(w io.Writer) *Writer {
	if w == nil {
		w = os.Stdout
	}
	return &Writer{writer: w}
}

func (cw *Writer) SetColorMode(enabled bool) {
	cw.colorMode = enabled
}

func (cw *Writer) SetRenderer(r Renderer) {
	cw.renderer = r
}

// Answer prints an assistant answer after the assistant prompt
func (cw *Writer) Answer(text string) {
	if cw.renderer != nil {
		if rendered, err := cw.renderer.Render(text); err == nil {
			text = strings.Trim(rendered, "\n")
		}
	}
	cw.writeColored(AssistantPrompt, ColorGreen)
	fmt.Fprintln(cw.writer, text)
}

// Error prints a failed turn as an assistant line
func (cw *Writer) Error(err error) {
	cw.writeColored(AssistantPrompt, ColorGreen)
	cw.writeColored("[error] "+err.Error(), ColorRed)
	fmt.Fprintln(cw.writer)
}

// Notice prints an informational line such as the session banner
func (cw *Writer) Notice(text string) {
	cw.writeColored(text, ColorGray)
	fmt.Fprintln(cw.writer)
}

func (cw *Writer) writeColored(content, color string) {
	if cw.colorMode {
		fmt.Fprintf(cw.writer, "%s%s%s", color, content, ColorReset)
	} else {
		fmt.Fprint(cw.writer, content)
	}
}

// NewMarkdownRenderer renders answers as terminal markdown with glamour.
func NewMarkdownRenderer(color bool, width int) (Renderer, error) {
	style := glamour.WithAutoStyle()
	if !color {
		style = glamour.WithStandardStyle("notty")
	}
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return r, nil
}
