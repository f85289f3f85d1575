package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/aiterm/pkg/domain"
)

// Prompt formats the shell prompt shown in front of echoed commands.
type Prompt struct {
	User string
	Host string
}

// DefaultPrompt is user@localhost.
var DefaultPrompt = Prompt{User: "user", Host: "localhost"}

// Render returns "user@host:<basename of dir>$".
func (p Prompt) Render(dir string) string {
	base := "~"
	switch {
	case dir == "":
	case strings.Trim(dir, "/") == "":
		base = "/"
	default:
		base = path.Base(strings.TrimRight(dir, "/"))
	}
	return fmt.Sprintf("%s@%s:%s$", p.User, p.Host, base)
}

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader     *bufio.Reader
	Writer     io.Writer
	Renderer   ContentRenderer
	Prompt     Prompt
	Timestamps bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer for output entries.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithPrompt sets the user and host shown in the prompt.
func WithPrompt(p Prompt) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = p
	}
}

// WithTimestamps prefixes every entry with its time.
func WithTimestamps(enabled bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Timestamps = enabled
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour ctx.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff for non-fatal errors to prevent CPU spikes on persistent failure
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Input returns the next line, trimmed of its newline.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

// Output prints entries; commands are echoed after the prompt of their directory.
func (h *TextHandler) Output(ctx context.Context, entries []domain.TranscriptEntry) error {
	for _, e := range entries {
		var line string
		switch e.Kind {
		case domain.EntryCommand:
			line = h.Prompt.Render(e.Directory) + " " + e.Text
		case domain.EntryOutput:
			line = h.render(e.Text)
		default:
			line = e.Text
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}
		if h.Timestamps {
			line = "[" + e.Timestamp.Format(time.TimeOnly) + "] " + line
		}
		if _, err := fmt.Fprintln(h.Writer, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) render(text string) string {
	if h.Renderer == nil {
		return text
	}
	rendered, err := h.Renderer(text)
	if err != nil {
		return text
	}
	return rendered
}

// SystemOutput prints msg on its own line.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(h.Writer, msg)
	return err
}
