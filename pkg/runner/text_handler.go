package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/domain"
)

// ContentRenderer transforms dialog text before it is printed, e.g. markdown to ANSI.
type ContentRenderer func(string) (string, error)

// TextHandler is the interactive terminal frontend.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption configures a TextHandler.
type TextHandlerOption func(*TextHandler)

// WithRenderer configures the content renderer.
func WithRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO. Nil streams default to Stdin/Stdout.
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

// pump reads lines in the background so a blocked read never outlives a cancelled context.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) readLine(ctx context.Context, prompt string) (string, error) {
	h.initPump()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, prompt)
		}

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
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) render(text string) string {
	if h.Renderer == nil {
		return text
	}
	rendered, err := h.Renderer(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(rendered)
}

func (h *TextHandler) show(v View) {
	switch v.Kind {
	case domain.KindMessage:
		fmt.Fprintln(h.Writer, h.render(v.Text))
	case domain.KindIframe:
		fmt.Fprintf(h.Writer, "[%s] open %s\n", v.Speaker, v.URL)
	default:
		text := h.render(v.Text)
		if v.Speaker != "" {
			text = v.Speaker + ": " + text
		}
		fmt.Fprintln(h.Writer, text)
	}
	for i, c := range v.Choices {
		fmt.Fprintf(h.Writer, "  %d) %s\n", i+1, c)
	}
}

// Present prints v and reads the answer. Choices are numbered from 1 and re-asked until valid.
func (h *TextHandler) Present(ctx context.Context, v View) (dialog.Answer, error) {
	h.show(v)
	switch {
	case v.Kind == domain.KindSelect:
		for {
			line, err := h.readLine(ctx, "> ")
			if err != nil {
				return dialog.NoAnswer(), err
			}
			if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(v.Choices) {
				return dialog.Choose(n - 1), nil
			}
			fmt.Fprintf(h.Writer, "Pick a number between 1 and %d.\n", len(v.Choices))
		}
	case v.Input:
		line, err := h.readLine(ctx, "> ")
		if err != nil {
			return dialog.NoAnswer(), err
		}
		return dialog.Reply(line), nil
	default:
		if _, err := h.readLine(ctx, ""); err != nil {
			return dialog.NoAnswer(), err
		}
		return dialog.NoAnswer(), nil
	}
}

// Notice prints a system message.
func (h *TextHandler) Notice(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(h.Writer, msg)
	return err
}

// ReadCommand reads the next command line.
func (h *TextHandler) ReadCommand(ctx context.Context) (string, error) {
	return h.readLine(ctx, "> ")
}
