package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/domain"
)

// ErrInvalidChoice is returned when a select answer is not a valid choice index.
var ErrInvalidChoice = errors.New("invalid choice")

// Event is one JSON line emitted by the JSONHandler.
type Event struct {
	Type    string `json:"type"`
	View    *View  `json:"view,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSONHandler is the headless frontend speaking JSON Lines.
// Items that need no input are emitted without waiting; select answers are 0-based indexes.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO. Nil streams default to Stdin/Stdout.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// readValue reads a line holding either a JSON string or raw text.
func (h *JSONHandler) readValue() (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) Present(ctx context.Context, v View) (dialog.Answer, error) {
	if err := h.Encoder.Encode(Event{Type: "dialog", View: &v}); err != nil {
		return dialog.NoAnswer(), err
	}
	if !v.Input {
		return dialog.NoAnswer(), nil
	}

	val, err := h.readValue()
	if err != nil {
		return dialog.NoAnswer(), err
	}
	if v.Kind != domain.KindSelect {
		return dialog.Reply(val), nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 || n >= len(v.Choices) {
		return dialog.NoAnswer(), fmt.Errorf("%w: %q", ErrInvalidChoice, val)
	}
	return dialog.Choose(n), nil
}

func (h *JSONHandler) Notice(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: "notice", Message: msg})
}

func (h *JSONHandler) ReadCommand(ctx context.Context) (string, error) {
	return h.readValue()
}
