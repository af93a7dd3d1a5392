package injector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Event is one primitive action observed by a Recorder.
type Event struct {
	Code  string
	Press bool
	Text  string
}

func (e Event) String() string {
	if e.Text != "" || e.Code == "" {
		return "type " + e.Text
	}
	if e.Press {
		return "press " + e.Code
	}
	return "release " + e.Code
}

// Recorder keeps every event it receives. A non-nil Err is returned from
// every call after the event is recorded.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Key(_ context.Context, code string, press bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Code: code, Press: press})
	return r.Err
}

func (r *Recorder) Type(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Text: text})
	return r.Err
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

type WriterBackend struct {
	out io.Writer
}

func NewWriterBackend(out io.Writer) *WriterBackend {
	if out == nil {
		out = os.Stdout
	}
	return &WriterBackend{out: out}
}

func (w *WriterBackend) Key(_ context.Context, code string, press bool) error {
	_, err := fmt.Fprintln(w.out, Event{Code: code, Press: press})
	return err
}

func (w *WriterBackend) Type(_ context.Context, text string) error {
	_, err := fmt.Fprintf(w.out, "type %q\n", text)
	return err
}

// CommandBackend shells out to an xdotool compatible binary.
type CommandBackend struct {
	name string
	run  func(ctx context.Context, name string, args ...string) error
}

func NewCommandBackend(name string) *CommandBackend {
	if strings.TrimSpace(name) == "" {
		name = "xdotool"
	}
	return &CommandBackend{name: name, run: runCommand}
}

func (c *CommandBackend) Key(ctx context.Context, code string, press bool) error {
	verb := "keyup"
	if press {
		verb = "keydown"
	}
	return c.run(ctx, c.name, verb, xdotoolKey(code))
}

func (c *CommandBackend) Type(ctx context.Context, text string) error {
	return c.run(ctx, c.name, "type", "--", text)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	stderr := &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

var xdotoolKeys = map[string]string{
	"ctrl":      "ctrl",
	"control":   "ctrl",
	"alt":       "alt",
	"shift":     "shift",
	"win":       "super",
	"meta":      "super",
	"cmd":       "super",
	"enter":     "Return",
	"return":    "Return",
	"esc":       "Escape",
	"escape":    "Escape",
	"space":     "space",
	"tab":       "Tab",
	"backspace": "BackSpace",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
	"pageup":    "Prior",
	"pagedown":  "Next",
	"delete":    "Delete",
	"insert":    "Insert",
	"capslock":  "Caps_Lock",
	"+":         "plus",
	".":         "period",
	",":         "comma",
	"-":         "minus",
	"/":         "slash",
	";":         "semicolon",
	":":         "colon",
}

// xdotoolKey maps symbolic names to X keysym names; anything else,
// including numeric codes from a keymap, passes through.
func xdotoolKey(code string) string {
	if name, ok := xdotoolKeys[code]; ok {
		return name
	}
	lower := strings.ToLower(code)
	if len(lower) >= 2 && lower[0] == 'f' && isDigits(lower[1:]) {
		return "F" + lower[1:]
	}
	return code
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
