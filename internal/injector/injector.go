package injector

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"liz/internal/encoder"
	"liz/internal/logging"
)

const (
	NameXdotool = "xdotool"
	NameDryRun  = "dry-run"
)

// Injector replays an encoded event sequence into the focused window.
type Injector interface {
	Inject(ctx context.Context, sequence string, delay time.Duration) error
}

// Backend performs the primitive events of a sequence.
type Backend interface {
	Key(ctx context.Context, code string, press bool) error
	Type(ctx context.Context, text string) error
}

// Player drives a Backend block by block, waiting delay before each block.
type Player struct {
	Backend Backend
	Sleep   func(ctx context.Context, d time.Duration) error
	Logger  logging.Logger
}

func NewPlayer(backend Backend, logger logging.Logger) *Player {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Player{Backend: backend, Sleep: sleepContext, Logger: logger}
}

func (p *Player) Inject(ctx context.Context, sequence string, delay time.Duration) error {
	if p == nil || p.Backend == nil {
		return fmt.Errorf("injector backend is not configured")
	}
	blocks, err := encoder.ParseSequence(sequence)
	if err != nil {
		return err
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	for i, block := range blocks {
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		if block.IsText {
			if err := p.Backend.Type(ctx, block.Text); err != nil {
				return fmt.Errorf("type block %d: %w", i, err)
			}
			continue
		}
		for _, d := range block.Keys {
			if err := p.Backend.Key(ctx, d.Code, d.Press); err != nil {
				return fmt.Errorf("key %s: %w", d, err)
			}
		}
	}
	logger.Debug("sequence_injected", logging.F("blocks", len(blocks)), logging.F("delay", delay))
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// New builds the injector named by the rhythm's injector setting. The
// dry-run injector prints events to out instead of touching the desktop.
func New(name string, out io.Writer, logger logging.Logger) (Injector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameXdotool:
		return NewPlayer(NewCommandBackend(NameXdotool), logger), nil
	case NameDryRun:
		return NewPlayer(NewWriterBackend(out), logger), nil
	default:
		return nil, fmt.Errorf("unsupported injector %q", name)
	}
}
