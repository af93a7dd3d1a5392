package encoder

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedSequence = errors.New("malformed event sequence")

// Directive is one press or release of a key code.
type Directive struct {
	Code  string
	Press bool
}

func (d Directive) String() string {
	if d.Press {
		return d.Code + pressSuffix
	}
	return d.Code + releaseSuffix
}

// Block is a unit the injector plays after its inter-block delay: either
// a run of key directives or a text span to type.
type Block struct {
	Keys   []Directive
	Text   string
	IsText bool
}

// ParseSequence splits an encoded event sequence back into blocks.
func ParseSequence(seq string) ([]Block, error) {
	var blocks []Block
	for _, part := range strings.Split(seq, TextMarker) {
		if part == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(part, textPrefix+" "); ok {
			blocks = append(blocks, Block{Text: rest, IsText: true})
			continue
		}
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		keys := make([]Directive, 0, len(fields))
		for _, field := range fields {
			d, err := parseDirective(field)
			if err != nil {
				return nil, err
			}
			keys = append(keys, d)
		}
		blocks = append(blocks, Block{Keys: keys})
	}
	return blocks, nil
}

// parseDirective splits on the last '.', so codes such as "." survive.
func parseDirective(field string) (Directive, error) {
	idx := strings.LastIndexByte(field, '.')
	if idx <= 0 {
		return Directive{}, fmt.Errorf("%w: %q has no event code", ErrMalformedSequence, field)
	}
	code, event := field[:idx], field[idx+1:]
	switch event {
	case "1":
		return Directive{Code: code, Press: true}, nil
	case "0":
		return Directive{Code: code}, nil
	default:
		return Directive{}, fmt.Errorf("%w: %q has unknown event code %q", ErrMalformedSequence, field, event)
	}
}
