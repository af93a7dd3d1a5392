package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StateCode classifies a response: OK on success, FAIL for a data
// condition the caller can act on, BUG for a malformed request.
type StateCode int

const (
	OK StateCode = iota
	FAIL
	BUG
)

func (c StateCode) String() string {
	switch c {
	case OK:
		return "OK"
	case FAIL:
		return "FAIL"
	case BUG:
		return "BUG"
	default:
		return fmt.Sprintf("StateCode(%d)", int(c))
	}
}

func (c StateCode) MarshalText() ([]byte, error) {
	switch c {
	case OK, FAIL, BUG:
		return []byte(c.String()), nil
	default:
		return nil, fmt.Errorf("unknown state code %d", int(c))
	}
}

func (c *StateCode) UnmarshalText(data []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(data))) {
	case "OK":
		*c = OK
	case "FAIL":
		*c = FAIL
	case "BUG":
		*c = BUG
	default:
		return fmt.Errorf("unknown state code %q", string(data))
	}
	return nil
}

type Command struct {
	Action string   `json:"action"`
	Args   []string `json:"args"`
}

type Response struct {
	Code    StateCode `json:"code"`
	Results []string  `json:"results"`
}

// ParseCommand decodes one JSON command line.
func ParseCommand(line []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return Command{}, err
	}
	if strings.TrimSpace(cmd.Action) == "" {
		return Command{}, fmt.Errorf("command action is required")
	}
	return cmd, nil
}

func ok(results ...string) Response {
	return Response{Code: OK, Results: nonNil(results)}
}

func fail(results ...string) Response {
	return Response{Code: FAIL, Results: nonNil(results)}
}

func bug(format string, args ...any) Response {
	return Response{Code: BUG, Results: []string{fmt.Sprintf(format, args...)}}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
