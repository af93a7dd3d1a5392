package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"liz/internal/ident"
)

const defaultLabel = "None"

type Shortcut struct {
	ID          ident.ID `json:"id"`
	HitNumber   int64    `json:"hit_number"`
	Shortcut    string   `json:"shortcut"`
	Application string   `json:"application"`
	Description string   `json:"description"`
	Comment     string   `json:"comment"`
}

// NewShortcut returns a record with a fresh id and the default labels.
func NewShortcut() *Shortcut {
	return &Shortcut{
		ID:          ident.New(),
		Application: defaultLabel,
		Description: defaultLabel,
	}
}

// shortcutJSON mirrors Shortcut with optional fields so missing keys can
// fall back to defaults.
type shortcutJSON struct {
	ID          *ident.ID `json:"id"`
	HitNumber   *int64    `json:"hit_number"`
	Shortcut    *string   `json:"shortcut"`
	Application *string   `json:"application"`
	Description *string   `json:"description"`
	Comment     *string   `json:"comment"`
}

func (s *Shortcut) UnmarshalJSON(data []byte) error {
	var raw shortcutJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Shortcut{Application: defaultLabel, Description: defaultLabel}
	if raw.ID != nil {
		out.ID = *raw.ID
	} else {
		out.ID = ident.New()
	}
	if raw.HitNumber != nil {
		if *raw.HitNumber < 0 {
			return fmt.Errorf("hit_number must not be negative, got %d", *raw.HitNumber)
		}
		out.HitNumber = *raw.HitNumber
	}
	if raw.Shortcut != nil {
		out.Shortcut = *raw.Shortcut
	}
	if raw.Application != nil {
		out.Application = *raw.Application
	}
	if raw.Description != nil {
		out.Description = *raw.Description
	}
	if raw.Comment != nil {
		out.Comment = *raw.Comment
	}
	*s = out
	return nil
}

// ParseShortcut decodes one record from its JSON text.
func ParseShortcut(raw string) (*Shortcut, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty shortcut json")
	}
	var sc Shortcut
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// JSON encodes the record. Encoding a Shortcut cannot fail.
func (s *Shortcut) JSON() string {
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("types: encode shortcut: %v", err))
	}
	return string(data)
}

// Apply copies every mutable field of next into s; the id is kept.
func (s *Shortcut) Apply(next *Shortcut) {
	s.HitNumber = next.HitNumber
	s.Shortcut = next.Shortcut
	s.Application = next.Application
	s.Description = next.Description
	s.Comment = next.Comment
}

func (s *Shortcut) Clone() *Shortcut {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// DedupKey is the composite uniqueness key; hit_number is deliberately
// not part of it.
type DedupKey struct {
	Shortcut    string
	Application string
	Description string
	Comment     string
}

func (s *Shortcut) DedupKey() DedupKey {
	return DedupKey{
		Shortcut:    s.Shortcut,
		Application: s.Application,
		Description: s.Description,
		Comment:     s.Comment,
	}
}

// Format fills a display template. Recognized placeholders are #id,
// #hit_number, #shortcut, #application, #description and #comment.
func (s *Shortcut) Format(tmpl string) string {
	replacer := strings.NewReplacer(
		"#id", s.ID.String(),
		"#hit_number", strconv.FormatInt(s.HitNumber, 10),
		"#shortcut", s.Shortcut,
		"#application", s.Application,
		"#description", s.Description,
		"#comment", s.Comment,
	)
	return replacer.Replace(tmpl)
}

func CloneShortcuts(in []*Shortcut) []*Shortcut {
	if in == nil {
		return nil
	}
	out := make([]*Shortcut, 0, len(in))
	for _, sc := range in {
		out = append(out, sc.Clone())
	}
	return out
}
