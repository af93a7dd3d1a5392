// Package encoder turns shortcut text such as "meta+s tab [STR]+ #hash" into
// the event sequence consumed by an injector:
//
//	126.1 s.1 s.0 126.0 15.1 15.0 [STR]+ #hash[STR]
//
// Each directive is <code>.<1|0> (press/release); typing spans are wrapped
// in [STR]+ ...[STR]. Encode never fails: text it cannot read as keys is
// typed literally.
package encoder

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"liz/internal/types"
)

const (
	TextMarker = "[STR]"
	textPrefix = "+"

	pressSuffix   = ".1"
	releaseSuffix = ".0"
)

// Encode converts shortcut text into an event sequence using keymap to
// translate key names into codes.
func Encode(text string, keymap types.Keymap) string {
	var out []string
	for _, block := range strings.Split(text, TextMarker) {
		if block == "" {
			continue
		}
		if isTextBlock(block) {
			out = append(out, typeDirective(strings.TrimSpace(block[len(textPrefix):])))
			continue
		}
		for _, token := range strings.Fields(block) {
			out = append(out, encodeToken(token, keymap)...)
		}
	}
	return strings.Join(out, " ")
}

// isTextBlock reports whether a [STR]-delimited block is a typing span:
// a '+' followed by whitespace.
func isTextBlock(block string) bool {
	rest, ok := strings.CutPrefix(block, textPrefix)
	if !ok || rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsSpace(r)
}

func encodeToken(token string, keymap types.Keymap) []string {
	if token != "+" && strings.Contains(token, "+") {
		return encodeCombo(splitCombo(token), keymap)
	}
	name := strings.ToLower(token)
	if code, ok := keymap.Lookup(name); ok {
		return tap(code)
	}
	if utf8.RuneCountInString(token) == 1 {
		return tap(token)
	}
	if IsSymbolicKey(name) {
		return tap(name)
	}
	return []string{typeDirective(token)}
}

// encodeCombo presses keys left to right and releases them in reverse.
func encodeCombo(keys []string, keymap types.Keymap) []string {
	codes := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.ToLower(key)
		if code, ok := keymap.Lookup(name); ok {
			codes = append(codes, code)
			continue
		}
		codes = append(codes, name)
	}
	out := make([]string, 0, 2*len(codes))
	for _, code := range codes {
		out = append(out, code+pressSuffix)
	}
	for i := len(codes) - 1; i >= 0; i-- {
		out = append(out, codes[i]+releaseSuffix)
	}
	return out
}

// splitCombo splits "ctrl+shift+p" on '+'. A run of empty parts, as in
// "ctrl++" or "+a", names the plus key itself.
func splitCombo(token string) []string {
	parts := strings.Split(token, "+")
	keys := make([]string, 0, len(parts))
	inEmptyRun := false
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			if !inEmptyRun {
				keys = append(keys, "+")
			}
			inEmptyRun = true
			continue
		}
		inEmptyRun = false
		keys = append(keys, part)
	}
	return keys
}

func tap(code string) []string {
	return []string{code + pressSuffix, code + releaseSuffix}
}

func typeDirective(text string) string {
	return TextMarker + textPrefix + " " + text + TextMarker
}
