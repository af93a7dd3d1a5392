package encoder

// symbolicKeys are names every injector backend understands without a
// keymap entry.
var symbolicKeys = map[string]struct{}{
	"ctrl": {}, "control": {},
	"alt":   {},
	"shift": {},
	"win":   {}, "meta": {}, "cmd": {},
	"enter": {}, "return": {},
	"esc": {}, "escape": {},
	"space":     {},
	"tab":       {},
	"backspace": {},

	"up": {}, "down": {}, "left": {}, "right": {},

	"f1": {}, "f2": {}, "f3": {}, "f4": {}, "f5": {}, "f6": {},
	"f7": {}, "f8": {}, "f9": {}, "f10": {}, "f11": {}, "f12": {},

	"home": {}, "end": {},
	"pageup": {}, "pagedown": {},
	"delete": {}, "insert": {},
	"capslock": {},
}

// IsSymbolicKey reports whether name (lowercase) is a named key such as
// "pageup" or "f5".
func IsSymbolicKey(name string) bool {
	_, ok := symbolicKeys[name]
	return ok
}
