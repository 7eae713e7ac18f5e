package hook

import "strings"

// Result classifies what a translated key means to the trigger engine.
type Result int

const (
	// None means the key has no text effect and should be ignored.
	None Result = iota
	// Whitespace means the key should reset the typed-character buffer.
	Whitespace
	// Char means Translate produced a literal character to append.
	Char
)

// shiftedSymbols is the ANSI US-layout shift mapping named in spec §4.2.
var shiftedSymbols = map[string]rune{
	"1": '!', "2": '@', "3": '#', "4": '$', "5": '%',
	"6": '^', "7": '&', "8": '*', "9": '(', "0": ')',
	"-": '_', "=": '+', "[": '{', "]": '}', ";": ':',
	"'": '"', ",": '<', ".": '>', "/": '?', "\\": '|', "`": '~',
}

// specials maps whitespace-producing key names to the Whitespace sentinel.
var specials = map[string]bool{
	"space": true, "enter": true, "tab": true,
}

// ShiftKeyNames is the set of key names that toggle shift state rather
// than producing a character.
var ShiftKeyNames = map[string]bool{
	"shift": true, "left shift": true, "right shift": true,
}

// Translate converts a normalized key name plus modifier state into
// either a literal character, a buffer-reset request, or nothing, per
// the ordered rules of spec §4.2. The rune return is only meaningful
// when result == Char.
func Translate(name string, shiftActive, capsLock bool) (rune, Result) {
	if len(name) == 1 {
		r := rune(name[0])
		if r >= 'a' && r <= 'z' {
			if shiftActive != capsLock { // XOR
				return r - ('a' - 'A'), Char
			}
			return r, Char
		}
		if shiftActive {
			if shifted, ok := shiftedSymbols[name]; ok {
				return shifted, Char
			}
		}
		return r, Char
	}
	if specials[strings.ToLower(name)] {
		return 0, Whitespace
	}
	return 0, None
}
