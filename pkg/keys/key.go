// Package keys defines the Key value produced by the terminal decoder, along
// with its textual notation and wire encoding.
package keys

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Key represents a single keyboard input, assembled from one byte or a short
// escape sequence.
type Key struct {
	// Code is the byte value of the key, possibly adjusted: Ctrl-letters carry
	// the letter, arrows carry the ANSI direction letter ('A' to 'D') or the
	// final byte of an extended sequence.
	Code uint32
	Mod  Mod
}

// Mod is a bitmask of modifiers. The bit assignments are part of the wire
// encoding and must not change.
type Mod uint32

// Values for Mod.
const (
	// Shift is set on uppercase letters and on Shift-modified arrows.
	Shift Mod = 1 << iota
	Ctrl
	// Alt is the alt modifier, traditionally known as the meta modifier.
	Alt
	// Arrow marks keys decoded from a CSI arrow sequence.
	Arrow
	Function
	Enter
	Escape
)

// Codes of keys that have a fixed code.
const (
	Up    uint32 = 'A'
	Down  uint32 = 'B'
	Right uint32 = 'C'
	Left  uint32 = 'D'

	EnterCode uint32 = '\n'
	EscCode   uint32 = 0x1b
	Backspace uint32 = 0x7f
	SpaceCode uint32 = ' '
)

// K constructs a new Key.
func K(code uint32, mods ...Mod) Key {
	var mod Mod
	for _, m := range mods {
		mod |= m
	}
	return Key{code, mod}
}

// IsZero reports whether k is the zero Key, which the decoder produces for
// sequences it does not recognize as well as for a NUL byte.
func (k Key) IsZero() bool { return k == Key{} }

var arrowNames = map[uint32]string{
	Up: "Up", Down: "Down", Right: "Right", Left: "Left",
}

var codeNames = map[uint32]string{
	Backspace: "Backspace", SpaceCode: "Space",
}

func (k Key) String() string {
	var sb strings.Builder
	if k.Mod&Ctrl != 0 {
		sb.WriteString("Ctrl-")
	}
	if k.Mod&Alt != 0 {
		sb.WriteString("Alt-")
	}
	if k.Mod&Shift != 0 {
		sb.WriteString("Shift-")
	}
	if k.Mod&Function != 0 {
		sb.WriteString("Fn-")
	}

	switch {
	case k.Mod&Arrow != 0:
		if name, ok := arrowNames[k.Code]; ok {
			sb.WriteString(name)
		} else {
			sb.WriteString("Arrow-" + codeString(k.Code))
		}
	case k.Mod&Enter != 0:
		sb.WriteString("Enter")
	case k.Mod&Escape != 0:
		sb.WriteString("Esc")
	default:
		sb.WriteString(codeString(k.Code))
	}
	return sb.String()
}

func codeString(code uint32) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	if 0x20 < code && code < 0x7f {
		return string(rune(code))
	}
	return fmt.Sprintf("0x%02x", code)
}

// modifierByName maps a lower-cased name to a modifier, so that all of C, c,
// CTRL, Ctrl and ctrl name the Ctrl modifier.
var modifierByName = map[string]Mod{
	"s": Shift, "shift": Shift,
	"a": Alt, "alt": Alt,
	"m": Alt, "meta": Alt,
	"c": Ctrl, "ctrl": Ctrl,
	"fn": Function, "function": Function,
	"arrow": Arrow,
}

// Parse parses a key in the notation produced by Key.String. The syntax is:
//
//	Key = { Mod ('+' | '-') } BareKey
//
//	BareKey = KeyName | SingleByte | HexByte
//
// Keys are normalized to the form the decoder produces: Ctrl-a is the same as
// Ctrl-A, and an unmodified uppercase letter implies Shift. The final byte of
// an arrow key is kept as is.
func Parse(s string) (Key, error) {
	var k Key
	for len(s) > 1 {
		i := strings.IndexAny(s, "+-")
		if i <= 0 {
			break
		}
		modname := strings.ToLower(s[:i])
		mod, ok := modifierByName[modname]
		if !ok {
			return Key{}, fmt.Errorf("bad modifier: %q", modname)
		}
		k.Mod |= mod
		s = s[i+1:]
	}

	switch {
	case len(s) == 1:
		k.Code = uint32(s[0])
	case strings.HasPrefix(s, "0x") && len(s) == 4:
		b, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return Key{}, fmt.Errorf("bad key: %q", s)
		}
		k.Code = uint32(b)
	default:
		if !parseName(s, &k) {
			return Key{}, fmt.Errorf("bad key: %q", s)
		}
	}

	if k.Mod&Arrow == 0 && k.Mod&(Ctrl|Shift) != 0 && 'a' <= k.Code && k.Code <= 'z' {
		k.Code -= 'a' - 'A'
	}
	if k.Mod == 0 && 'A' <= k.Code && k.Code <= 'Z' {
		k.Mod = Shift
	}
	return k, nil
}

func parseName(s string, k *Key) bool {
	for code, name := range arrowNames {
		if strings.EqualFold(s, name) {
			k.Code, k.Mod = code, k.Mod|Arrow
			return true
		}
	}
	for code, name := range codeNames {
		if strings.EqualFold(s, name) {
			k.Code = code
			return true
		}
	}
	switch strings.ToLower(s) {
	case "enter", "return":
		k.Code, k.Mod = EnterCode, k.Mod|Enter
		return true
	case "esc", "escape":
		k.Code, k.Mod = EscCode, k.Mod|Escape
		return true
	}
	return false
}

// EncodedLen is the length of the binary encoding of a Key.
const EncodedLen = 8

var errBadEncodingLen = errors.New("bad key encoding length")

// MarshalBinary encodes the Key as a big-endian uint32 code followed by the
// big-endian uint32 modifier bits.
func (k Key) MarshalBinary() ([]byte, error) {
	b := make([]byte, EncodedLen)
	binary.BigEndian.PutUint32(b, k.Code)
	binary.BigEndian.PutUint32(b[4:], uint32(k.Mod))
	return b, nil
}

// UnmarshalBinary decodes a Key encoded by MarshalBinary.
func (k *Key) UnmarshalBinary(data []byte) error {
	if len(data) != EncodedLen {
		return fmt.Errorf("%w: %d", errBadEncodingLen, len(data))
	}
	k.Code = binary.BigEndian.Uint32(data)
	k.Mod = Mod(binary.BigEndian.Uint32(data[4:]))
	return nil
}

type jsonKey struct {
	Code uint32 `json:"code"`
	Mod  Mod    `json:"mod"`
	Name string `json:"name"`
}

// MarshalJSON encodes the Key as an object with its code, modifier bits and
// name.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonKey{k.Code, k.Mod, k.String()})
}

// UnmarshalJSON decodes the code and modifier bits; the name is ignored.
func (k *Key) UnmarshalJSON(data []byte) error {
	var jk jsonKey
	if err := json.Unmarshal(data, &jk); err != nil {
		return err
	}
	*k = Key{jk.Code, jk.Mod}
	return nil
}
