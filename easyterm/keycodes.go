// This file is part of cpvc.
//
// cpvc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpvc is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpvc.  If not, see <https://www.gnu.org/licenses/>.


package easyterm

// list of ASCII codes for non-alphanumeric characters
const (
	KeyInterrupt      = 3  // end-of-text character
	KeySuspend        = 26 // substitute character
	KeyTab            = 9
	KeyCarriageReturn = 13
	KeyEsc            = 27
	KeyBackspace      = 8
	KeyDelete         = 127
)

// list of ASCII code for characters that can follow KeyEsc
const (
	EscCursor = 91
)

// list of ASCII code for characters that can follow EscCursor
const (
	CursorUp       = 'A'
	CursorDown     = 'B'
	CursorForward  = 'C'
	CursorBackward = 'D'
)

// Key is a single decoded key press. Cursor is zero for ordinary keys and
// one of the Cursor* values for cursor keys, in which case Code is KeyEsc.
type Key struct {
	Code   byte
	Cursor byte
}

// Decode the first key in the input. Returns the number of bytes used, which
// is zero if more input is required to complete an escape sequence.
//
// A lone escape byte is returned as KeyEsc only when it is the last byte in
// the input. Unrecognised escape sequences are returned as KeyEsc with the
// sequence consumed.
func Decode(b []byte) (Key, int) {
	if len(b) == 0 {
		return Key{}, 0
	}

	if b[0] != KeyEsc {
		return Key{Code: b[0]}, 1
	}

	if len(b) == 1 {
		return Key{Code: KeyEsc}, 1
	}

	if b[1] != EscCursor {
		return Key{Code: KeyEsc}, 1
	}

	if len(b) < 3 {
		return Key{}, 0
	}

	switch b[2] {
	case CursorUp, CursorDown, CursorForward, CursorBackward:
		return Key{Code: KeyEsc, Cursor: b[2]}, 3
	}

	// skip parameter bytes of longer sequences, such as "ESC [ 3 ~"
	for i := 2; i < len(b); i++ {
		if b[i] >= 0x40 && b[i] <= 0x7e {
			return Key{Code: KeyEsc}, i + 1
		}
	}
	return Key{}, 0
}
