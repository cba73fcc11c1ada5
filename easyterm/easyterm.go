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


// Package easyterm is a wrapper for "github.com/pkg/term". It puts the
// controlling terminal into raw mode and decodes the bytes read from it into
// key presses, including the escape sequences sent for the cursor keys.
//
// Terminals do not report key releases. A key press is a single event.
package easyterm

import (
	"io"

	"github.com/pkg/term"

	"github.com/alybaek2/cpvc-sub002/curated"
)

// Terminal is the raw mode input terminal.
type Terminal struct {
	t   *term.Term
	buf []byte
	n   int
}

// Open the named terminal device. Usually "/dev/tty".
func Open(device string) (*Terminal, error) {
	t, err := term.Open(device)
	if err != nil {
		return nil, curated.Errorf("easyterm: %v", err)
	}
	return &Terminal{t: t, buf: make([]byte, 16)}, nil
}

// RawMode puts the terminal into raw mode. Restore() returns the terminal to
// the mode it was in when it was opened.
func (pt *Terminal) RawMode() error {
	if err := pt.t.SetRaw(); err != nil {
		return curated.Errorf("easyterm: %v", err)
	}
	return nil
}

// Restore the terminal to the mode it was in when it was opened.
func (pt *Terminal) Restore() error {
	if err := pt.t.Restore(); err != nil {
		return curated.Errorf("easyterm: %v", err)
	}
	return nil
}

// Close restores the terminal and releases the device.
func (pt *Terminal) Close() error {
	_ = pt.t.Restore()
	if err := pt.t.Close(); err != nil {
		return curated.Errorf("easyterm: %v", err)
	}
	return nil
}

// Write implements the io.Writer interface. Newlines are translated for the
// benefit of raw mode.
func (pt *Terminal) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p))
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := pt.t.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ReadKey blocks until a key is pressed.
func (pt *Terminal) ReadKey() (Key, error) {
	for {
		if pt.n > 0 {
			k, used := Decode(pt.buf[:pt.n])
			if used > 0 {
				copy(pt.buf, pt.buf[used:pt.n])
				pt.n -= used
				return k, nil
			}
		}

		// an incomplete escape sequence that fills the buffer is discarded
		if pt.n == len(pt.buf) {
			pt.n = 0
		}

		n, err := pt.t.Read(pt.buf[pt.n:])
		if err != nil {
			if err == io.EOF {
				return Key{}, err
			}
			return Key{}, curated.Errorf("easyterm: %v", err)
		}
		pt.n += n
	}
}
