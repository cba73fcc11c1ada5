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


package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/alybaek2/cpvc-sub002/easyterm"
	"github.com/alybaek2/cpvc-sub002/machine"
	"github.com/alybaek2/cpvc-sub002/notifications"
	"github.com/alybaek2/cpvc-sub002/refcore"
	"github.com/alybaek2/cpvc-sub002/request"
	"github.com/alybaek2/cpvc-sub002/wavwriter"
)

const interactiveHelp = `keys are sent to the machine as they are typed
  TAB      start/stop         ^B  add bookmark
  UP       next bookmark      ^U  undo
  DOWN     previous bookmark  ^R  reset machine
  LEFT     reverse            ^T  toggle reversibility
  RIGHT    stop reversing     ESC quit
`

// keyboard matrix position for a typed character. the printable ASCII
// characters map on to the keyboard matrix in order.
func matrixKey(b byte) (byte, bool) {
	if b < ' ' || int(b-' ') >= refcore.NumKeys {
		return 0, false
	}
	return b - ' ', true
}

// interpret a single key press. returns true if the interactive session
// should end.
func interpret(m *machine.Machine, k easyterm.Key) (bool, error) {
	if k.Code == easyterm.KeyEsc {
		switch k.Cursor {
		case 0:
			return true, nil
		case easyterm.CursorUp:
			_, err := m.SeekToNextBookmark()
			return false, err
		case easyterm.CursorDown:
			_, err := m.SeekToPreviousBookmark()
			return false, err
		case easyterm.CursorBackward:
			return false, m.Reverse()
		case easyterm.CursorForward:
			return false, m.ReverseStop()
		}
		return false, nil
	}

	switch k.Code {
	case easyterm.KeyInterrupt:
		return true, nil
	case easyterm.KeyTab:
		return false, m.ToggleRunning()
	case 'B' - '@':
		_, err := m.AddBookmark()
		return false, err
	case 'U' - '@':
		return false, m.Undo()
	case 'R' - '@':
		return false, m.Submit(request.MachineReset())
	case 'T' - '@':
		return false, m.ToggleReversibilityEnabled()
	}

	if key, ok := matrixKey(k.Code); ok {
		// terminals do not report key releases so the key is released
		// immediately
		if err := m.Submit(request.Key(key, true)); err != nil {
			return false, err
		}
		return false, m.Submit(request.Key(key, false))
	}

	return false, nil
}

// report notifications from the machine to the terminal.
func report(output io.Writer, sub *notifications.Subscription, wg *sync.WaitGroup) {
	defer wg.Done()
	for ev := range sub.Events() {
		switch ev.Notice {
		case notifications.TicksChanged, notifications.RequestApplied:
			continue
		}
		fmt.Fprintf(output, "%s\n", ev)
	}
}

// interact runs the machine with keyboard input from the terminal.
func interact(m *machine.Machine, aw *wavwriter.WavWriter) error {
	pt, err := easyterm.Open("/dev/tty")
	if err != nil {
		return err
	}
	defer pt.Close()

	if err := pt.RawMode(); err != nil {
		return err
	}

	fmt.Fprint(pt, interactiveHelp)

	sub := m.Subscribe(64)
	var wg sync.WaitGroup
	wg.Add(1)
	go report(pt, sub, &wg)
	defer func() {
		sub.Close()
		wg.Wait()
	}()

	// audio is captured every time the machine reports that it has advanced
	var audio *notifications.Subscription
	if aw != nil {
		audio = m.Subscribe(64)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range audio.Events() {
				if ev.Notice == notifications.TicksChanged {
					capture(m, aw)
				}
			}
		}()
		defer audio.Close()
	}

	if err := m.Start(); err != nil {
		return err
	}

	for {
		k, err := pt.ReadKey()
		if err != nil {
			break
		}

		quit, err := interpret(m, k)
		if err != nil {
			fmt.Fprintf(pt, "* %v\n", err)
		}
		if quit {
			break
		}
	}

	return m.Stop()
}
