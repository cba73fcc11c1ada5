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
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alybaek2/cpvc-sub002/easyterm"
	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/test"
)

const testPrefs = "controller.throttle::false; controller.ticksPerSlice::1000; controller.systemBookmarkInterval::0"

type harness struct {
	t      *testing.T
	config string
	file   string
}

func newHarness(t *testing.T) *harness {
	dir := t.TempDir()
	return &harness{
		t:      t,
		config: filepath.Join(dir, "preferences"),
		file:   filepath.Join(dir, "machine.cpvc"),
	}
}

func (h *harness) execute(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", h.config, "--prefs", testPrefs))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) bookmarks() []history.Event {
	h.t.Helper()
	f, err := read(h.file)
	test.DemandSuccess(h.t, err)
	return f.Tree.Bookmarks()
}

func TestCommandLine(t *testing.T) {
	h := newHarness(t)

	out, err := h.execute("new", h.file, "--name", "test machine")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.HasPrefix(out, "created test machine"))

	// a machine file cannot be created twice
	_, err = h.execute("new", h.file)
	test.ExpectFailure(t, err)

	test.DemandEquality(t, len(h.bookmarks()), 1)

	out, err = h.execute("run", h.file, "--ticks", "5000", "--bookmark")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "bookmark"))

	bm := h.bookmarks()
	test.DemandEquality(t, len(bm), 2)
	test.ExpectSuccess(t, bm[1].UserBookmark)
	test.ExpectSuccess(t, bm[1].Tick >= 5000)

	out, err = h.execute("info", h.file)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "test machine"))
	test.ExpectSuccess(t, strings.Contains(out, "bookmarks: 2"))

	out, err = h.execute("bookmarks", h.file)
	test.DemandSuccess(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	test.DemandEquality(t, len(lines), 2)
	test.ExpectSuccess(t, strings.HasPrefix(lines[1], "*"))

	_, err = h.execute("jump", h.file, fmt.Sprint(bm[0].ID))
	test.DemandSuccess(t, err)
	f, err := read(h.file)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, f.Tree.CurrentID(), bm[0].ID)

	out, err = h.execute("replay", h.file, fmt.Sprint(bm[0].ID), fmt.Sprint(bm[1].ID))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.HasPrefix(out, fmt.Sprintf("replayed to %d", bm[1].Tick)))

	// a replay does not change the position in the history
	f, err = read(h.file)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, f.Tree.CurrentID(), bm[0].ID)

	_, err = h.execute("compact", h.file, "--diffs")
	test.DemandSuccess(t, err)
	f, err = read(h.file)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, f.Diffs)
	test.ExpectEquality(t, f.Tree.Len(), 3)

	out, err = h.execute("dot", h.file)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "digraph"))

	_, err = h.execute("delete-branches", h.file, "not-a-number")
	test.ExpectFailure(t, err)

	_, err = h.execute("delete-bookmarks", h.file, fmt.Sprint(bm[1].ID))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(h.bookmarks()), 1)
}

func TestPrefsCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.execute("prefs", "--save")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(out, "controller.ticksPerSlice :: 1000"))

	// the saved file includes the overrides
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"prefs", "--config", h.config})
	test.DemandSuccess(t, cmd.Execute())
	test.ExpectSuccess(t, strings.Contains(buf.String(), "controller.ticksPerSlice :: 1000"))
}

func TestMissingFile(t *testing.T) {
	h := newHarness(t)
	_, err := h.execute("info", h.file)
	test.ExpectFailure(t, err)
	_, err = h.execute("run", h.file)
	test.ExpectFailure(t, err)
}

func TestInterpret(t *testing.T) {
	h := newHarness(t)
	_, err := h.execute("new", h.file)
	test.DemandSuccess(t, err)

	m, err := (&options{config: h.config, prefs: testPrefs}).load(h.file)
	test.DemandSuccess(t, err)
	defer m.Close()

	quit, err := interpret(m, easyterm.Key{Code: 'B' - '@'})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, quit, false)
	var n int
	test.DemandSuccess(t, m.With(func(_ emulation.Engine, tree *history.Tree) error {
		n = len(tree.Bookmarks())
		return nil
	}))
	test.ExpectEquality(t, n, 2)

	quit, err = interpret(m, easyterm.Key{Code: easyterm.KeyEsc})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, quit, true)

	quit, _ = interpret(m, easyterm.Key{Code: easyterm.KeyInterrupt})
	test.ExpectEquality(t, quit, true)

	_, ok := matrixKey('a')
	test.ExpectSuccess(t, ok)
	_, ok = matrixKey(easyterm.KeyTab)
	test.ExpectEquality(t, ok, false)
	_, ok = matrixKey(127)
	test.ExpectEquality(t, ok, false)
}

func TestLogEcho(t *testing.T) {
	h := newHarness(t)

	ring, err := test.NewRingWriter(256)
	test.DemandSuccess(t, err)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(ring)
	cmd.SetArgs([]string{"new", h.file, "--name", "echoed", "--log", "--config", h.config})
	test.DemandSuccess(t, cmd.Execute())

	// the last thing the machine does is write the machine file and close
	test.ExpectSuccess(t, strings.Contains(ring.String(), "closed echoed"))

	// echo is turned off again by the next command
	ring.Reset()
	_, err = h.execute("info", h.file)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ring.String(), "")
}
