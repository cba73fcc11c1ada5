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
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/govern"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/machine"
	"github.com/alybaek2/cpvc-sub002/paths"
	"github.com/alybaek2/cpvc-sub002/refcore"
	"github.com/alybaek2/cpvc-sub002/statsview"
	"github.com/alybaek2/cpvc-sub002/wavwriter"
)

// the clock speed of the reference engine
const ticksPerSecond = 4000000

// how often the machine is checked while waiting for it to reach a tick
const pollInterval = 20 * time.Millisecond

// capture the audio produced by the engine since the last capture. does
// nothing if there is no wav writer.
func capture(m *machine.Machine, aw *wavwriter.WavWriter) {
	if aw == nil {
		return
	}
	_ = m.With(func(e emulation.Engine, _ *history.Tree) error {
		aw.Capture(e)
		return nil
	})
}

// newWav prepares a wav writer for the flag value. the special value "auto"
// creates a unique file name in the current directory.
func newWav(m *machine.Machine, fn string) (*wavwriter.WavWriter, error) {
	if fn == "" {
		return nil, nil
	}
	if fn == "auto" {
		fn = paths.UniqueFilename("audio", m.Name()) + ".wav"
	}
	return wavwriter.New(fn, ticksPerSecond/refcore.TicksPerSample)
}

// wait until done() returns true, the machine stops running of its own
// accord or the process is interrupted.
func wait(m *machine.Machine, aw *wavwriter.WavWriter, running govern.State, done func() bool) error {
	sub := m.Subscribe(64)
	defer sub.Close()

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer signal.Stop(intChan)

	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for !done() {
		select {
		case <-sub.Events():
		case <-tick.C:
		case <-intChan:
			return nil
		}

		capture(m, aw)

		if m.State().State != running {
			if status := m.Status(); status != "" {
				return curated.Errorf("machine stopped: %s", status)
			}
			return nil
		}
	}

	return nil
}

func newRunCmd(opts *options) *cobra.Command {
	var ticks uint64
	var interactive bool
	var wav string
	var stats bool
	var bookmark bool

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run the machine from its current position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (rerr error) {
			m, err := opts.load(args[0])
			if err != nil {
				return err
			}
			defer closeMachine(m, &rerr)

			if stats {
				statsview.Launch(cmd.ErrOrStderr())
				defer statsview.Stop()
			}

			aw, err := newWav(m, wav)
			if err != nil {
				return err
			}

			if interactive {
				err = interact(m, aw)
			} else {
				target := m.Ticks() + ticks
				if err = m.Start(); err != nil {
					return err
				}
				err = wait(m, aw, govern.Running, func() bool {
					return m.Ticks() >= target
				})
				if serr := m.Stop(); serr != nil && err == nil {
					err = serr
				}
				capture(m, aw)
			}

			if aw != nil {
				if werr := aw.EndMixing(); werr != nil && err == nil {
					err = werr
				}
			}

			if err != nil {
				return err
			}

			if bookmark {
				id, err := m.AddBookmark()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "bookmark %d @ %d\n", id, m.Ticks())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stopped @ %d\n", m.Ticks())
			return nil
		},
	}

	cmd.Flags().Uint64Var(&ticks, "ticks", ticksPerSecond, "number of ticks to run for")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "take keyboard input from the terminal until escape is pressed")
	cmd.Flags().StringVar(&wav, "wav", "", "record audio to wav file. 'auto' creates a unique filename")
	cmd.Flags().BoolVar(&stats, "statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	cmd.Flags().BoolVar(&bookmark, "bookmark", false, "add a user bookmark after running")

	return cmd
}

func newReplayCmd(opts *options) *cobra.Command {
	var wav string

	cmd := &cobra.Command{
		Use:   "replay FILE BEGIN END",
		Short: "Replay the history between a bookmark and a later event",
		Long: `Replay the history between a bookmark and a later event. The history and
the live machine are not changed by a replay.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (rerr error) {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}

			m, err := opts.load(args[0])
			if err != nil {
				return err
			}
			defer closeMachine(m, &rerr)

			aw, err := newWav(m, wav)
			if err != nil {
				return err
			}

			if err := m.StartReplay(ids[0], ids[1]); err != nil {
				return err
			}

			err = wait(m, aw, govern.Replaying, m.ReplayFinished)
			capture(m, aw)

			var register uint32
			var tick uint64
			_ = m.With(func(e emulation.Engine, _ *history.Tree) error {
				tick = e.CurrentTick()
				if c, ok := e.(*refcore.Core); ok {
					register = c.Register()
				}
				return nil
			})

			if serr := m.StopReplay(); serr != nil && err == nil {
				err = serr
			}

			if aw != nil {
				if werr := aw.EndMixing(); werr != nil && err == nil {
					err = werr
				}
			}

			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "replayed to %d (register %08x)\n", tick, register)
			return nil
		},
	}

	cmd.Flags().StringVar(&wav, "wav", "", "record audio to wav file. 'auto' creates a unique filename")

	return cmd
}
