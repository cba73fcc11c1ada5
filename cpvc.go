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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alybaek2/cpvc-sub002/controller"
	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/historyfile"
	"github.com/alybaek2/cpvc-sub002/logger"
	"github.com/alybaek2/cpvc-sub002/machine"
	"github.com/alybaek2/cpvc-sub002/paths"
	"github.com/alybaek2/cpvc-sub002/prefs"
	"github.com/alybaek2/cpvc-sub002/refcore"
	"github.com/alybaek2/cpvc-sub002/storage"
	"github.com/alybaek2/cpvc-sub002/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "* error: %v\n", err)
		os.Exit(10)
	}
}

// options common to all commands.
type options struct {
	// preferences file. empty string means the default location
	config string

	// preference values that override the values in the preferences file
	prefs string

	// echo log entries to stderr
	log bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   version.ApplicationName,
		Short: "cpvc runs emulated machines with a branching history",
		Long: `cpvc runs emulated machines and records everything that happens to them in a
history tree. Any bookmark in the history can be returned to and a new branch
of history started from there. The history is kept in a machine file.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.log {
				logger.SetEcho(cmd.ErrOrStderr())
			} else {
				logger.SetEcho(nil)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.config, "config", "", "preferences file (default is in the cpvc config directory)")
	root.PersistentFlags().StringVar(&opts.prefs, "prefs", "", "preference overrides. of the form key::value; key::value")
	root.PersistentFlags().BoolVar(&opts.log, "log", false, "echo log to stderr")

	root.AddCommand(
		newNewCmd(opts),
		newInfoCmd(opts),
		newBookmarksCmd(opts),
		newRunCmd(opts),
		newJumpCmd(opts),
		newReplayCmd(opts),
		newDeleteBookmarksCmd(opts),
		newDeleteBranchesCmd(opts),
		newCompactCmd(opts),
		newDotCmd(opts),
		newPrefsCmd(opts),
	)

	return root
}

// preferences loads the controller preferences. values given with the
// --prefs flag take priority over the values in the file.
func (opts *options) preferences() (*controller.Preferences, error) {
	pth := opts.config
	if pth == "" {
		var err error
		pth, err = paths.ResourcePath("", "preferences")
		if err != nil {
			return nil, err
		}
	}

	p, err := controller.NewPreferences(pth)
	if err != nil {
		return nil, err
	}

	prefs.PushCommandLineStack(opts.prefs)
	defer func() {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "cpvc", "unused preferences: %s", unused)
		}
	}()

	if err := p.Load(); err != nil {
		return nil, err
	}

	return p, nil
}

// locate splits the path of a machine file into the storage for the
// directory and the name of the file in that storage.
func locate(pth string) (storage.Storage, string, error) {
	dir, err := storage.NewDir(filepath.Dir(pth))
	if err != nil {
		return nil, "", err
	}
	return dir, filepath.Base(pth), nil
}

// load the machine in the machine file. the machine file is written again
// when the machine is closed.
func (opts *options) load(pth string) (*machine.Machine, error) {
	p, err := opts.preferences()
	if err != nil {
		return nil, err
	}

	store, filename, err := locate(pth)
	if err != nil {
		return nil, err
	}

	return machine.Load(refcore.NewCore(), store, filename, p)
}

// read the machine file without creating a machine. used by commands that
// do not change the file.
func read(pth string) (historyfile.File, error) {
	store, filename, err := locate(pth)
	if err != nil {
		return historyfile.File{}, err
	}

	if !store.Exists(filename) {
		return historyfile.File{}, curated.Errorf("no machine file: %s", pth)
	}

	r, err := store.Open(filename)
	if err != nil {
		return historyfile.File{}, err
	}
	defer r.Close()

	return historyfile.Decode(r)
}

// closeMachine closes the machine and combines any error with the error
// already in err.
func closeMachine(m *machine.Machine, err *error) {
	if cerr := m.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
