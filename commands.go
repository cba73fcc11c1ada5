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
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/logger"
	"github.com/alybaek2/cpvc-sub002/machine"
	"github.com/alybaek2/cpvc-sub002/refcore"
	"github.com/alybaek2/cpvc-sub002/treeviz"
)

// parseIDs converts command line arguments to event IDs.
func parseIDs(args []string) ([]history.EventID, error) {
	ids := make([]history.EventID, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return nil, curated.Errorf("not an event ID: %s", a)
		}
		ids = append(ids, history.EventID(v))
	}
	return ids, nil
}

func newNewCmd(opts *options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "new FILE",
		Short: "Create a new machine file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (rerr error) {
			store, filename, err := locate(args[0])
			if err != nil {
				return err
			}
			if store.Exists(filename) {
				return curated.Errorf("machine file already exists: %s", args[0])
			}

			p, err := opts.preferences()
			if err != nil {
				return err
			}

			if name == "" {
				name = strings.TrimSuffix(filename, filepath.Ext(filename))
			}

			m, err := machine.New(name, refcore.NewCore(), store, filename, p)
			if err != nil {
				return err
			}
			defer closeMachine(m, &rerr)

			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", m.Name(), m.ID())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the machine (default is the file name)")

	return cmd
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Show a summary of a machine file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := read(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "name:      %s\n", f.Name)
			fmt.Fprintf(w, "id:        %s\n", f.ID)
			fmt.Fprintf(w, "events:    %d\n", f.Tree.Len())
			fmt.Fprintf(w, "bookmarks: %d\n", len(f.Tree.Bookmarks()))
			fmt.Fprintf(w, "current:   %s\n", f.Tree.Current())
			fmt.Fprintf(w, "diffs:     %v\n", f.Diffs)
			return nil
		},
	}
}

func writeBookmarks(w io.Writer, tree *history.Tree) {
	current := tree.CurrentID()
	for _, b := range tree.Bookmarks() {
		marker := " "
		if b.ID == current {
			marker = "*"
		}
		kind := "system"
		if b.UserBookmark {
			kind = "user"
		}
		fmt.Fprintf(w, "%s %6d  %-6s  tick %d  %s\n", marker, b.ID, kind, b.Tick, b.Created.Format("2006-01-02 15:04:05"))
	}
}

func newBookmarksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmarks FILE",
		Short: "List the bookmarks in a machine file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := read(args[0])
			if err != nil {
				return err
			}
			writeBookmarks(cmd.OutOrStdout(), f.Tree)
			return nil
		},
	}
}

func newJumpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "jump FILE ID",
		Short: "Move the current position of the machine to a bookmark",
		Args:  cobra.ExactArgs(2),
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

			if err := m.JumpTo(ids[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "jumped to %d @ %d\n", ids[0], m.Ticks())
			return nil
		},
	}
}

func newDeleteBookmarksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-bookmarks FILE ID...",
		Short: "Delete bookmarks from the history",
		Args:  cobra.MinimumNArgs(2),
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

			return m.DeleteBookmarks(ids)
		},
	}
}

func newDeleteBranchesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-branches FILE ID...",
		Short: "Delete events and everything that follows them from the history",
		Args:  cobra.MinimumNArgs(2),
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

			return m.DeleteBranches(ids)
		},
	}
}

func newCompactCmd(opts *options) *cobra.Command {
	var diffs bool

	cmd := &cobra.Command{
		Use:   "compact FILE",
		Short: "Rewrite a machine file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.load(args[0])
			if err != nil {
				return err
			}

			err = m.Compact(diffs)
			if cerr := m.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			logger.Logf(logger.Allow, "cpvc", "compacted %s", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&diffs, "diffs", true, "store bookmarks as differences from earlier bookmarks")

	return cmd
}

func newDotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dot FILE",
		Short: "Write the shape of the history as a Graphviz graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := read(args[0])
			if err != nil {
				return err
			}
			return treeviz.Write(cmd.OutOrStdout(), f.Tree)
		},
	}
}

func newPrefsCmd(opts *options) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show the controller preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.preferences()
			if err != nil {
				return err
			}
			if save {
				if err := p.Save(); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), p.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "save the preferences, including any overrides")

	return cmd
}
