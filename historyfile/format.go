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

package historyfile

import (
	"github.com/google/uuid"

	"github.com/alybaek2/cpvc-sub002/history"
)

// Magic is the first four bytes of every machine file.
const Magic = "CPVC"

// Version of the file format.
const Version = 1

// header flags.
const (
	flagDiffs uint16 = 0x0001
)

// record flags.
const (
	recUser  uint8 = 0x01
	recDelta uint8 = 0x02
)

// the largest body or state that will be read from a file.
const maxBody = 1 << 28

// the IDs of deleted events after the last event in the tree are reserved
// only up to this many. a file claiming a larger arena is not accepted
const maxArenaSlack = 1 << 16

// arenaSize returns the arena size to record for a tree whose last event has
// the given ID.
func arenaSize(size int, last history.EventID) uint32 {
	return uint32(min(uint64(size), uint64(last)+1+maxArenaSlack))
}

type header struct {
	Magic   string `struc:"[4]byte"`
	Version uint16
	Flags   uint16
	ID      []byte `struc:"[16]byte"`
	NameLen int    `struc:"uint16,sizeof=Name"`
	Name    string
}

type counts struct {
	Events  uint32
	Size    uint32
	Current uint64
}

// the fixed size part of a record. the body follows.
type record struct {
	ID      uint64
	Parent  uint64
	Kind    uint8
	Flags   uint8
	Tick    uint64
	Created int64
	BodyLen uint32
}

// File is the content of a machine file.
type File struct {
	ID   uuid.UUID
	Name string

	// the history of the machine
	Tree *history.Tree

	// serialised state of the live machine
	State []byte

	// whether bookmarks were stored as diffs. set by Decode() and ignored
	// by Encode()
	Diffs bool
}
