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
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/alybaek2/cpvc-sub002/history"
)

// Encode writes the machine file to w. If diffs is true, bookmark snapshots
// are stored as differences from the nearest ancestor bookmark.
//
// The output for a given File is always the same.
func Encode(w io.Writer, f File, diffs bool) error {
	if f.Tree == nil {
		return errors.New("historyfile: no history to encode")
	}

	var body bytes.Buffer

	var last history.EventID
	f.Tree.Walk(func(e history.Event) bool {
		last = e.ID
		return true
	})

	c := counts{
		Events:  uint32(f.Tree.Len()),
		Size:    arenaSize(f.Tree.Size(), last),
		Current: uint64(f.Tree.CurrentID()),
	}
	if err := struc.Pack(&body, &c); err != nil {
		return errors.Wrap(err, "historyfile: failed to pack counts")
	}

	// snapshots of the bookmarks written so far. events are walked in order
	// of ID so the ancestors of an event are always written before it
	snapshots := make(map[history.EventID][]byte)

	var err error
	f.Tree.Walk(func(e history.Event) bool {
		rec := record{
			ID:      uint64(e.ID),
			Parent:  uint64(e.Parent),
			Kind:    uint8(e.Kind),
			Tick:    e.Tick,
			Created: e.Created.UnixNano(),
		}

		var data []byte

		switch e.Kind {
		case history.RequestEvent:
			data, err = e.Request.MarshalBinary()
			if err != nil {
				err = errors.Wrapf(err, "historyfile: event %d", e.ID)
				return false
			}
		case history.BookmarkEvent:
			if e.UserBookmark {
				rec.Flags |= recUser
			}
			snapshots[e.ID] = e.Snapshot

			raw := e.Snapshot
			if diffs {
				if base, ok := ancestorSnapshot(f.Tree, e.Parent, snapshots); ok {
					raw = delta(base, e.Snapshot)
					rec.Flags |= recDelta
				}
			}
			data = snappy.Encode(nil, raw)
		}

		rec.BodyLen = uint32(len(data))
		if err = struc.Pack(&body, &rec); err != nil {
			err = errors.Wrapf(err, "historyfile: failed to pack event %d", e.ID)
			return false
		}
		body.Write(data)

		return true
	})
	if err != nil {
		return err
	}

	state := snappy.Encode(nil, f.State)
	if err := binary.Write(&body, binary.BigEndian, uint32(len(state))); err != nil {
		return errors.Wrap(err, "historyfile: failed to write state")
	}
	body.Write(state)

	hdr := header{
		Magic:   Magic,
		Version: Version,
		ID:      f.ID[:],
		Name:    f.Name,
	}
	if diffs {
		hdr.Flags |= flagDiffs
	}

	if err := struc.Pack(w, &hdr); err != nil {
		return errors.Wrap(err, "historyfile: failed to pack header")
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return errors.Wrap(err, "historyfile: failed to write events")
	}
	if err := binary.Write(w, binary.BigEndian, crc32.ChecksumIEEE(body.Bytes())); err != nil {
		return errors.Wrap(err, "historyfile: failed to write crc")
	}

	return nil
}

// ancestorSnapshot returns the snapshot of the nearest bookmark at or above
// the event. snapshots of bookmarks that have already been seen are in the
// map.
func ancestorSnapshot(tree *history.Tree, id history.EventID, snapshots map[history.EventID][]byte) ([]byte, bool) {
	for id != history.NoParent {
		if s, ok := snapshots[id]; ok {
			return s, true
		}
		e, ok := tree.Event(id)
		if !ok {
			return nil, false
		}
		id = e.Parent
	}
	return nil, false
}
