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
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/history"
)

// the size of the fixed part of a record.
const recordSize = 38

// the largest file that will be read.
const maxFile = 1 << 32

// Decode reads a machine file. Every problem with the file results in a
// curated error with the CorruptPersistedData pattern.
func Decode(r io.Reader) (File, error) {
	f, err := decode(r)
	if err != nil {
		return File{}, curated.Errorf(curated.CorruptPersistedData, err)
	}
	return f, nil
}

func decode(r io.Reader) (File, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFile))
	if err != nil {
		return File{}, errors.Wrap(err, "failed to read")
	}

	br := bytes.NewReader(data)

	var hdr header
	if err := struc.Unpack(br, &hdr); err != nil {
		return File{}, errors.Wrap(err, "failed to unpack header")
	}
	if hdr.Magic != Magic {
		return File{}, errors.New("invalid magic")
	}
	if hdr.Version != Version {
		return File{}, errors.Errorf("unsupported version (%d)", hdr.Version)
	}

	f := File{
		Name:  strings.TrimRight(hdr.Name, "\x00"),
		Diffs: hdr.Flags&flagDiffs == flagDiffs,
	}
	f.ID, err = uuid.FromBytes(hdr.ID)
	if err != nil {
		return File{}, errors.Wrap(err, "invalid machine id")
	}

	rest := data[len(data)-br.Len():]
	if len(rest) < 4 {
		return File{}, errors.New("file is truncated")
	}
	body := rest[:len(rest)-4]
	if crc := binary.BigEndian.Uint32(rest[len(rest)-4:]); crc != crc32.ChecksumIEEE(body) {
		return File{}, errors.New("checksum mismatch")
	}

	br = bytes.NewReader(body)

	var c counts
	if err := struc.Unpack(br, &c); err != nil {
		return File{}, errors.Wrap(err, "failed to unpack counts")
	}
	if c.Events == 0 || int(c.Events) > br.Len()/recordSize {
		return File{}, errors.Errorf("implausible number of events (%d)", c.Events)
	}

	events := make([]history.Event, 0, c.Events)
	parents := make(map[history.EventID]history.EventID, c.Events)
	snapshots := make(map[history.EventID][]byte)

	for i := uint32(0); i < c.Events; i++ {
		var rec record
		if err := struc.Unpack(br, &rec); err != nil {
			return File{}, errors.Wrapf(err, "failed to unpack record %d", i)
		}

		e := history.Event{
			ID:      history.EventID(rec.ID),
			Parent:  history.EventID(rec.Parent),
			Kind:    history.EventKind(rec.Kind),
			Tick:    rec.Tick,
			Created: time.Unix(0, rec.Created),
		}

		// records are in order of ID so that delta bases are always known
		if len(events) > 0 && e.ID <= events[len(events)-1].ID {
			return File{}, errors.Errorf("event %d is out of order", e.ID)
		}

		b, err := next(br, rec.BodyLen)
		if err != nil {
			return File{}, errors.Wrapf(err, "event %d", e.ID)
		}

		switch e.Kind {
		case history.RequestEvent:
			if err := e.Request.UnmarshalBinary(b); err != nil {
				return File{}, errors.Wrapf(err, "event %d", e.ID)
			}
		case history.BookmarkEvent:
			raw, err := snappy.Decode(nil, b)
			if err != nil {
				return File{}, errors.Wrapf(err, "event %d", e.ID)
			}
			if rec.Flags&recDelta == recDelta {
				base, ok := baseSnapshot(e.Parent, parents, snapshots)
				if !ok {
					return File{}, errors.Errorf("event %d is a diff with no base", e.ID)
				}
				raw, err = patch(base, raw)
				if err != nil {
					return File{}, errors.Wrapf(err, "event %d", e.ID)
				}
			}
			e.Snapshot = raw
			e.UserBookmark = rec.Flags&recUser == recUser
			snapshots[e.ID] = raw
		case history.Root, history.Marker:
			if len(b) != 0 {
				return File{}, errors.Errorf("event %d has unexpected body", e.ID)
			}
		default:
			return File{}, errors.Errorf("event %d has unknown kind (%d)", e.ID, rec.Kind)
		}

		parents[e.ID] = e.Parent
		events = append(events, e)
	}

	var n uint32
	if err := binary.Read(br, binary.BigEndian, &n); err != nil {
		return File{}, errors.Wrap(err, "failed to read state length")
	}
	b, err := next(br, n)
	if err != nil {
		return File{}, errors.Wrap(err, "state")
	}
	f.State, err = snappy.Decode(nil, b)
	if err != nil {
		return File{}, errors.Wrap(err, "state")
	}

	if br.Len() != 0 {
		return File{}, errors.Errorf("%d bytes of unexpected data", br.Len())
	}

	if last := events[len(events)-1].ID; c.Size != arenaSize(int(c.Size), last) {
		return File{}, errors.Errorf("arena size %d is implausible for last event %d", c.Size, last)
	}

	f.Tree, err = history.Rebuild(events, history.EventID(c.Current), int(c.Size))
	if err != nil {
		return File{}, errors.Wrap(err, "invalid history")
	}

	return f, nil
}

// next returns the next n bytes from the reader.
func next(br *bytes.Reader, n uint32) ([]byte, error) {
	if n > maxBody || int64(n) > int64(br.Len()) {
		return nil, errors.Errorf("length of %d bytes exceeds the data available", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(br, b); err != nil {
		return nil, err
	}
	return b, nil
}

// baseSnapshot returns the snapshot of the nearest ancestor bookmark.
func baseSnapshot(id history.EventID, parents map[history.EventID]history.EventID, snapshots map[history.EventID][]byte) ([]byte, bool) {
	for id != history.NoParent {
		if s, ok := snapshots[id]; ok {
			return s, true
		}
		p, ok := parents[id]
		if !ok {
			return nil, false
		}
		id = p
	}
	return nil, false
}
