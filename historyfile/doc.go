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


// Package historyfile reads and writes machine files. A machine file holds the
// identity and name of a machine, its complete history tree and the state of
// the live machine.
//
// The layout of the file is:
//
//	header      magic "CPVC", version, flags, machine id, name
//	counts      number of events, arena size, current position
//	records     one per event, in order of ID
//	state       snappy compressed state of the live machine
//	crc         CRC-32 (IEEE) of everything between the header and the crc
//
// Each record carries the event's ID, parent, kind, flags, tick and creation
// time, followed by a body. The body of a RequestEvent is the encoded request.
// The body of a BookmarkEvent is its snapshot, compressed with snappy. When the
// file is written with diffs enabled, a bookmark snapshot is instead stored
// as the difference between it and the snapshot of the nearest ancestor
// bookmark, also compressed. Root and Marker events have no body.
//
// All integers are big-endian.
package historyfile
