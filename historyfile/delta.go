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
	"encoding/binary"

	"github.com/pkg/errors"
)

// delta returns the difference between target and base. the length of the
// target is stored at the start of the delta because it may be shorter or
// longer than base.
func delta(base []byte, target []byte) []byte {
	d := binary.AppendUvarint(nil, uint64(len(target)))
	for i, b := range target {
		if i < len(base) {
			b ^= base[i]
		}
		d = append(d, b)
	}
	return d
}

// patch is the inverse of delta.
func patch(base []byte, d []byte) ([]byte, error) {
	n, sz := binary.Uvarint(d)
	if sz <= 0 {
		return nil, errors.New("malformed delta length")
	}
	d = d[sz:]
	if uint64(len(d)) != n {
		return nil, errors.Errorf("delta length mismatch (%d != %d)", len(d), n)
	}

	target := make([]byte, len(d))
	for i, b := range d {
		if i < len(base) {
			b ^= base[i]
		}
		target[i] = b
	}
	return target, nil
}
