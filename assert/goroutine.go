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

package assert

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// GetGoRoutineID returns an identifier for a goroutine. it returns a result
// that is (a) different between goroutines and (b) consistent for a given
// goroutine. It should only ever be used for debugging or testing purposes.
func GetGoRoutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// Goroutines records the goroutines that have called Record(). Used to check
// that something only ever happens on one goroutine.
type Goroutines struct {
	crit sync.Mutex
	ids  map[uint64]int
}

// Record the calling goroutine.
func (g *Goroutines) Record() {
	id := GetGoRoutineID()
	g.crit.Lock()
	defer g.crit.Unlock()
	if g.ids == nil {
		g.ids = make(map[uint64]int)
	}
	g.ids[id]++
}

// Len returns the number of different goroutines recorded.
func (g *Goroutines) Len() int {
	g.crit.Lock()
	defer g.crit.Unlock()
	return len(g.ids)
}

// Seen returns true if the goroutine has been recorded.
func (g *Goroutines) Seen(id uint64) bool {
	g.crit.Lock()
	defer g.crit.Unlock()
	return g.ids[id] > 0
}
