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

package controller

import (
	"sync"

	"github.com/alybaek2/cpvc-sub002/govern"
)

// Pause is returned by AutoPause(). The Release() function should be
// deferred by the caller.
type Pause struct {
	c    *Controller
	once sync.Once
}

// AutoPause forces the controller into the Paused state until the returned
// Pause is released. Calls to AutoPause() can be nested. The controller
// returns to its original state when the last Pause is released.
//
// A replay in progress is suspended but the state remains Replaying.
func (c *Controller) AutoPause() *Pause {
	c.crit.Lock()
	defer c.crit.Unlock()

	if c.pauses == 0 {
		c.pausedFrom = c.state
		if c.state == govern.Running {
			c.setState(govern.Paused)
		}
	}
	c.pauses++

	return &Pause{c: c}
}

// Release the pause. It is safe to call Release() more than once.
func (p *Pause) Release() {
	p.once.Do(func() {
		c := p.c
		c.crit.Lock()
		defer c.crit.Unlock()

		c.pauses--
		if c.pauses > 0 {
			return
		}

		if c.state == govern.Paused && c.pausedFrom == govern.Running {
			c.setState(govern.Running)
		}
		c.poke()
	})
}
