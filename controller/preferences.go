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
	"fmt"

	"github.com/alybaek2/cpvc-sub002/prefs"
)

// Preferences for the controller. The values can be changed at any time and
// will be picked up by the execution loop at the next slice.
type Preferences struct {
	dsk *prefs.Disk

	// pace the execution loop to SlicesPerSecond. when false the loop runs as
	// quickly as possible
	Throttle prefs.Bool

	// number of ticks executed by each iteration of the execution loop
	TicksPerSlice prefs.Int

	// number of iterations of the execution loop per second when throttled
	SlicesPerSecond prefs.Int

	// number of ticks between system bookmarks. zero disables system
	// bookmarks
	SystemBookmarkInterval prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. An empty path means the preferences are not saved to
// disk.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	p.TicksPerSlice.SetHookPre(func(v prefs.Value) error {
		if v.(int) <= 0 {
			return fmt.Errorf("controller: ticks per slice must be positive")
		}
		return nil
	})
	p.SlicesPerSecond.SetHookPre(func(v prefs.Value) error {
		if v.(int) <= 0 || v.(int) > 1000 {
			return fmt.Errorf("controller: slices per second must be between 1 and 1000")
		}
		return nil
	})
	p.SystemBookmarkInterval.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 0 {
			return fmt.Errorf("controller: system bookmark interval cannot be negative")
		}
		return nil
	})

	var err error
	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("controller.throttle", &p.Throttle)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("controller.ticksPerSlice", &p.TicksPerSlice)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("controller.slicesPerSecond", &p.SlicesPerSecond)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("controller.systemBookmarkInterval", &p.SystemBookmarkInterval)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load(true)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all settings to default values. The default pacing is
// that of a 4MHz machine.
func (p *Preferences) SetDefaults() {
	p.Throttle.Set(true)
	p.TicksPerSlice.Set(80000)
	p.SlicesPerSecond.Set(50)
	p.SystemBookmarkInterval.Set(4000000 * 60)
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

func (p *Preferences) throttle() bool {
	return p.Throttle.Get().(bool)
}

func (p *Preferences) ticksPerSlice() uint64 {
	return uint64(p.TicksPerSlice.Get().(int))
}

func (p *Preferences) bookmarkInterval() uint64 {
	return uint64(p.SystemBookmarkInterval.Get().(int))
}
