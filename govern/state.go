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

package govern

// State indicates the emulation's state.
type State int

// List of possible emulation states.
//
// Closed is the zero value so that an uninitialised controller refuses work.
const (
	Closed State = iota
	Paused
	Running
	Replaying
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Paused:
		return "Paused"
	case Running:
		return "Running"
	case Replaying:
		return "Replaying"
	}

	return ""
}

// SubState allows more detail for some states.
type SubState int

// List of possible emulation sub-states.
const (
	Normal SubState = iota

	// applied requests are being recorded in the audit trail so that they
	// can be undone
	Reversing
)

func (s SubState) String() string {
	switch s {
	case Reversing:
		return "Reversing"
	}
	return ""
}

// StateIntegrity checks whether the sub-state makes sense for the specified
// state.
func StateIntegrity(state State, subState SubState) bool {
	if subState == Normal {
		return true
	}

	switch state {
	case Paused, Running:
		return subState == Reversing
	}

	return false
}

// Mode is the combination of State and SubState as observed from outside the
// controller.
type Mode struct {
	State    State
	SubState SubState
}

func (m Mode) String() string {
	if m.SubState == Normal {
		return m.State.String()
	}
	return m.State.String() + " (" + m.SubState.String() + ")"
}
