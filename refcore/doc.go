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

// Package refcore is a reference implementation of the emulation.Engine
// interface. It does not emulate any real hardware. Instead it models just
// enough machine state (a tick counter, a keyboard matrix, two disc drives, a
// tape deck and a pseudo-random "CPU" register) to exercise the emulator core
// deterministically.
//
// The state of the machine after advancing N ticks is the same no matter how
// the N ticks are divided between calls to AdvanceTicks(). This property is
// what makes replaying history meaningful and is relied upon by the tests in
// the controller and machine packages.
package refcore
