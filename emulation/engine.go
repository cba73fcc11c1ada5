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

package emulation

// RunningState is the state of the emulated hardware as reported by the
// Engine. It is not the same as the state of the execution loop (see the
// govern package). An engine might be "halted" while the loop is running for
// example.
type RunningState int

// List of valid RunningState values.
const (
	Stopped RunningState = iota
	Active
	Halted
)

func (s RunningState) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Active:
		return "Active"
	case Halted:
		return "Halted"
	}
	return ""
}

// Drive identifies a disc drive.
type Drive int

// List of valid Drive values.
const (
	DriveA Drive = iota
	DriveB
	NumDrives
)

func (d Drive) String() string {
	switch d {
	case DriveA:
		return "A"
	case DriveB:
		return "B"
	}
	return "?"
}

// Engine is the capability supplied by the emulated machine. Implementations
// do not need to be safe for concurrent use. The controller package makes
// sure that only one goroutine uses an Engine at a time.
type Engine interface {
	// AdvanceTicks runs the emulation for n ticks.
	AdvanceTicks(n uint64) error

	// ReadAudioSamples copies up to count samples into buffer, starting at
	// offset. Returns the number of samples copied.
	ReadAudioSamples(buffer []int16, offset int, count int) int

	// CurrentTick returns the number of ticks elapsed since the machine was
	// created.
	CurrentTick() uint64

	// RunningState of the emulated hardware.
	RunningState() RunningState

	// Serialize returns a snapshot of the entire machine state. Restore()
	// with the same bytes must return the machine to exactly this state.
	Serialize() ([]byte, error)
	Restore(state []byte) error

	// Reset the emulated hardware. Inserted media is not ejected.
	Reset() error

	// SetKey changes the state of a key in the keyboard matrix. KeyDown
	// returns the current state.
	SetKey(key byte, down bool) error
	KeyDown(key byte) bool

	// LoadDisc inserts an already validated disc image into the drive. An
	// empty image ejects the disc. DiscImage returns the image currently in
	// the drive.
	LoadDisc(drive Drive, image []byte) error
	DiscImage(drive Drive) []byte

	// LoadTape inserts an already validated tape image. An empty image
	// ejects the tape. TapeImage returns the image currently inserted.
	LoadTape(image []byte) error
	TapeImage() []byte
}
