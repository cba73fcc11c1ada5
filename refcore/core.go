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

package refcore

import (
	"bytes"
	"fmt"

	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/lunixbochs/struc"
)

// NumKeys is the number of keys in the keyboard matrix.
const NumKeys = 80

// TicksPerSample is the number of ticks between each audio sample.
const TicksPerSample = 100

// the maximum number of unread audio samples. older samples are dropped.
const maxAudio = 1 << 16

// the value of the pseudo-random register after a reset.
const seed uint32 = 0xace1ace1

// the version of the serialised state.
const stateVersion = 1

// state is the serialisable part of the machine.
type state struct {
	Version uint8
	Tick    uint64
	Reg     uint32
	Running uint8
	Resets  uint32
	Keys    []byte `struc:"[10]byte"`

	DiscALen int    `struc:"uint32,sizeof=DiscA"`
	DiscA    []byte
	DiscBLen int    `struc:"uint32,sizeof=DiscB"`
	DiscB    []byte
	TapeLen  int    `struc:"uint32,sizeof=Tape"`
	Tape     []byte
}

// Core is the reference machine. It implements emulation.Engine.
type Core struct {
	st    state
	audio []int16
}

// NewCore is the preferred method of initialisation for the Core type.
func NewCore() *Core {
	c := &Core{
		st: state{
			Version: stateVersion,
			Reg:     seed,
			Running: uint8(emulation.Active),
			Keys:    make([]byte, NumKeys/8),
		},
		audio: make([]int16, 0, 1024),
	}
	return c
}

func (c *Core) String() string {
	return fmt.Sprintf("tick=%d reg=%08x resets=%d", c.st.Tick, c.st.Reg, c.st.Resets)
}

// step the pseudo-random register once. the key matrix is mixed in so that
// input has a lasting effect on the machine state.
func (c *Core) step() {
	r := c.st.Reg
	for _, k := range c.st.Keys {
		r ^= uint32(k)
	}
	// xorshift32
	r ^= r << 13
	r ^= r >> 17
	r ^= r << 5
	c.st.Reg = r
}

// AdvanceTicks implements the emulation.Engine interface.
func (c *Core) AdvanceTicks(n uint64) error {
	if emulation.RunningState(c.st.Running) == emulation.Halted {
		c.st.Tick += n
		return nil
	}

	end := c.st.Tick + n

	// the register steps on every tick that is a multiple of TicksPerSample.
	// counting boundaries rather than iterations makes the result
	// independent of how the ticks are divided between calls
	next := (c.st.Tick/TicksPerSample + 1) * TicksPerSample
	for ; next <= end; next += TicksPerSample {
		c.step()
		c.audio = append(c.audio, int16(c.st.Reg>>16))
	}
	c.st.Tick = end

	if len(c.audio) > maxAudio {
		c.audio = c.audio[len(c.audio)-maxAudio:]
	}

	return nil
}

// ReadAudioSamples implements the emulation.Engine interface. Samples that
// have been read are removed from the buffer.
func (c *Core) ReadAudioSamples(buffer []int16, offset int, count int) int {
	if offset < 0 || offset >= len(buffer) {
		return 0
	}
	if count > len(buffer)-offset {
		count = len(buffer) - offset
	}
	n := copy(buffer[offset:offset+count], c.audio)
	c.audio = c.audio[:copy(c.audio, c.audio[n:])]
	return n
}

// CurrentTick implements the emulation.Engine interface.
func (c *Core) CurrentTick() uint64 {
	return c.st.Tick
}

// RunningState implements the emulation.Engine interface.
func (c *Core) RunningState() emulation.RunningState {
	return emulation.RunningState(c.st.Running)
}

// Halt stops the pseudo-random register from stepping. Ticks still advance.
// Reset() clears the halted state.
func (c *Core) Halt() {
	c.st.Running = uint8(emulation.Halted)
}

// Register returns the value of the pseudo-random register.
func (c *Core) Register() uint32 {
	return c.st.Reg
}

// Serialize implements the emulation.Engine interface.
func (c *Core) Serialize() ([]byte, error) {
	var b bytes.Buffer
	if err := struc.Pack(&b, &c.st); err != nil {
		return nil, fmt.Errorf("refcore: %w", err)
	}
	return b.Bytes(), nil
}

// Restore implements the emulation.Engine interface.
func (c *Core) Restore(data []byte) error {
	var st state
	if err := struc.Unpack(bytes.NewReader(data), &st); err != nil {
		return fmt.Errorf("refcore: %w", err)
	}
	if st.Version != stateVersion {
		return fmt.Errorf("refcore: unsupported state version (%d)", st.Version)
	}
	c.st = st
	c.audio = c.audio[:0]
	return nil
}

// Reset implements the emulation.Engine interface.
func (c *Core) Reset() error {
	c.st.Reg = seed
	c.st.Running = uint8(emulation.Active)
	c.st.Resets++
	return nil
}

// SetKey implements the emulation.Engine interface.
func (c *Core) SetKey(key byte, down bool) error {
	if key >= NumKeys {
		return fmt.Errorf("refcore: key out of range (%d)", key)
	}
	if down {
		c.st.Keys[key/8] |= 1 << (key % 8)
	} else {
		c.st.Keys[key/8] &^= 1 << (key % 8)
	}
	return nil
}

// KeyDown implements the emulation.Engine interface.
func (c *Core) KeyDown(key byte) bool {
	if key >= NumKeys {
		return false
	}
	return c.st.Keys[key/8]&(1<<(key%8)) != 0
}

// LoadDisc implements the emulation.Engine interface.
func (c *Core) LoadDisc(drive emulation.Drive, image []byte) error {
	img := append([]byte{}, image...)
	switch drive {
	case emulation.DriveA:
		c.st.DiscA = img
	case emulation.DriveB:
		c.st.DiscB = img
	default:
		return fmt.Errorf("refcore: no such drive (%d)", drive)
	}
	return nil
}

// DiscImage implements the emulation.Engine interface.
func (c *Core) DiscImage(drive emulation.Drive) []byte {
	switch drive {
	case emulation.DriveA:
		return append([]byte{}, c.st.DiscA...)
	case emulation.DriveB:
		return append([]byte{}, c.st.DiscB...)
	}
	return nil
}

// LoadTape implements the emulation.Engine interface.
func (c *Core) LoadTape(image []byte) error {
	c.st.Tape = append([]byte{}, image...)
	return nil
}

// TapeImage implements the emulation.Engine interface.
func (c *Core) TapeImage() []byte {
	return append([]byte{}, c.st.Tape...)
}
