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

package request_test

import (
	"bytes"
	"testing"

	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/refcore"
	"github.com/alybaek2/cpvc-sub002/request"
	"github.com/alybaek2/cpvc-sub002/test"
)

// prepared returns a core that has some history so that inverses have
// something to restore.
func prepared(t *testing.T) *refcore.Core {
	t.Helper()
	c := refcore.NewCore()
	test.DemandSuccess(t, c.SetKey(7, true))
	test.DemandSuccess(t, c.LoadDisc(emulation.DriveA, []byte("old disc")))
	test.DemandSuccess(t, c.LoadTape([]byte("old tape")))
	test.DemandSuccess(t, c.AdvanceTicks(12345))
	return c
}

func TestInverseIsExact(t *testing.T) {
	requests := []request.Request{
		request.Key(7, false),
		request.Key(7, true),
		request.Key(8, true),
		request.Key(8, false),
		request.Disc(emulation.DriveA, []byte("new disc")),
		request.Disc(emulation.DriveB, []byte("new disc")),
		request.Disc(emulation.DriveA, nil),
		request.Tape([]byte("new tape")),
		request.MachineReset(),
		request.Until(20000),
		request.Until(100),
	}

	for _, r := range requests {
		c := prepared(t)

		before, err := c.Serialize()
		test.DemandSuccess(t, err)

		inv, err := r.Inverse(c)
		test.DemandSuccess(t, err, r)
		test.DemandSuccess(t, r.Apply(c), r)
		test.DemandSuccess(t, inv.Apply(c), r)

		after, err := c.Serialize()
		test.DemandSuccess(t, err)
		test.ExpectSuccess(t, bytes.Equal(before, after), r)
	}
}

func TestApply(t *testing.T) {
	c := refcore.NewCore()

	test.ExpectSuccess(t, request.Key(10, true).Apply(c))
	test.ExpectSuccess(t, c.KeyDown(10))

	// running until a tick is left to the execution loop
	test.ExpectSuccess(t, request.Until(500).Apply(c))
	test.ExpectEquality(t, c.CurrentTick(), uint64(0))
	test.ExpectEquality(t, request.Until(500).Tick(), uint64(500))

	test.ExpectSuccess(t, request.Disc(emulation.DriveB, []byte{9}).Apply(c))
	test.ExpectSuccess(t, bytes.Equal(c.DiscImage(emulation.DriveB), []byte{9}))

	// the engine refuses a key outside of its matrix
	test.ExpectFailure(t, request.Key(200, true).Apply(c))

	// zero value request is invalid
	var z request.Request
	test.ExpectSuccess(t, z.IsZero())
	test.ExpectFailure(t, z.Apply(c))
}

func TestImmutable(t *testing.T) {
	img := []byte{1, 2, 3}
	r := request.Tape(img)
	img[0] = 100
	test.ExpectEquality(t, r.Payload()[0], byte(1))

	p := r.Payload()
	p[0] = 100
	test.ExpectEquality(t, r.Payload()[0], byte(1))

	nr := r.WithReversible(false)
	test.ExpectSuccess(t, r.Reversible())
	test.ExpectFailure(t, nr.Reversible())
	test.ExpectSuccess(t, r.Equal(nr))
}

func TestEncoding(t *testing.T) {
	r := request.Disc(emulation.DriveB, []byte("disc")).WithReversible(false)
	b, err := r.MarshalBinary()
	test.DemandSuccess(t, err)

	var d request.Request
	test.DemandSuccess(t, d.UnmarshalBinary(b))
	test.ExpectSuccess(t, d.Equal(r))
	test.ExpectEquality(t, d.Reversible(), false)
	test.ExpectEquality(t, d.String(), "LoadDisc B (4 bytes)")

	test.ExpectFailure(t, d.UnmarshalBinary([]byte{1}))
	test.ExpectFailure(t, d.UnmarshalBinary([]byte{99, 0}))

	// a key request must carry exactly one byte
	test.ExpectFailure(t, d.UnmarshalBinary([]byte{byte(request.KeyDown), 0}))
}
