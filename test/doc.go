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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The "Expect" functions report a failure with t.Errorf() and allow the test
// to continue. The "Demand" functions report with t.Fatalf() and end the test
// immediately. Use a Demand function when the rest of the test makes no sense
// if the condition is not met.
//
// It is worth describing how success and failure treat the nil type because
// it is not obvious. The nil type is considered a success and consequently
// will cause ExpectFailure to fail and ExpectSuccess to succeed. This is
// because of how errors usually work (nil to indicate no error).
//
// Optional tags can be supplied to all functions. They are prefixed to the
// failure message and are useful when the test is being run inside a loop.
//
// The CompareWriter type implements the io.Writer interface and should be
// used to capture output. The Compare() function can then be used to test for
// equality.
package test
