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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The pattern is what differentiates curated errors. The Is() function checks
// whether an error was created with a specific pattern and the Has() function
// checks whether the pattern occurs anywhere in the error chain:
//
//	e := curated.Errorf(curated.NotABookmark, 10)
//	f := curated.Errorf(curated.StructuralViolation, e)
//
//	curated.Is(f, curated.StructuralViolation) // true
//	curated.Is(f, curated.NotABookmark)        // false
//	curated.Has(f, curated.NotABookmark)       // true
//
// The Error() function normalises the chain so that duplicate adjacent parts
// are removed. Chains are thought of as parts separated by the sub-string ': '
// as suggested on p239 of "The Go Programming Language" (Donovan, Kernighan).
//
//	machine: machine: nothing to undo
//
// is printed as
//
//	machine: nothing to undo
//
// The sentinel patterns used throughout the emulator core are listed in
// sentinels.go. They form the error taxonomy that callers of the machine
// package should test for.
package curated
