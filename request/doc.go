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

// Package request defines the intents that mutate an emulated machine. A
// Request is created by the caller, consumed once by the execution loop and
// never changed after creation.
//
// A reversible request has an inverse, computed by Inverse() from the state
// of the machine immediately before the request is applied. Applying the
// request and then its inverse leaves the machine exactly as it was.
//
// Requests have a binary encoding (MarshalBinary and UnmarshalBinary) which
// is used when history is persisted.
package request
