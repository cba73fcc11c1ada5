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

package pipeline

import (
	"fmt"

	"github.com/alybaek2/cpvc-sub002/request"
)

// AuditEntry records a request that has been applied to the engine.
type AuditEntry struct {
	Request request.Request

	// the engine tick at the time the request was applied
	Tick uint64

	// the request that will undo the effect of Request. will be nil if the
	// request was not reversible
	Reverse *request.Request
}

func (a AuditEntry) String() string {
	if a.Reverse == nil {
		return fmt.Sprintf("%s @ %d (irreversible)", a.Request, a.Tick)
	}
	return fmt.Sprintf("%s @ %d (reverse: %s)", a.Request, a.Tick, *a.Reverse)
}
