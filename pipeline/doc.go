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


// Package pipeline is the route by which requests reach the emulation engine.
//
// Requests are submitted from any goroutine with Submit() and are queued
// until the controller's execution loop calls ApplyNext(). Applying a request
// has up to three side effects, always committed in the same order:
//
//  1. the engine is changed
//  2. a RequestEvent is added to the history tree (not while replaying)
//  3. an AuditEntry is added to the audit trail (if reversibility is enabled)
//
// The audit trail is what Undo() works on. Undo only ever changes the
// engine; the history tree is left alone.
package pipeline
