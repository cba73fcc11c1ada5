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


// Package machine brings together the components of an emulated machine: the
// engine, the pipeline of requests, the history tree and the controller that
// runs them. It adds an identity and a name to the machine and looks after
// reading and writing machine files.
//
// Most operations on the machine are provided by the embedded Controller.
package machine
