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


// Package notifications is how the machine tells the outside world that
// something has changed. Interested parties subscribe to a Hub and receive
// Events on a channel.
//
// Publishing never blocks. A subscriber that does not keep up with the
// events will miss some of them. The number of missed events is recorded in
// the Subscription and in the log.
package notifications
