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


package statsview

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/alybaek2/cpvc-sub002/logger"
)

const Address = "localhost:12626"
const url = "/debug/statsview"

// only one viewer can be running at once. the viewer configuration is global
// to the statsview package.
var crit sync.Mutex
var running *statsview.ViewManager

// Launch a new goroutine running the statsview. Launching when a viewer is
// already running has no effect.
func Launch(output io.Writer) {
	crit.Lock()
	defer crit.Unlock()

	if running != nil {
		return
	}

	viewer.SetConfiguration(viewer.WithAddr(Address))
	running = statsview.New()

	go func(mgr *statsview.ViewManager) {
		if err := mgr.Start(); err != nil {
			logger.Logf(logger.Allow, "statsview", "%v", err)
		}
	}(running)

	if output != nil {
		output.Write([]byte(fmt.Sprintf("stats server available at %s%s\n", Address, url)))
	}
}

// Stop the running viewer, if any.
func Stop() {
	crit.Lock()
	defer crit.Unlock()

	if running == nil {
		return
	}
	running.Stop()
	running = nil
}

// Running returns true if a viewer has been launched and not stopped.
func Running() bool {
	crit.Lock()
	defer crit.Unlock()
	return running != nil
}
