/*
 * ravn audit scheduler
 *
 * Copyright (c) 2024 Telenor Norge AS
 * Author(s):
 *  - Kristian Lyngstøl <kly@kly.no>
 *
 * This library is free software; you can redistribute it and/or
 * modify it under the terms of the GNU Lesser General Public
 * License as published by the Free Software Foundation; either
 * version 2.1 of the License, or (at your option) any later version.
 *
 * This library is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public
 * License along with this library; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
 * 02110-1301  USA
 */

package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/telenornms/ravn"
	"github.com/telenornms/ravn/inventory"
)

// Scheduler fans one audit per device out over a bounded pool of
// workers. Nothing is shared between device runs beyond the read-only
// pipeline options, so there is nothing to lock; the only
// synchronization point is the collection barrier at the end.
type Scheduler struct {
	Workers  int // concurrent sessions, <1 falls back to 4
	Pipeline *Pipeline
}

// Run audits every device with at most Workers sessions in flight and
// blocks until all records are in. Exactly one result per device,
// whatever happened to the individual runs; results arrive in
// completion order, which nothing downstream depends on.
func (s *Scheduler) Run(devices []inventory.Device) []Result {
	workers := s.Workers
	if workers < 1 {
		workers = 4
	}
	jobs := make(chan inventory.Device)
	out := make(chan Result)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			s.worker(name, jobs, out)
		}(fmt.Sprintf("%d", i))
	}
	go func() {
		for _, d := range devices {
			jobs <- d
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(out)
	}()
	results := make([]Result, 0, len(devices))
	for r := range out {
		results = append(results, r)
	}
	return results
}

// worker drains the job channel, one full audit at a time. The timed
// OK/FAIL line per device is the operator's main view of a run.
func (s *Scheduler) worker(name string, jobs <-chan inventory.Device, out chan<- Result) {
	for dev := range jobs {
		now := time.Now()
		r := s.Pipeline.Audit(dev)
		since := time.Since(now).Round(time.Millisecond * 10)
		if r.Failed {
			ravn.Logf("[%2s]: %-15s FAIL %s", name, dev.Hostname, since.String())
		} else {
			ravn.Logf("[%2s]: %-15s OK %s", name, dev.Hostname, since.String())
		}
		out <- r
	}
}
