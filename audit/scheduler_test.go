/*
 * ravn scheduler tests
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

package audit_test

import (
	"fmt"
	"testing"

	"github.com/telenornms/ravn"
	"github.com/telenornms/ravn/audit"
	"github.com/telenornms/ravn/inventory"
)

func schedulerFleet(t *testing.T, n int) ([]inventory.Device, *audit.Pipeline) {
	t.Helper()
	devices := make([]inventory.Device, 0, n)
	for i := 0; i < n; i++ {
		devices = append(devices, clientDevice(fmt.Sprintf("10.1.%d.1", i), fmt.Sprintf("sched-r%d", i)))
	}
	p := &audit.Pipeline{
		Opts: audit.Options{
			BackupRoot: t.TempDir(),
			NTPServer:  "192.168.194.101",
			Timestamp:  "2024_05_06-07_08_09",
		},
		Open: func(dev inventory.Device) (ravn.Runner, error) {
			if dev.Hostname == "sched-r3" {
				return nil, &ravn.ConnectionError{Target: dev.Address, Err: fmt.Errorf("refused")}
			}
			return &fakeSession{replies: baseReplies()}, nil
		},
	}
	return devices, p
}

func TestSchedulerRun(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 9} {
		t.Run(fmt.Sprintf("workers-%d", workers), func(t *testing.T) {
			devices, p := schedulerFleet(t, 9)
			s := audit.Scheduler{Workers: workers, Pipeline: p}
			results := s.Run(devices)
			if len(results) != len(devices) {
				t.Fatalf("expected %d results, got: %d", len(devices), len(results))
			}
			seen := make(map[string]int)
			for _, r := range results {
				seen[r.Hostname]++
				if r.Hostname == "sched-r3" {
					if !r.Failed {
						t.Errorf("expected sched-r3 to be a connect failure")
					}
				} else if r.Failed {
					t.Errorf("unexpected failure for %s", r.Hostname)
				}
			}
			for _, d := range devices {
				if seen[d.Hostname] != 1 {
					t.Errorf("expected exactly one result for %s, got: %d", d.Hostname, seen[d.Hostname])
				}
			}
		})
	}
}

func TestSchedulerDefaultWorkers(t *testing.T) {
	devices, p := schedulerFleet(t, 2)
	s := audit.Scheduler{Workers: 0, Pipeline: p}
	results := s.Run(devices)
	if len(results) != 2 {
		t.Fatalf("expected 2 results with default worker count, got: %d", len(results))
	}
}
