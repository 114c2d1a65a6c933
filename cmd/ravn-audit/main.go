/*
 * ravn audit orchestrator
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

// ravn-audit runs one audit pass over the inventory and exits: backup,
// platform/version/license identification, topology-discovery and
// time-sync checks, one summary record per device.
package main

import (
	"flag"

	"github.com/telenornms/ravn"
	"github.com/telenornms/ravn/audit"
	"github.com/telenornms/ravn/backup"
	"github.com/telenornms/ravn/inventory"
	"github.com/telenornms/ravn/report"
	"github.com/telenornms/ravn/session"
)

func main() {
	var configFile string
	var inventoryPath string
	var workers int
	flag.BoolVar(&ravn.Config.Debug, "debug", false, "enable debug")
	flag.StringVar(&configFile, "f", "/etc/ravn/audit.toml", "audit config file")
	flag.StringVar(&inventoryPath, "i", "", "device inventory (CSV), overrides config")
	flag.IntVar(&workers, "w", 0, "concurrent device sessions, overrides config")
	flag.Parse()
	if err := ravn.ParseConfig(configFile); err != nil {
		ravn.Fatalf("Couldn't parse config: %s", err)
	}
	if inventoryPath != "" {
		ravn.Config.InventoryPath = inventoryPath
	}
	if workers > 0 {
		ravn.Config.Workers = workers
	}
	ravn.Init()

	devices, err := inventory.Load(ravn.Config.InventoryPath)
	if err != nil {
		ravn.Fatalf("Couldn't load inventory: %s", err)
	}
	ravn.Logf("Got %d devices from %s", len(devices), ravn.Config.InventoryPath)

	ts := backup.Timestamp()
	pipeline := audit.NewPipeline(audit.Options{
		BackupRoot: ravn.Config.BackupRoot,
		NTPServer:  ravn.Config.NTPServer,
		Settle:     ravn.Config.SettleTime.Duration,
		Timestamp:  ts,
		Session: session.Options{
			ConnectTimeout: ravn.Config.ConnectTimeout.Duration,
			CommandTimeout: ravn.Config.CommandTimeout.Duration,
		},
	})
	sched := audit.Scheduler{Workers: ravn.Config.Workers, Pipeline: pipeline}
	ravn.Logf("Starting audit run %s with %d workers", ts, ravn.Config.Workers)
	results := sched.Run(devices)

	if err := report.WriteFile(ravn.Config.ResultFile, results); err != nil {
		ravn.Fatalf("Couldn't write results: %s", err)
	}
	ravn.Logf("Wrote %d records to %s", len(results), ravn.Config.ResultFile)
	if ravn.Config.OutputConfig != "" {
		if err := report.Ship(ravn.Config.OutputConfig, results); err != nil {
			ravn.Logf("Shipping results failed: %s", err)
		}
	}
	if ravn.Config.Broker != "" {
		if err := report.Publish(ravn.Config.Broker, ravn.Config.Queue, results); err != nil {
			ravn.Logf("Publishing results failed: %s", err)
		}
	}
}
