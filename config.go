/*
 * ravn config
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

package ravn

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so config files can say "5s" instead of
// counting nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(b))
	return err
}

type conf struct {
	Workers        int      // concurrent device sessions
	Debug          bool     // debug logging
	InventoryPath  string   // device inventory, CSV
	BackupRoot     string   // root directory for config backups
	ResultFile     string   // summary record file
	OutputConfig   string   // skogul config for shipping results, blank = off
	Broker         string   // AMQP url for publishing the result feed, blank = off
	Queue          string   // AMQP queue name
	NTPServer      string   // time source handed to ntp clients
	ConnectTimeout Duration // session establishment, per device
	CommandTimeout Duration // single command, per command
	SettleTime     Duration // wait between ntp config and status check
}

// Config holds the process-wide settings. It is populated exactly once,
// by main, through flags and ParseConfig, before anything else starts.
// Components do not read it: they get the values they need passed in
// explicitly.
var Config conf = conf{
	Workers:        4,
	Debug:          false,
	InventoryPath:  "devices.csv",
	BackupRoot:     "backups",
	ResultFile:     "result.txt",
	Queue:          "ravn",
	NTPServer:      "192.168.194.101",
	ConnectTimeout: Duration{time.Second * 10},
	CommandTimeout: Duration{time.Second * 30},
	SettleTime:     Duration{time.Second * 5},
}

// ParseConfig reads a TOML config file on top of the defaults. Every
// setting has a workable default, so a file that isn't there is not an
// error, just a run on defaults.
func ParseConfig(file string) error {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		Debugf("no config file at %s, using defaults", file)
		return nil
	}
	if _, err := toml.DecodeFile(file, &Config); err != nil {
		return fmt.Errorf("config %s: %w", file, err)
	}
	return nil
}
