/*
 * ravn config tests
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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	saved := Config
	defer func() { Config = saved }()

	content := `workers = 8
backuproot = "/var/lib/ravn/backups"
ntpserver = "10.0.0.123"
settletime = "1s"
`
	path := filepath.Join(t.TempDir(), "audit.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("couldn't write config: %v", err)
	}
	if err := ParseConfig(path); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if Config.Workers != 8 {
		t.Errorf("expected 8 workers, got: %d", Config.Workers)
	}
	if Config.BackupRoot != "/var/lib/ravn/backups" {
		t.Errorf("expected backup root overridden, got: %s", Config.BackupRoot)
	}
	if Config.NTPServer != "10.0.0.123" {
		t.Errorf("expected ntp server overridden, got: %s", Config.NTPServer)
	}
	if Config.SettleTime.Duration != time.Second {
		t.Errorf("expected settle time 1s, got: %s", Config.SettleTime.Duration)
	}
	// untouched settings keep their defaults
	if Config.Queue != "ravn" {
		t.Errorf("expected default queue, got: %s", Config.Queue)
	}
}

func TestParseConfigMissingFile(t *testing.T) {
	saved := Config
	defer func() { Config = saved }()
	if err := ParseConfig(filepath.Join(t.TempDir(), "nope.toml")); err != nil {
		t.Errorf("a missing config file should run on defaults, got: %v", err)
	}
}

func TestParseConfigBadDuration(t *testing.T) {
	saved := Config
	defer func() { Config = saved }()
	path := filepath.Join(t.TempDir(), "audit.toml")
	if err := os.WriteFile(path, []byte("settletime = \"soon\"\n"), 0644); err != nil {
		t.Fatalf("couldn't write config: %v", err)
	}
	if err := ParseConfig(path); err == nil {
		t.Errorf("expected an error for an unparsable duration")
	}
}
