/*
 * ravn backup tests
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

package backup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/telenornms/ravn/backup"
)

func TestWrite(t *testing.T) {
	root := t.TempDir()
	config := "!\nhostname r1\n!\nntp server 192.168.194.101\nend\n"
	path, err := backup.Write(root, "r1", "2024_05_06-07_08_09", config)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := filepath.Join(root, "r1", "r1-2024_05_06-07_08_09.txt")
	if path != want {
		t.Errorf("expected artifact at `%s', got: `%s'", want, path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if string(got) != config {
		t.Errorf("backup isn't byte-identical, got: `%s'", got)
	}
}

func TestWritePerHostDir(t *testing.T) {
	root := t.TempDir()
	for _, host := range []string{"r1", "r2"} {
		if _, err := backup.Write(root, host, "2024_05_06-07_08_09", "end\n"); err != nil {
			t.Fatalf("write for %s failed: %v", host, err)
		}
	}
	for _, host := range []string{"r1", "r2"} {
		fi, err := os.Stat(filepath.Join(root, host))
		if err != nil || !fi.IsDir() {
			t.Errorf("expected a directory per host, %s: %v", host, err)
		}
	}
}

func TestTimestamp(t *testing.T) {
	ts := backup.Timestamp()
	if _, err := time.Parse(backup.TimestampFormat, ts); err != nil {
		t.Errorf("timestamp `%s' doesn't match its own format: %v", ts, err)
	}
}
