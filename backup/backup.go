/*
 * ravn backup artifacts
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

// Package backup writes running-configuration backup artifacts: one
// file per host and run, verbatim content, under a per-host directory.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimestampFormat is the run timestamp layout. One timestamp is
// generated per run and shared by every device in it.
const TimestampFormat = "2006_01_02-15_04_05"

// Timestamp stamps a run.
func Timestamp() string {
	return time.Now().Format(TimestampFormat)
}

// Path returns the artifact path for a host and run timestamp, creating
// the per-host directory on first use.
func Path(root, hostname, timestamp string) (string, error) {
	dir := filepath.Join(root, hostname)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("backup dir %s: %w", dir, err)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.txt", hostname, timestamp)), nil
}

// Write stores command output verbatim and returns the artifact path.
// No transformation: reading the artifact back gives byte-identical
// content.
func Write(root, hostname, timestamp, output string) (string, error) {
	path, err := Path(root, hostname, timestamp)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(output), 0644); err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	return path, nil
}
