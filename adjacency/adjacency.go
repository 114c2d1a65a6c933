/*
 * ravn adjacency map
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

// Package adjacency turns free-form neighbor-discovery output into a
// structured adjacency table, keyed by local port.
package adjacency

import (
	"fmt"
	"strings"
	"time"

	"github.com/telenornms/ravn"
)

// Key identifies the local end of an adjacency: which device, which
// port.
type Key struct {
	Device string
	Port   string
}

// Peer is the remote end of an adjacency.
type Peer struct {
	Device string
	Port   string
}

// Table is the set of adjacencies one device sees at one point in time.
// Last seen wins on duplicate keys; the neighbor table isn't expected to
// list one local port twice in a single query, but a rogue duplicate
// must not grow the set.
type Table struct {
	Relations map[Key]Peer
	Device    string    // local device name, from the output header
	Skipped   int       // malformed neighbor lines we refused to guess at
	Timestamp time.Time // when the table was parsed
}

// portID terminates the column header of the neighbor list. Everything
// after it is tabular neighbor data.
const portID = "Port ID"

// Parse builds a Table from raw `sho cdp neigh` output. The expected
// shape is a device-name header ending in a `>' prompt marker, a column
// header ending in the Port ID marker, then one line per neighbor:
//
//	R2    Gig 0/1    144    R S I  CSR1000V  Gig 0/2
//
// Field 0 is the remote device name, fields 1 and 2 joined are the
// local port, and the last two fields joined are the remote port. Zero
// neighbor lines is a valid, empty table. Lines too short to hold both
// ports are skipped and counted, not guessed at.
func Parse(raw string) (*Table, error) {
	t := &Table{
		Relations: make(map[Key]Peer),
		Timestamp: time.Now(),
	}
	head, _, found := strings.Cut(raw, ">")
	if !found {
		return nil, &ravn.ParseError{Reason: "no prompt marker in neighbor output header"}
	}
	t.Device = strings.ReplaceAll(strings.ReplaceAll(head, "\r", ""), "\n", "")
	_, body, found := strings.Cut(raw, portID)
	if !found {
		return nil, &ravn.ParseError{Reason: fmt.Sprintf("no `%s' column marker in neighbor output", portID)}
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			ravn.Debugf("%s: skipping short neighbor line `%s'", t.Device, strings.TrimSpace(line))
			t.Skipped++
			continue
		}
		k := Key{Device: t.Device, Port: fields[1] + fields[2]}
		t.Relations[k] = Peer{
			Device: fields[0],
			Port:   fields[len(fields)-2] + fields[len(fields)-1],
		}
	}
	return t, nil
}

// Count is the number of distinct adjacencies in the table.
func (t *Table) Count() int {
	return len(t.Relations)
}
