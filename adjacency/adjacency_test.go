/*
 * ravn adjacency tests
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

package adjacency_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/telenornms/ravn"
	"github.com/telenornms/ravn/adjacency"
)

const neighOutput = `R1>sho cdp neigh
Capability Codes: R - Router, T - Trans Bridge, B - Source Route Bridge

Device ID        Local Intrfce     Holdtme    Capability  Platform  Port ID
R2               Gig 0/1           144             R S I  CSR1000V  Gig 0/2
R3               Gig 0/3           155             R S I  CSR1000V  Gig 0/1
`

func TestParse(t *testing.T) {
	table, err := adjacency.Parse(neighOutput)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if table.Device != "R1" {
		t.Errorf("expected local device to be `R1', got: %s", table.Device)
	}
	if table.Count() != 2 {
		t.Errorf("expected 2 adjacencies, got: %d", table.Count())
	}
	peer, ok := table.Relations[adjacency.Key{Device: "R1", Port: "Gig0/1"}]
	if !ok {
		t.Fatalf("no relation for local port R1/Gig0/1")
	}
	if peer.Device != "R2" {
		t.Errorf("expected remote device to be `R2', got: %s", peer.Device)
	}
	if peer.Port != "Gig0/2" {
		t.Errorf("expected remote port to be `Gig0/2', got: %s", peer.Port)
	}
	if table.Skipped != 0 {
		t.Errorf("expected no skipped lines, got: %d", table.Skipped)
	}
}

func TestParseIdempotent(t *testing.T) {
	a, err := adjacency.Parse(neighOutput)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	b, err := adjacency.Parse(neighOutput)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}
	if !reflect.DeepEqual(a.Relations, b.Relations) {
		t.Errorf("parsing the same output twice gave different relation sets")
	}
}

func TestParseEmpty(t *testing.T) {
	raw := "R1>sho cdp neigh\nDevice ID        Local Intrfce     Holdtme    Capability  Platform  Port ID\n\n"
	table, err := adjacency.Parse(raw)
	if err != nil {
		t.Fatalf("zero neighbor lines should parse, got: %v", err)
	}
	if table.Count() != 0 {
		t.Errorf("expected an empty table, got %d adjacencies", table.Count())
	}
}

func TestParseShortLines(t *testing.T) {
	raw := "R1>sho cdp neigh\nblah blah Port ID\nR2 Gig\nR3               Gig 0/3           155             R S I  CSR1000V  Gig 0/1\n"
	table, err := adjacency.Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if table.Skipped != 1 {
		t.Errorf("expected 1 skipped line, got: %d", table.Skipped)
	}
	if table.Count() != 1 {
		t.Errorf("expected 1 adjacency, got: %d", table.Count())
	}
}

func TestParseLastSeenWins(t *testing.T) {
	raw := "R1>sho cdp neigh\nblah Port ID\n" +
		"R2               Gig 0/1           144             R S I  CSR1000V  Gig 0/2\n" +
		"R9               Gig 0/1           144             R S I  CSR1000V  Gig 0/9\n"
	table, err := adjacency.Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if table.Count() != 1 {
		t.Errorf("duplicate local port should not grow the set, got: %d", table.Count())
	}
	peer := table.Relations[adjacency.Key{Device: "R1", Port: "Gig0/1"}]
	if peer.Device != "R9" {
		t.Errorf("expected last entry to win, got remote device: %s", peer.Device)
	}
}

func TestParseBadShape(t *testing.T) {
	var perr *ravn.ParseError
	if _, err := adjacency.Parse("no prompt marker here"); !errors.As(err, &perr) {
		t.Errorf("expected a ParseError for missing prompt marker, got: %v", err)
	}
	if _, err := adjacency.Parse("R1>sho cdp neigh\nno column marker here\n"); !errors.As(err, &perr) {
		t.Errorf("expected a ParseError for missing column marker, got: %v", err)
	}
}
