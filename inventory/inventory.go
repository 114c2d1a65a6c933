/*
 * ravn inventory
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

/*
Package inventory loads and validates the device inventory, and deals
with host-level locking.

The inventory is a CSV file, one row per device. Validation is strict
and happens up front: a malformed row is a configuration error surfaced
before any session opens, never a runtime surprise halfway through an
audit pass.
*/
package inventory

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/telenornms/ravn"
)

// Driver kinds accepted in the driver column. They decide the session
// transport.
const (
	DriverSSH    = "cisco_ios"
	DriverTelnet = "cisco_ios_telnet"
)

// NTP roles accepted in the ntp_role column.
const (
	RoleServer = "server"
	RoleClient = "client"
)

// Device is one inventory row. Immutable once loaded.
type Device struct {
	Address  string
	Username string
	Password string
	Secret   string // enable secret. Blank means: use the password.
	Driver   string
	Hostname string
	NTPRole  string
}

var columns = []string{"address", "username", "password", "secret", "driver", "hostname", "ntp_role"}

// Load reads and validates the inventory. Any missing required field,
// unknown driver or role, or duplicate host is a ConfigurationError,
// returned before anything gets to open a session.
func Load(path string) ([]Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, &ravn.ConfigurationError{Field: "inventory", Reason: "empty file, no header"}
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}
	devices := make([]Device, 0, len(rows)-1)
	seen := make(map[string]bool)
	for n, row := range rows[1:] {
		if len(row) != len(columns) {
			return nil, &ravn.ConfigurationError{Field: "inventory", Reason: fmt.Sprintf("row %d has %d fields, want %d", n+2, len(row), len(columns))}
		}
		d := Device{
			Address:  strings.TrimSpace(row[0]),
			Username: strings.TrimSpace(row[1]),
			Password: strings.TrimSpace(row[2]),
			Secret:   strings.TrimSpace(row[3]),
			Driver:   strings.TrimSpace(row[4]),
			Hostname: strings.TrimSpace(row[5]),
			NTPRole:  strings.TrimSpace(row[6]),
		}
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("inventory %s row %d: %w", path, n+2, err)
		}
		if seen[d.Hostname] || seen[d.Address] {
			return nil, &ravn.ConfigurationError{Field: "hostname", Reason: fmt.Sprintf("duplicate device %s (%s)", d.Hostname, d.Address)}
		}
		seen[d.Hostname] = true
		seen[d.Address] = true
		devices = append(devices, d)
	}
	ravn.Debugf("got %d devices from %s", len(devices), path)
	return devices, nil
}

func checkHeader(head []string) error {
	if len(head) != len(columns) {
		return &ravn.ConfigurationError{Field: "header", Reason: fmt.Sprintf("want columns %s", strings.Join(columns, ","))}
	}
	for i, c := range columns {
		if strings.TrimSpace(head[i]) != c {
			return &ravn.ConfigurationError{Field: "header", Reason: fmt.Sprintf("column %d is `%s', want `%s'", i+1, head[i], c)}
		}
	}
	return nil
}

func (d Device) validate() error {
	required := map[string]string{
		"address":  d.Address,
		"username": d.Username,
		"password": d.Password,
		"driver":   d.Driver,
		"hostname": d.Hostname,
		"ntp_role": d.NTPRole,
	}
	for _, field := range []string{"address", "username", "password", "driver", "hostname", "ntp_role"} {
		if required[field] == "" {
			return &ravn.ConfigurationError{Field: field, Reason: "required field is blank"}
		}
	}
	if d.Driver != DriverSSH && d.Driver != DriverTelnet {
		return &ravn.ConfigurationError{Field: "driver", Reason: fmt.Sprintf("unknown driver `%s'", d.Driver)}
	}
	if d.NTPRole != RoleServer && d.NTPRole != RoleClient {
		return &ravn.ConfigurationError{Field: "ntp_role", Reason: fmt.Sprintf("unknown role `%s'", d.NTPRole)}
	}
	return nil
}

var targets sync.Map

// Host is a held host-level lock.
type Host struct {
	Address string
}

// LockHost acquires a host-level lock for a target. Must call h.Unlock()
// when done.
func LockHost(t string) (Host, error) {
	h := Host{}
	_, loaded := targets.LoadOrStore(t, 1)
	if loaded {
		return h, fmt.Errorf("target still locked, refusing to start more runs")
	}
	h.Address = t
	return h, nil
}

// Unlock releases the host-level lock.
func (h *Host) Unlock() {
	targets.Delete(h.Address)
}
