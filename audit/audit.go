/*
 * ravn audit pipeline
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
Package audit runs the fixed audit pass against single devices, and
schedules those runs across a fleet.

The pipeline is a strictly ordered sequence of checks against one
session. Apart from the initial connect, every step catches its own
failure, records a sentinel in its field of the result and carries on:
one broken check must not cost the rest of the record, and one broken
device must never cost the rest of the fleet.
*/
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/telenornms/ravn"
	"github.com/telenornms/ravn/adjacency"
	"github.com/telenornms/ravn/backup"
	"github.com/telenornms/ravn/inventory"
	"github.com/telenornms/ravn/session"
)

// The command vocabulary. Fixed strings that must match the device CLI
// exactly; the ntp server command is completed with the configured time
// source.
const (
	cmdShowRun      = "sh run"
	cmdCDPStatus    = "sho run | in no cdp run"
	cmdCDPEnable    = "cdp run"
	cmdCDPNeighbors = "sho cdp neigh"
	cmdShowVersion  = "sho ver | in IOS"
	cmdTimezone     = "clock timezone GMT 0"
	cmdNTPMaster    = "ntp master"
	cmdNTPServer    = "ntp server"
	cmdNTPStatus    = "sho ntp status"
)

// StepFailed is the sentinel recorded in a result field when the check
// behind it failed. The record survives, the field doesn't.
const StepFailed = "error"

// ConnectFailed flags the record of a device we never got a session to.
const ConnectFailed = "connect failed"

// Options is the per-run pipeline configuration, constructed once by the
// caller and shared by every device in the run.
type Options struct {
	BackupRoot string
	NTPServer  string        // time source handed to ntp clients
	Settle     time.Duration // wait between ntp config and status check
	Timestamp  string        // run timestamp, one per run
	Session    session.Options
}

// Result is the audit record for one device. One Result per inventory
// device, always, whatever failed along the way.
type Result struct {
	Hostname string
	Platform string
	Version  string
	License  string // PE or NPE
	Topology string
	TimeSync string
	BackupOK bool
	Failed   bool // connect failed, nothing else ran
}

// Record renders the summary line: hostname, platform, version,
// licensing tier, topology status and time-sync status, in that order,
// pipe-joined. A connect-failed device keeps the field count, with the
// flag in the platform field and the rest blank.
func (r Result) Record() string {
	if r.Failed {
		return strings.Join([]string{r.Hostname, ConnectFailed, "", "", "", ""}, "|")
	}
	return strings.Join([]string{r.Hostname, r.Platform, r.Version, r.License, r.Topology, r.TimeSync}, "|")
}

// Pipeline audits devices. Open is swappable so tests can hand the
// pipeline scripted sessions; the default opens a real CLI session.
type Pipeline struct {
	Opts Options
	Open func(dev inventory.Device) (ravn.Runner, error)
}

func NewPipeline(opts Options) *Pipeline {
	p := &Pipeline{Opts: opts}
	p.Open = func(dev inventory.Device) (ravn.Runner, error) {
		return session.Open(dev, opts.Session)
	}
	return p
}

// Audit runs the fixed check sequence against one device and always
// returns a result. A connect failure skips the checks and yields a
// flagged record; anything later degrades per field. The session is
// closed on every exit path.
func (p *Pipeline) Audit(dev inventory.Device) Result {
	r := Result{Hostname: dev.Hostname}
	host, err := inventory.LockHost(dev.Address)
	if err != nil {
		ravn.Logf("%s: %s", dev.Hostname, err)
		r.Failed = true
		return r
	}
	defer host.Unlock()
	sess, err := p.Open(dev)
	if err != nil {
		ravn.Logf("%s: %s", dev.Hostname, err)
		r.Failed = true
		return r
	}
	defer sess.Close()

	r.BackupOK = p.stepBackup(sess, dev.Hostname)
	r.Platform = p.field(dev.Hostname, "platform", func() (string, error) { return p.stepPlatform(sess) })
	r.Version = p.field(dev.Hostname, "version", func() (string, error) { return p.stepVersion(sess) })
	r.License = p.field(dev.Hostname, "license", func() (string, error) { return p.stepLicense(sess) })
	r.Topology = p.field(dev.Hostname, "cdp", func() (string, error) { return p.stepTopology(sess) })
	r.TimeSync = p.field(dev.Hostname, "ntp", func() (string, error) { return p.stepTimeSync(sess, dev.NTPRole) })
	return r
}

// field runs one check, degrading to the sentinel on failure. This is
// where per-step failure isolation lives.
func (p *Pipeline) field(hostname, step string, f func() (string, error)) string {
	v, err := f()
	if err != nil {
		ravn.Logf("%s: %s check: %s", hostname, step, err)
		return StepFailed
	}
	return v
}

// stepBackup pulls the running configuration and stores it verbatim as
// the backup artifact for this host and run.
func (p *Pipeline) stepBackup(sess ravn.Runner, hostname string) bool {
	out, err := sess.Exec(cmdShowRun)
	if err != nil {
		ravn.Logf("%s: backup: %s", hostname, err)
		return false
	}
	path, err := backup.Write(p.Opts.BackupRoot, hostname, p.Opts.Timestamp, out)
	if err != nil {
		ravn.Logf("%s: backup: %s", hostname, err)
		return false
	}
	ravn.Debugf("%s: running config backed up to %s", hostname, path)
	return true
}

// stepPlatform extracts the platform/model token: second comma-field of
// the version banner, with the Software suffix trimmed off.
func (p *Pipeline) stepPlatform(sess ravn.Runner) (string, error) {
	out, err := sess.Exec(cmdShowVersion)
	if err != nil {
		return "", err
	}
	fields := strings.Split(out, ",")
	if len(fields) < 2 {
		return "", &ravn.CommandError{Cmd: cmdShowVersion, Err: fmt.Errorf("unexpected version banner `%s'", out)}
	}
	return strings.TrimSpace(strings.Split(fields[1], "Software")[0]), nil
}

// stepVersion extracts the IOS version token: third comma-field of the
// version banner.
func (p *Pipeline) stepVersion(sess ravn.Runner) (string, error) {
	out, err := sess.Exec(cmdShowVersion)
	if err != nil {
		return "", err
	}
	fields := strings.Split(out, ",")
	if len(fields) < 3 {
		return "", &ravn.CommandError{Cmd: cmdShowVersion, Err: fmt.Errorf("unexpected version banner `%s'", out)}
	}
	return strings.TrimSpace(fields[2]), nil
}

// stepLicense classifies the image as feature-complete (PE) or
// restricted (NPE) on the k9 marker in the version banner,
// case-insensitive.
func (p *Pipeline) stepLicense(sess ravn.Runner) (string, error) {
	out, err := sess.Exec(cmdShowVersion)
	if err != nil {
		return "", err
	}
	if strings.Contains(strings.ToLower(out), "k9") {
		return "PE", nil
	}
	return "NPE", nil
}

// stepTopology checks whether discovery is administratively off,
// re-enables it if so, then counts active adjacencies.
func (p *Pipeline) stepTopology(sess ravn.Runner) (string, error) {
	out, err := sess.Exec(cmdCDPStatus)
	if err != nil {
		return "", err
	}
	if strings.Contains(out, "no cdp run") {
		if _, err := sess.ConfigSet(cmdCDPEnable); err != nil {
			return "", err
		}
	}
	out, err = sess.Exec(cmdCDPNeighbors)
	if err != nil {
		return "", err
	}
	table, err := adjacency.Parse(out)
	if err != nil {
		return "", err
	}
	if n := table.Count(); n > 0 {
		return fmt.Sprintf("CDP is on, %d peers", n), nil
	}
	return "CDP is off", nil
}

// stepTimeSync sets the timezone, configures the device's ntp role,
// waits for the clock to settle and checks sync status against the
// literal the device prints when it is happy.
func (p *Pipeline) stepTimeSync(sess ravn.Runner, role string) (string, error) {
	if _, err := sess.ConfigSet(cmdTimezone); err != nil {
		return "", err
	}
	switch role {
	case inventory.RoleServer:
		if _, err := sess.ConfigSet(cmdNTPMaster); err != nil {
			return "", err
		}
	case inventory.RoleClient:
		if _, err := sess.ConfigSet(cmdNTPServer + " " + p.Opts.NTPServer); err != nil {
			return "", err
		}
	}
	time.Sleep(p.Opts.Settle)
	out, err := sess.Exec(cmdNTPStatus)
	if err != nil {
		return "", err
	}
	if strings.Contains(out, "Clock is synchronized") {
		return "Clock in Sync", nil
	}
	return "Clock not in Sync", nil
}
