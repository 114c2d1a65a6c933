/*
 * ravn shared types
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
)

// Runner is the command surface the audit pipeline needs from a live
// device session. Today, only the session-subpackage and session.Session
// type implements it, but it needs to be defined up here to avoid
// circular dependencies, and it is what tests stand in for.
type Runner interface {
	Exec(cmd string) (string, error)
	ConfigSet(cmds ...string) (string, error)
	Close() error
}

// The error kinds below carry the audit failure policy: a connection
// error is fatal for that one device, a command error is local to the
// step that issued it, a parse error degrades, and a configuration error
// aborts the run before any session opens. Callers branch on kind with
// errors.As.

// ConnectionError means a session could not be established or
// authenticated. There is no retry.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %s", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CommandError means a single command failed or returned something we
// couldn't work with.
type CommandError struct {
	Cmd string
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command `%s': %s", e.Cmd, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseError means device output didn't match the expected shape.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s", e.Reason)
}

// ConfigurationError means the inventory or configuration is unusable.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}
