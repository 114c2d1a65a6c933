/*
 * ravn log-wrappers
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

/*
log.go is largely a wrapper around log for now, so regular calls to log
can be made without having to worry about future-proofing them.

Add wrappers on demand.

The one concession it has is that Debug/Debugf evaluate whether
debugging is turned on before formatting anything. This makes calls to
ravn.Debug() very fast when it's disabled, so per-command debug-logging
in the session layer doesn't slow down regular runs.
*/

import (
	"fmt"
	"log"
	"os"
)

func Init() {
	d := log.Default()
	if Config.Debug {
		d.SetFlags(log.Ltime | log.Lshortfile)
	} else {
		d.SetFlags(log.Ltime)
	}
}

func Log(v ...any) {
	log.Output(2, fmt.Sprint(v...))
}

func Logf(format string, v ...any) {
	log.Output(2, fmt.Sprintf(format, v...))
}

func Fatal(v ...any) {
	log.Output(2, fmt.Sprint(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	log.Output(2, fmt.Sprintf(format, v...))
	os.Exit(1)
}

func Debug(v ...any) {
	if Config.Debug {
		log.Output(2, fmt.Sprint(v...))
	}
}

func Debugf(format string, v ...any) {
	if Config.Debug {
		log.Output(2, fmt.Sprintf(format, v...))
	}
}
