/*
 * ravn documentation-dummy
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
Package ravn is a toolset for auditing and backing up large amounts of
network devices over their interactive command line, initially Cisco
IOS-style devices reached over SSH or telnet, but conceptually any
CLI-driven platform.

One invocation performs one audit pass over an inventory and exits: pull
the running configuration, check topology-discovery and
time-synchronization state, identify platform, version and licensing
tier, and emit one summary record per device. Devices are audited in
parallel by a bounded pool of workers, and a broken device never costs
the run more than its own record. The results are reported using Skogul.
*/
package ravn
