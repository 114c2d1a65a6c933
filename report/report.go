/*
 * ravn report
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
Package report hands the finished audit off: a plain result file,
optionally a skogul handler and optionally an AMQP queue for downstream
aggregation. Ravn never interprets the records again after this point.
*/
package report

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/telenornms/ravn/audit"
	"github.com/telenornms/skogul"
	sconfig "github.com/telenornms/skogul/config"
)

// Feed renders the summary records, one line per device, in the order
// the results completed.
func Feed(results []audit.Result) string {
	records := make([]string, 0, len(results))
	for _, r := range results {
		records = append(records, r.Record())
	}
	return strings.Join(records, "\n")
}

// WriteFile persists the summary feed.
func WriteFile(path string, results []audit.Result) error {
	if err := os.WriteFile(path, []byte(Feed(results)), 0644); err != nil {
		return fmt.Errorf("result file %s: %w", path, err)
	}
	return nil
}

// Ship pushes one metric per result through the ravn skogul handler.
// Where the results end up after that is the skogul config's business.
func Ship(configPath string, results []audit.Result) error {
	cfg, err := sconfig.Path(configPath)
	if err != nil {
		return fmt.Errorf("skogul-config failed loading: %w", err)
	}
	if cfg.Handlers["ravn"] == nil {
		return fmt.Errorf("missing ravn handler in skogul config")
	}
	c := skogul.Container{}
	for idx := range results {
		c.Metrics = append(c.Metrics, metric(&results[idx]))
	}
	if err := cfg.Handlers["ravn"].Handler.TransformAndSend(&c); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

func metric(r *audit.Result) *skogul.Metric {
	m := skogul.Metric{}
	m.Metadata = make(map[string]interface{})
	m.Metadata["hostname"] = r.Hostname
	m.Data = make(map[string]interface{})
	m.Data["platform"] = r.Platform
	m.Data["version"] = r.Version
	m.Data["license"] = r.License
	m.Data["topology"] = r.Topology
	m.Data["timesync"] = r.TimeSync
	m.Data["backup"] = r.BackupOK
	m.Data["connectfailed"] = r.Failed
	return &m
}

// Publish sends the newline-joined feed to a broker queue for whatever
// aggregator sits on the other side.
func Publish(broker, queue string, results []audit.Result) error {
	conn, err := amqp.Dial(broker)
	if err != nil {
		return fmt.Errorf("can't connect to broker: %w", err)
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("can't get channel: %w", err)
	}
	defer ch.Close()
	q, err := ch.QueueDeclare(
		queue, // name
		false, // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("can't declare queue: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = ch.PublishWithContext(ctx,
		"",     // exchange
		q.Name, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType: "text/plain",
			Body:        []byte(Feed(results)),
		})
	if err != nil {
		return fmt.Errorf("failed to publish results: %w", err)
	}
	return nil
}
