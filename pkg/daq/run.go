/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package daq

import (
	"net"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-daq/pkg/layers"
	"jinr.ru/greenlab/go-daq/pkg/log"
)

// RunOptions are the stop conditions of the receive loop. Each is
// independently optional; any one configured condition ends the loop.
type RunOptions struct {
	// Stop ends the loop when closed or signalled
	Stop <-chan struct{}
	// Duration ends the loop this long after it started, 0 disables
	Duration time.Duration
	// MaxSamples ends the loop once at least this many samples were
	// received, 0 disables
	MaxSamples int
}

// Run is the main receive loop. It classifies inbound datagrams, feeds
// accepted DATA frames to the statistics and the sink, and polls the
// stop conditions between short receive timeouts. Cancellation is
// cooperative: worst-case latency to notice a stop request is one poll
// timeout. The loop only stops listening, the caller is responsible for
// sending STOP_ACQ afterwards.
func (c *Client) Run(opts RunOptions) error {
	start := time.Now()
	var deadline time.Time
	if opts.Duration > 0 {
		deadline = start.Add(opts.Duration)
	}
	log.Info("Starting receive loop")

	buffer := make([]byte, layers.MaxDatagramSize)
	for {
		select {
		case <-opts.Stop:
			log.Info("Stop requested, leaving receive loop")
			return nil
		default:
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			log.Info("Session duration elapsed, leaving receive loop")
			return nil
		}
		if opts.MaxSamples > 0 && c.stats.Samples() >= opts.MaxSamples {
			log.Info("Sample target reached, leaving receive loop")
			return nil
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(c.PollTimeout())); err != nil {
			return err
		}
		length, err := c.conn.Read(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return err
		}

		c.handleDatagram(buffer[:length])
	}
}

func (c *Client) handleDatagram(data []byte) {
	if len(data) < layers.HeaderSize {
		log.Debug("Dropping short datagram: %d bytes", len(data))
		return
	}

	header := &layers.DaqLayer{}
	if err := header.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		log.Warning("%s", err)
		return
	}
	if !header.Valid() {
		log.Warning("%s", layers.ErrInvalidMagic{Magic: header.Magic})
		return
	}

	switch header.Type {
	case layers.MsgTypeData:
		payload := &layers.DataLayer{}
		if err := payload.DecodeFromBytes(header.Payload, gopacket.NilDecodeFeedback); err != nil {
			log.Warning("%s", err)
			return
		}
		c.stats.Account(len(data), len(payload.Samples))
		log.Info("[%5d] CH%d: %d samples", header.Seq, payload.Channel, len(payload.Samples))
		if err := c.sink.Store(payload.Channel, payload.Samples, time.Now()); err != nil {
			// sample data for this frame is lost, the session goes on
			log.Error("Error while storing samples: %s", err)
		}
	case layers.MsgTypePong:
		log.Debug("Received unsolicited PONG")
	case layers.MsgTypeStatus:
		log.Debug("Received unsolicited STATUS")
	default:
		log.Debug("Dropping frame with unexpected type: 0x%02x", uint8(header.Type))
	}
}
