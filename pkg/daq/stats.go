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
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stats accumulates session counters. Only the receive loop mutates
// them; the mutex exists because the stats API server reads snapshots
// from its own goroutine while the loop is running.
type Stats struct {
	mu      sync.Mutex
	packets int
	samples int
	bytes   int
	start   time.Time
}

func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

// Account records one accepted DATA frame
func (s *Stats) Account(bytes, samples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets++
	s.samples += samples
	s.bytes += bytes
}

// Samples returns the number of samples received so far
func (s *Stats) Samples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}

type StatsSnapshot struct {
	PacketsReceived int       `json:"packetsReceived"`
	SamplesReceived int       `json:"samplesReceived"`
	BytesReceived   int       `json:"bytesReceived"`
	StartTime       time.Time `json:"startTime"`
	ElapsedSeconds  float64   `json:"elapsedSeconds"`
	SampleRate      float64   `json:"sampleRate"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.start).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(s.samples) / elapsed
	}
	return StatsSnapshot{
		PacketsReceived: s.packets,
		SamplesReceived: s.samples,
		BytesReceived:   s.bytes,
		StartTime:       s.start,
		ElapsedSeconds:  elapsed,
		SampleRate:      rate,
	}
}

// Summary formats the snapshot for printing at session teardown
func (s StatsSnapshot) Summary() string {
	var b strings.Builder
	line := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "Session Statistics\n")
	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "  Duration:         %.2f s\n", s.ElapsedSeconds)
	fmt.Fprintf(&b, "  Packets received: %d\n", s.PacketsReceived)
	fmt.Fprintf(&b, "  Samples received: %d\n", s.SamplesReceived)
	fmt.Fprintf(&b, "  Bytes received:   %d\n", s.BytesReceived)
	fmt.Fprintf(&b, "  Sample rate:      %.1f samples/s\n", s.SampleRate)
	fmt.Fprintf(&b, "%s", line)
	return b.String()
}
