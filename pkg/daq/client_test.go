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
	"sync"
	"testing"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-daq/pkg/config"
	"jinr.ru/greenlab/go-daq/pkg/layers"
	"jinr.ru/greenlab/go-daq/pkg/log"
)

func init() {
	log.SetLevel("error")
}

// testDevice stands in for the acquisition device on loopback
type testDevice struct {
	t    *testing.T
	conn *net.UDPConn
}

func newTestDevice(t *testing.T) *testDevice {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ResolveUDPAddr: %v", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testDevice{t: t, conn: conn}
}

func (d *testDevice) port() int {
	return d.conn.LocalAddr().(*net.UDPAddr).Port
}

// readFrame blocks for one datagram from the client and returns it with
// the client's address
func (d *testDevice) readFrame() ([]byte, *net.UDPAddr) {
	buffer := make([]byte, layers.MaxDatagramSize)
	d.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	length, addr, err := d.conn.ReadFromUDP(buffer)
	if err != nil {
		d.t.Fatalf("device read: %v", err)
	}
	return buffer[:length], addr
}

func (d *testDevice) send(to *net.UDPAddr, frame []byte) {
	if _, err := d.conn.WriteToUDP(frame, to); err != nil {
		d.t.Errorf("device send: %v", err)
	}
}

func testConfig(devicePort int) *config.Config {
	return &config.Config{
		DeviceConfig:     &config.DeviceConfig{Address: "127.0.0.1", Port: devicePort},
		StorageConfig:    &config.StorageConfig{Backend: "none"},
		LocalPort:        0,
		CommandTimeoutMs: 250,
		PollTimeoutMs:    50,
	}
}

func newTestClient(t *testing.T, device *testDevice, sink *recordingSink) *Client {
	t.Helper()
	if sink == nil {
		sink = &recordingSink{}
	}
	client, err := NewClient(testConfig(device.port()), sink)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// clientAddr is where the device sends pushed frames
func clientAddr(t *testing.T, client *Client) *net.UDPAddr {
	t.Helper()
	port := client.LocalAddr().(*net.UDPAddr).Port
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

type storedBatch struct {
	channel uint8
	samples []uint16
}

type recordingSink struct {
	mu      sync.Mutex
	batches []storedBatch
	err     error
}

func (s *recordingSink) Store(channel uint8, samples []uint16, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, storedBatch{
		channel: channel,
		samples: append([]uint16(nil), samples...),
	})
	return nil
}

func (s *recordingSink) Close() error {
	return nil
}

func (s *recordingSink) all() []storedBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storedBatch(nil), s.batches...)
}

func serialize(t *testing.T, serializable ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, serializable...); err != nil {
		t.Fatalf("SerializeLayers: %v", err)
	}
	return buf.Bytes()
}

func dataFrame(t *testing.T, seq uint16, channel uint8, samples []uint16) []byte {
	return serialize(t,
		&layers.DaqLayer{DaqHeader: layers.DaqHeader{Magic: layers.ProtocolMagic, Type: layers.MsgTypeData, Seq: seq}},
		&layers.DataLayer{Channel: channel, Samples: samples})
}

func decodeCommand(t *testing.T, frame []byte) (*layers.DaqLayer, *layers.CommandLayer) {
	t.Helper()
	header := &layers.DaqLayer{}
	if err := header.DecodeFromBytes(frame, gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if !header.Valid() {
		t.Fatal("command frame has invalid magic")
	}
	command := &layers.CommandLayer{}
	if err := command.DecodeFromBytes(header.Payload, gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("decode command: %v", err)
	}
	return header, command
}

func TestCommandsShareOneSequence(t *testing.T) {
	device := newTestDevice(t)
	client := newTestClient(t, device, nil)

	if err := client.StartAcquisition(); err != nil {
		t.Fatalf("StartAcquisition: %v", err)
	}
	if err := client.ConfigureChannel(2); err != nil {
		t.Fatalf("ConfigureChannel: %v", err)
	}
	if err := client.StopAcquisition(); err != nil {
		t.Fatalf("StopAcquisition: %v", err)
	}

	wantCommands := []struct {
		command   layers.CommandCode
		paramType layers.ConfigParam
		param     uint16
	}{
		{layers.CommandStartAcq, 0, 0},
		{layers.CommandConfigure, layers.ConfigChannel, 2},
		{layers.CommandStopAcq, 0, 0},
	}
	for i, want := range wantCommands {
		frame, _ := device.readFrame()
		header, command := decodeCommand(t, frame)
		if header.Seq != uint16(i) {
			t.Errorf("frame %d: Seq = %d, want %d", i, header.Seq, i)
		}
		if command.Command != want.command || command.ParamType != want.paramType || command.Param != want.param {
			t.Errorf("frame %d: got %s/%d/%d, want %s/%d/%d", i,
				command.Command, command.ParamType, command.Param,
				want.command, want.paramType, want.param)
		}
	}
}

func TestConfigureValidation(t *testing.T) {
	device := newTestDevice(t)
	client := newTestClient(t, device, nil)

	tests := []struct {
		name string
		call func() error
	}{
		{"threshold percent above range", func() error { return client.ConfigureThresholdPercent(101) }},
		{"threshold mv above range", func() error { return client.ConfigureThresholdMV(3301) }},
		{"threshold mv negative", func() error { return client.ConfigureThresholdMV(-1) }},
		{"batch size zero", func() error { return client.ConfigureBatchSize(0) }},
		{"batch size above range", func() error { return client.ConfigureBatchSize(501) }},
		{"channel above range", func() error { return client.ConfigureChannel(8) }},
		{"device log level above range", func() error { return client.SetDeviceLogLevel(6) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if _, ok := err.(ErrParamOutOfRange); !ok {
				t.Fatalf("expected ErrParamOutOfRange, got %v", err)
			}
		})
	}
}

func TestGetStatus(t *testing.T) {
	device := newTestDevice(t)
	client := newTestClient(t, device, nil)

	go func() {
		frame, addr := device.readFrame()
		_, command := decodeCommand(t, frame)
		if command.Command != layers.CommandGetStatus {
			t.Errorf("device received %s, want GET_STATUS", command.Command)
		}
		device.send(addr, serialize(t,
			&layers.DaqLayer{DaqHeader: layers.DaqHeader{Magic: layers.ProtocolMagic, Type: layers.MsgTypeStatus}},
			&layers.StatusLayer{Acquiring: true, Channel: 4, ThresholdMV: 1650, Uptime: 120, SamplesSent: 5000}))
	}()

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status == nil {
		t.Fatal("GetStatus returned no status")
	}
	if !status.Acquiring || status.Channel != 4 || status.ThresholdMV != 1650 ||
		status.Uptime != 120 || status.SamplesSent != 5000 {
		t.Errorf("status = %+v", status)
	}
}

func TestGetStatusTimeout(t *testing.T) {
	device := newTestDevice(t)
	client := newTestClient(t, device, nil)

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != nil {
		t.Errorf("status = %+v, want nil on timeout", status)
	}
}

func TestGetStatusIgnoresWrongReply(t *testing.T) {
	// a reply of the wrong type is "no status" for this call, the
	// client does not re-loop waiting for the right one
	device := newTestDevice(t)
	client := newTestClient(t, device, nil)

	go func() {
		_, addr := device.readFrame()
		device.send(addr, serialize(t,
			&layers.DaqLayer{DaqHeader: layers.DaqHeader{Magic: layers.ProtocolMagic, Type: layers.MsgTypePong}}))
	}()

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != nil {
		t.Errorf("status = %+v, want nil for wrong reply type", status)
	}
}

func TestPing(t *testing.T) {
	device := newTestDevice(t)
	client := newTestClient(t, device, nil)

	go func() {
		frame, addr := device.readFrame()
		header := &layers.DaqLayer{}
		if err := header.DecodeFromBytes(frame, gopacket.NilDecodeFeedback); err != nil {
			t.Errorf("decode ping: %v", err)
			return
		}
		if header.Type != layers.MsgTypePing {
			t.Errorf("device received %s, want Ping", header.Type)
		}
		device.send(addr, serialize(t,
			&layers.DaqLayer{DaqHeader: layers.DaqHeader{Magic: layers.ProtocolMagic, Type: layers.MsgTypePong, Seq: header.Seq}}))
	}()

	rtt, ok, err := client.Ping()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if !ok {
		t.Fatal("Ping got no reply")
	}
	if rtt <= 0 || rtt > time.Second {
		t.Errorf("rtt = %v", rtt)
	}
}

func TestPingTimeout(t *testing.T) {
	device := newTestDevice(t)
	client := newTestClient(t, device, nil)

	_, ok, err := client.Ping()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if ok {
		t.Error("Ping reported a reply from a silent device")
	}
}
