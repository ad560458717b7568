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
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-daq/pkg/config"
	"jinr.ru/greenlab/go-daq/pkg/layers"
	"jinr.ru/greenlab/go-daq/pkg/log"
	"jinr.ru/greenlab/go-daq/pkg/storage"
)

// Client owns the one UDP socket of a session. It is not safe for two
// logical callers at once: request/response commands must not be issued
// while the receive loop is active.
type Client struct {
	*config.Config
	Router    *mux.Router
	conn      *net.UDPConn
	sequencer *layers.Sequencer
	sink      storage.Sink
	stats     *Stats
}

func NewClient(cfg *config.Config, sink storage.Sink) (*Client, error) {
	log.Debug("Initializing client: device: %s:%d local port: %d",
		cfg.DeviceConfig.Address, cfg.DeviceConfig.Port, cfg.LocalPort)

	laddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", cfg.LocalPort))
	if err != nil {
		return nil, err
	}
	raddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", cfg.DeviceConfig.Address, cfg.DeviceConfig.Port))
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, err
	}

	log.Info("Client bound to port %d", cfg.LocalPort)
	log.Info("Target: %s:%d", cfg.DeviceConfig.Address, cfg.DeviceConfig.Port)

	return &Client{
		Config:    cfg,
		conn:      conn,
		sequencer: layers.NewSequencer(),
		sink:      sink,
		stats:     NewStats(),
	}, nil
}

// Close releases the socket and closes the sink. A sink close error is
// fatal to the session, the trailing batch may not have reached disk.
func (c *Client) Close() error {
	if err := c.conn.Close(); err != nil {
		c.sink.Close()
		return err
	}
	return c.sink.Close()
}

// Stats returns the session counters for summary printing
func (c *Client) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

// LocalAddr returns the bound address of the session socket
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Client) send(data []byte) error {
	_, err := c.conn.Write(data)
	return err
}

func (c *Client) sendCommand(cmd layers.CommandCode, paramType layers.ConfigParam, param uint16) error {
	d := &layers.DaqLayer{
		DaqHeader: layers.DaqHeader{
			Magic: layers.ProtocolMagic,
			Type:  layers.MsgTypeCmd,
			Seq:   c.sequencer.Next(),
		},
	}
	payload := &layers.CommandLayer{
		Command:   cmd,
		ParamType: paramType,
		Param:     param,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := gopacket.SerializeLayers(buf, opts, d, payload); err != nil {
		return err
	}
	if err := c.send(buf.Bytes()); err != nil {
		return err
	}
	log.Debug("Sent command: %s paramType: %d param: %d", cmd, paramType, param)
	return nil
}

// StartAcquisition starts data acquisition on the device. One-shot, the
// device does not acknowledge.
func (c *Client) StartAcquisition() error {
	if err := c.sendCommand(layers.CommandStartAcq, 0, 0); err != nil {
		return err
	}
	log.Info("Sent START_ACQ command")
	return nil
}

// StopAcquisition stops data acquisition on the device
func (c *Client) StopAcquisition() error {
	if err := c.sendCommand(layers.CommandStopAcq, 0, 0); err != nil {
		return err
	}
	log.Info("Sent STOP_ACQ command")
	return nil
}

// ConfigureThresholdPercent sets the threshold as a percentage of full scale
func (c *Client) ConfigureThresholdPercent(percent int) error {
	if percent < 0 || percent > 100 {
		return ErrParamOutOfRange{Param: "threshold percent", Value: percent, Min: 0, Max: 100}
	}
	if err := c.sendCommand(layers.CommandConfigure, layers.ConfigThresholdPercent, uint16(percent)); err != nil {
		return err
	}
	log.Info("Configured threshold: %d%%", percent)
	return nil
}

// ConfigureThresholdMV sets the threshold in millivolts
func (c *Client) ConfigureThresholdMV(mv int) error {
	if mv < 0 || mv > 3300 {
		return ErrParamOutOfRange{Param: "threshold", Value: mv, Min: 0, Max: 3300}
	}
	if err := c.sendCommand(layers.CommandConfigure, layers.ConfigThresholdMV, uint16(mv)); err != nil {
		return err
	}
	log.Info("Configured threshold: %d mV", mv)
	return nil
}

// ConfigureBatchSize sets the number of samples the device packs per DATA frame
func (c *Client) ConfigureBatchSize(size int) error {
	if size < 1 || size > 500 {
		return ErrParamOutOfRange{Param: "batch size", Value: size, Min: 1, Max: 500}
	}
	if err := c.sendCommand(layers.CommandConfigure, layers.ConfigBatchSize, uint16(size)); err != nil {
		return err
	}
	log.Info("Configured batch size: %d", size)
	return nil
}

// ConfigureChannel selects the ADC channel
func (c *Client) ConfigureChannel(channel int) error {
	if channel < 0 || channel > layers.MaxChannel {
		return ErrParamOutOfRange{Param: "channel", Value: channel, Min: 0, Max: layers.MaxChannel}
	}
	if err := c.sendCommand(layers.CommandConfigure, layers.ConfigChannel, uint16(channel)); err != nil {
		return err
	}
	log.Info("Configured channel: %d", channel)
	return nil
}

// ResetSequence resets the sequence counter on the device
func (c *Client) ResetSequence() error {
	if err := c.sendCommand(layers.CommandConfigure, layers.ConfigResetSequence, 0); err != nil {
		return err
	}
	log.Info("Reset sequence counter")
	return nil
}

// SetDeviceLogLevel sets the log level of the device firmware,
// 0=DEBUG through 5=NONE
func (c *Client) SetDeviceLogLevel(level int) error {
	if level < int(layers.DeviceLogDebug) || level > int(layers.DeviceLogNone) {
		return ErrParamOutOfRange{Param: "device log level", Value: level,
			Min: int(layers.DeviceLogDebug), Max: int(layers.DeviceLogNone)}
	}
	if err := c.sendCommand(layers.CommandConfigure, layers.ConfigLogLevel, uint16(level)); err != nil {
		return err
	}
	log.Info("Set device log level: %d", level)
	return nil
}

// receiveOne performs exactly one blocking receive with the given
// timeout and decodes the header. Returns nil without error on timeout
// and on foreign or undecodable traffic, request/response commands do
// not re-loop waiting for the right frame.
func (c *Client) receiveOne(timeout time.Duration) (*layers.DaqLayer, error) {
	buffer := make([]byte, layers.MaxDatagramSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	length, err := c.conn.Read(buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, nil
		}
		return nil, err
	}

	header := &layers.DaqLayer{}
	if err := header.DecodeFromBytes(buffer[:length], gopacket.NilDecodeFeedback); err != nil {
		log.Warning("%s", err)
		return nil, nil
	}
	if !header.Valid() {
		log.Warning("%s", layers.ErrInvalidMagic{Magic: header.Magic})
		return nil, nil
	}
	return header, nil
}

// GetStatus requests device status. Returns nil without error when no
// valid STATUS frame arrives within the command timeout.
func (c *Client) GetStatus() (*layers.StatusLayer, error) {
	if err := c.sendCommand(layers.CommandGetStatus, 0, 0); err != nil {
		return nil, err
	}

	header, err := c.receiveOne(c.CommandTimeout())
	if err != nil {
		return nil, err
	}
	if header == nil || header.Type != layers.MsgTypeStatus {
		log.Warning("No status reply")
		return nil, nil
	}

	status := &layers.StatusLayer{}
	if err := status.DecodeFromBytes(header.Payload, gopacket.NilDecodeFeedback); err != nil {
		log.Warning("%s", err)
		return nil, nil
	}
	return status, nil
}

// Ping measures the round-trip time to the device. ok is false when no
// valid PONG arrives within the command timeout.
func (c *Client) Ping() (rtt time.Duration, ok bool, err error) {
	d := &layers.DaqLayer{
		DaqHeader: layers.DaqHeader{
			Magic: layers.ProtocolMagic,
			Type:  layers.MsgTypePing,
			Seq:   c.sequencer.Next(),
		},
	}
	buf := gopacket.NewSerializeBuffer()
	if err = gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, d); err != nil {
		return 0, false, err
	}

	start := time.Now()
	if err = c.send(buf.Bytes()); err != nil {
		return 0, false, err
	}

	header, err := c.receiveOne(c.CommandTimeout())
	if err != nil {
		return 0, false, err
	}
	rtt = time.Since(start)
	if header == nil || header.Type != layers.MsgTypePong {
		return 0, false, nil
	}
	return rtt, true, nil
}
