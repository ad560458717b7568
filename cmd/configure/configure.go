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

package configure

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-daq/pkg/config"
	"jinr.ru/greenlab/go-daq/pkg/daq"
	"jinr.ru/greenlab/go-daq/pkg/storage"
)

const (
	AddressOptionName          = "address"
	PortOptionName             = "port"
	LocalPortOptionName        = "local-port"
	ChannelOptionName          = "channel"
	ThresholdMVOptionName      = "threshold-mv"
	ThresholdPercentOptionName = "threshold-percent"
	BatchSizeOptionName        = "batch-size"
	DeviceLogLevelOptionName   = "device-log-level"
	ResetSequenceOptionName    = "reset-sequence"
)

// CommandPacing is how long to wait between successive configuration
// writes, the device needs processing time between them
const CommandPacing = 100 * time.Millisecond

func NewCommand() *cobra.Command {
	var address string
	var port, localPort int
	var channel, thresholdMV, thresholdPercent, batchSize, deviceLogLevel int
	var resetSequence bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:          "configure",
		Short:        "Configure the device without starting a session",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.DeviceConfig.Address = address
			}
			if port != 0 {
				cfg.DeviceConfig.Port = port
			}
			if localPort != 0 {
				cfg.LocalPort = localPort
			}

			if !resetSequence && deviceLogLevel < 0 && batchSize <= 0 &&
				thresholdMV < 0 && thresholdPercent < 0 && channel < 0 {
				return fmt.Errorf("no configuration options specified")
			}

			client, err := daq.NewClient(cfg, storage.NewNullSink())
			if err != nil {
				return err
			}
			defer client.Close()

			if resetSequence {
				if err = client.ResetSequence(); err != nil {
					return err
				}
				time.Sleep(CommandPacing)
			}
			if deviceLogLevel >= 0 {
				if err = client.SetDeviceLogLevel(deviceLogLevel); err != nil {
					return err
				}
				time.Sleep(CommandPacing)
			}
			if batchSize > 0 {
				if err = client.ConfigureBatchSize(batchSize); err != nil {
					return err
				}
				time.Sleep(CommandPacing)
			}
			if thresholdMV >= 0 {
				if err = client.ConfigureThresholdMV(thresholdMV); err != nil {
					return err
				}
				time.Sleep(CommandPacing)
			} else if thresholdPercent >= 0 {
				if err = client.ConfigureThresholdPercent(thresholdPercent); err != nil {
					return err
				}
				time.Sleep(CommandPacing)
			}
			if channel >= 0 {
				if err = client.ConfigureChannel(channel); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Device address. E.g. %s", config.DefaultDeviceAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Device UDP port. E.g. %d", config.DefaultDevicePort))
	cmd.Flags().IntVar(&localPort, LocalPortOptionName, 0, "Local UDP port to bind")
	cmd.Flags().IntVar(&channel, ChannelOptionName, -1, "ADC channel (0-7)")
	cmd.Flags().IntVar(&thresholdMV, ThresholdMVOptionName, -1, "Threshold in millivolts (0-3300)")
	cmd.Flags().IntVar(&thresholdPercent, ThresholdPercentOptionName, -1, "Threshold as percentage (0-100)")
	cmd.Flags().IntVar(&batchSize, BatchSizeOptionName, 0, "Samples per packet (1-500)")
	cmd.Flags().IntVar(&deviceLogLevel, DeviceLogLevelOptionName, -1, "Device log level: 0=DEBUG, 1=INFO, 2=WARNING, 3=ERROR, 4=CRITICAL, 5=NONE")
	cmd.Flags().BoolVar(&resetSequence, ResetSequenceOptionName, false, "Reset sequence counter on the device")

	return cmd
}
