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

package start

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-daq/pkg/config"
	"jinr.ru/greenlab/go-daq/pkg/daq"
	"jinr.ru/greenlab/go-daq/pkg/log"
	"jinr.ru/greenlab/go-daq/pkg/storage"
)

const (
	AddressOptionName          = "address"
	PortOptionName             = "port"
	LocalPortOptionName        = "local-port"
	DurationOptionName         = "duration"
	SamplesOptionName          = "samples"
	ChannelOptionName          = "channel"
	ThresholdMVOptionName      = "threshold-mv"
	ThresholdPercentOptionName = "threshold-percent"
	BatchSizeOptionName        = "batch-size"
	DeviceLogLevelOptionName   = "device-log-level"
	ResetSequenceOptionName    = "reset-sequence"
	StorageOptionName          = "storage"
	OutputOptionName           = "output"
	ApiPortOptionName          = "api-port"
	NoApiOptionName            = "no-api"
)

// CommandPacing is how long to wait between successive configuration
// writes, the device needs processing time between them
const CommandPacing = 100 * time.Millisecond

func NewCommand() *cobra.Command {
	var address string
	var port, localPort int
	var duration time.Duration
	var samples int
	var channel, thresholdMV, thresholdPercent, batchSize, deviceLogLevel int
	var resetSequence bool
	var backend, output string
	var apiPort int
	var noApi bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:          "start",
		Short:        "Start acquisition and receive data until a stop condition is met",
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
			if apiPort != 0 {
				cfg.ApiPort = apiPort
			}
			if backend != "" {
				cfg.StorageConfig.Backend = backend
			}
			if output != "" {
				cfg.StorageConfig.Path = output
			}
			if duration <= 0 && samples <= 0 {
				return fmt.Errorf("either --%s or --%s is required", DurationOptionName, SamplesOptionName)
			}

			sink, err := storage.NewSink(cfg.StorageConfig.Backend, cfg.StorageConfig.Path)
			if err != nil {
				return err
			}

			client, err := daq.NewClient(cfg, sink)
			if err != nil {
				sink.Close()
				return err
			}

			if err = configureDevice(client, resetSequence, deviceLogLevel, batchSize,
				thresholdMV, thresholdPercent, channel); err != nil {
				client.Close()
				return err
			}

			if err = client.StartAcquisition(); err != nil {
				client.Close()
				return err
			}
			time.Sleep(CommandPacing)

			if !noApi {
				go func() {
					if apiErr := client.StartApiServer(); apiErr != nil {
						log.Error("API server stopped: %s", apiErr)
					}
				}()
			}

			stop := make(chan struct{})
			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-signals
				close(stop)
			}()

			runErr := client.Run(daq.RunOptions{
				Stop:       stop,
				Duration:   duration,
				MaxSamples: samples,
			})

			// the loop only stops listening, the device keeps sampling
			// until told otherwise
			if err = client.StopAcquisition(); err != nil {
				log.Error("Error while sending STOP_ACQ: %s", err)
			}

			closeErr := client.Close()
			fmt.Fprintln(cmd.OutOrStdout(), client.Stats().Summary())

			if runErr != nil {
				return runErr
			}
			return closeErr
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Device address. E.g. %s", config.DefaultDeviceAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Device UDP port. E.g. %d", config.DefaultDevicePort))
	cmd.Flags().IntVar(&localPort, LocalPortOptionName, 0, "Local UDP port to bind")
	cmd.Flags().DurationVar(&duration, DurationOptionName, 0, "How long to acquire data. E.g. 10s")
	cmd.Flags().IntVar(&samples, SamplesOptionName, 0, "How many samples to acquire (stop after reaching at least this value)")
	cmd.Flags().IntVar(&channel, ChannelOptionName, -1, "ADC channel (0-7)")
	cmd.Flags().IntVar(&thresholdMV, ThresholdMVOptionName, -1, "Threshold in millivolts (0-3300)")
	cmd.Flags().IntVar(&thresholdPercent, ThresholdPercentOptionName, -1, "Threshold as percentage (0-100)")
	cmd.Flags().IntVar(&batchSize, BatchSizeOptionName, 0, "Samples per packet (1-500)")
	cmd.Flags().IntVar(&deviceLogLevel, DeviceLogLevelOptionName, -1, "Device log level: 0=DEBUG, 1=INFO, 2=WARNING, 3=ERROR, 4=CRITICAL, 5=NONE")
	cmd.Flags().BoolVar(&resetSequence, ResetSequenceOptionName, false, "Reset sequence counter before starting")
	cmd.Flags().StringVar(&backend, StorageOptionName, "", fmt.Sprintf("Storage backend. %s", storage.HelpBackends))
	cmd.Flags().StringVar(&output, OutputOptionName, "", "Output path for the storage backend")
	cmd.Flags().IntVar(&apiPort, ApiPortOptionName, 0, fmt.Sprintf("Stats API port. E.g. %d", config.DefaultApiPort))
	cmd.Flags().BoolVar(&noApi, NoApiOptionName, false, "Do not start the stats API server")

	return cmd
}

// configureDevice sends the requested configuration writes with pacing
// between them. Pacing is the caller's contract, the client never
// sleeps on its own.
func configureDevice(client *daq.Client, resetSequence bool, deviceLogLevel, batchSize,
	thresholdMV, thresholdPercent, channel int) error {
	if resetSequence {
		if err := client.ResetSequence(); err != nil {
			return err
		}
		time.Sleep(CommandPacing)
	}
	if deviceLogLevel >= 0 {
		if err := client.SetDeviceLogLevel(deviceLogLevel); err != nil {
			return err
		}
		time.Sleep(CommandPacing)
	}
	if batchSize > 0 {
		if err := client.ConfigureBatchSize(batchSize); err != nil {
			return err
		}
		time.Sleep(CommandPacing)
	}
	if thresholdMV >= 0 {
		if err := client.ConfigureThresholdMV(thresholdMV); err != nil {
			return err
		}
		time.Sleep(CommandPacing)
	} else if thresholdPercent >= 0 {
		if err := client.ConfigureThresholdPercent(thresholdPercent); err != nil {
			return err
		}
		time.Sleep(CommandPacing)
	}
	if channel >= 0 {
		if err := client.ConfigureChannel(channel); err != nil {
			return err
		}
		time.Sleep(CommandPacing)
	}
	return nil
}
