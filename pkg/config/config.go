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

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type DeviceConfig struct {
	Address string `yaml:"address,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

type StorageConfig struct {
	Backend string `yaml:"backend,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

type Config struct {
	*DeviceConfig    `yaml:"device,omitempty"`
	*StorageConfig   `yaml:"storage,omitempty"`
	LocalPort        int    `yaml:"localPort,omitempty"`
	CommandTimeoutMs int    `yaml:"commandTimeoutMs,omitempty"`
	PollTimeoutMs    int    `yaml:"pollTimeoutMs,omitempty"`
	ApiPort          int    `yaml:"apiPort,omitempty"`
	LogLevel         string `yaml:"logLevel,omitempty"`
	filepath         string
}

func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMs) * time.Millisecond
}

func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMs) * time.Millisecond
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = ioutil.WriteFile(c.filepath, data, 0644)
	if err != nil {
		return err
	}

	return nil
}

// Load reads the config file over the defaults. A missing file is not
// an error, the defaults stay in effect.
func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		DeviceConfig: &DeviceConfig{
			Address: DefaultDeviceAddress,
			Port:    DefaultDevicePort,
		},
		StorageConfig: &StorageConfig{
			Backend: DefaultStorageBackend,
		},
		LocalPort:        DefaultLocalPort,
		CommandTimeoutMs: DefaultCommandTimeoutMs,
		PollTimeoutMs:    DefaultPollTimeoutMs,
		ApiPort:          DefaultApiPort,
		LogLevel:         DefaultLogLevel,
		filepath:         DefaultConfigPath(),
	}
}
