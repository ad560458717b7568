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

const (
	ConfigDir  = ".go-daq"
	ConfigFile = "config"

	DefaultDeviceAddress = "10.10.10.25"
	DefaultDevicePort    = 5000
	DefaultLocalPort     = 5001

	// DefaultCommandTimeoutMs is how long status and ping requests wait
	// for a reply before giving up
	DefaultCommandTimeoutMs = 1000
	// DefaultPollTimeoutMs is the receive timeout of one iteration of the
	// acquisition loop, it bounds how promptly a stop request is noticed
	DefaultPollTimeoutMs = 200

	DefaultApiPort  = 8003
	DefaultLogLevel = "info"

	DefaultStorageBackend = "none"
)
