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

package storage

import (
	"fmt"
)

// ErrUnknownBackend returned when the requested storage backend name
// does not match any implementation
type ErrUnknownBackend struct {
	Backend string
}

func (e ErrUnknownBackend) Error() string {
	return fmt.Sprintf("Unknown storage backend: %s %s", e.Backend, HelpBackends)
}

// ErrNoPath returned when a backend that persists to disk is requested
// without a target path
type ErrNoPath struct {
	Backend string
}

func (e ErrNoPath) Error() string {
	return fmt.Sprintf("Storage backend %s requires an output path", e.Backend)
}
