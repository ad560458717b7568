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
)

// ErrParamOutOfRange returned when a configuration value is rejected
// client-side before transmission. The device cannot report rejection
// over a fire-and-forget channel, so known-bad values fail fast here.
type ErrParamOutOfRange struct {
	Param    string
	Value    int
	Min, Max int
}

func (e ErrParamOutOfRange) Error() string {
	return fmt.Sprintf("%s out of range: %d, must be %d-%d", e.Param, e.Value, e.Min, e.Max)
}
