// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interactions

import (
	"strings"

	"github.com/awslabs/ar-os-tools/analysis/osmodel"
)

// multiplexedSyscall is a syscall whose operation is selected by one of its arguments
type multiplexedSyscall struct {
	// name is matched anywhere in the call name, so wrappers of the syscall are renamed too
	name  string
	arg   int
	names map[int64]string
}

var multiplexedSyscalls = []multiplexedSyscall{
	{
		name: "xTimerGenericCommand",
		arg:  1,
		names: map[int64]string{
			-2: "tmrCOMMAND_EXECUTE_CALLBACK_FROM_ISR",
			-1: "tmrCOMMAND_EXECUTE_CALLBACK",
			0:  "tmrCOMMAND_START_DONT_TRACE",
			1:  "tmrCOMMAND_START",
			2:  "tmrCOMMAND_RESET",
			3:  "tmrCOMMAND_STOP",
			4:  "tmrCOMMAND_CHANGE_PERIOD",
			5:  "tmrCOMMAND_DELETE",
			6:  "tmrFIRST_FROM_ISR_COMMAND",
			7:  "tmrCOMMAND_START_FROM_ISR",
			8:  "tmrCOMMAND_RESET_FROM_ISR",
			9:  "tmrCOMMAND_STOP_FROM_ISR",
			10: "tmrCOMMAND_CHANGE_PERIOD_FROM_ISR",
		},
	},
	{
		name: "xTaskGenericNotify",
		arg:  2,
		names: map[int64]string{
			0: "xTaskNotifyNoAction",
			1: "xTaskNotifySetBits",
			2: "xTaskNotifyIncrement",
			3: "xTaskNotifySetValueWithOverwrite",
			4: "xTaskNotifySetValueWithoutOverwrite",
		},
	},
}

// specificSyscallName returns the name of the operation performed by the call. For multiplexed syscalls, this is
// the name of the command selected by the integer argument; otherwise, and when the command is not a known integer,
// this is the name of the call.
func specificSyscallName(call osmodel.CallData) string {
	for _, m := range multiplexedSyscalls {
		if !strings.Contains(call.Name, m.name) {
			continue
		}
		vals := call.Arg(m.arg).Values
		if len(vals) == 0 {
			return call.Name
		}
		code, ok := vals[0].AsInt()
		if !ok {
			return call.Name
		}
		if name, ok := m.names[code]; ok {
			return name
		}
		return call.Name
	}
	return call.Name
}
