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

package program

import (
	"fmt"

	"github.com/awslabs/ar-os-tools/analysis/config"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
)

// Classify returns the classification of the call to name and true if name is a system call of the catalog of cfg.
// It returns an error if the catalog entry is malformed.
func Classify(cfg *config.Config, name string) (SyscallInfo, bool, error) {
	spec, ok := cfg.Syscall(name)
	if !ok {
		return SyscallInfo{}, false, nil
	}
	t, err := osmodel.ParseSyscallType(spec.Type)
	if err != nil {
		return SyscallInfo{}, true, fmt.Errorf("syscall %s: %w", name, err)
	}
	targets, err := osmodel.ParseKinds(spec.Targets)
	if err != nil {
		return SyscallInfo{}, true, fmt.Errorf("syscall %s: %w", name, err)
	}
	return SyscallInfo{Type: t, Targets: targets, HandlerIndex: spec.HandlerIndex()}, true, nil
}
