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

package config

const (
	// DefaultSafeMaxDepth is the default maximum call depth that will be considered by the analyses using it
	// -1 means that depth limit is ignored
	DefaultSafeMaxDepth = -1

	// DefaultEntryPoint is the name of the function where the analyzed application starts
	DefaultEntryPoint = "main"

	// RTOSHandlerName is the handler name of the RTOS singleton. System calls that do not address a specific
	// instance address the RTOS.
	RTOSHandlerName = "RTOS"

	// SchedulerResourceName is the name of the OSEK resource that represents the scheduler itself
	SchedulerResourceName = "RES_SCHEDULER"
)
