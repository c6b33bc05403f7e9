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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename, or [LoadFromURL] to load it from any location
supported by the abstract file storage.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. For example, a valid config file for an OSEK application is as follows:

	options:
	  os: osek
	  log-level: 4
	  rtos-fallback: candidates

	instances:
	  - name: TaskA
	    kind: task
	    function: TaskA_func
	    priority: 2
	    autostart: true
	  - name: EVT1
	    kind: event
	    mask: 1

	syscalls:
	  - name: MyWrapper
	    type: commit
	    targets: [task]
	    handler-arg: 0

# System call catalog

Each OS variant comes with a built-in catalog of its system calls (see [BuiltinSyscalls]). A syscall entry gives the
action category of the call, the abstraction kinds it can address and the index of the argument that names the
addressed instance. Entries in the config file override the built-in entries with the same name.
*/
package config
