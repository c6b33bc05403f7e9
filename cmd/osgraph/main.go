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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/awslabs/ar-os-tools/analysis/interactions"
	"github.com/awslabs/ar-os-tools/cmd/osgraph/detect"
	"github.com/awslabs/ar-os-tools/cmd/osgraph/export"
	"github.com/awslabs/ar-os-tools/cmd/osgraph/render"
	"github.com/awslabs/ar-os-tools/cmd/osgraph/tools"
)

const usage = `osgraph: OS interaction graphs of embedded applications
Usage:
  osgraph [tool] [options] <package path(s)>
Tools:
  - detect: detects the interactions between tasks, ISRs, timers and OS objects and prints a report
  - render: renders the interaction graph or the call graph in Graphviz format
  - export: writes the interaction graph to a SQLite database
Examples:
  Print the interactions: osgraph detect -config config.yaml ./...
  Render the interactions: osgraph render -config config.yaml -o interactions.dot ./...`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(tools.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "detect":
		flags, err := tools.NewCommonFlags("detect", args, detect.Usage)
		if err != nil {
			errExit(err)
		}
		if err := detect.Run(flags); err != nil {
			errExit(err)
		}
	case "render":
		flags, err := render.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := render.Run(flags); err != nil {
			errExit(err)
		}
	case "export":
		flags, err := export.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := export.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(1)
	}
}

// errExit exits with status 2 when the detection aborted, 1 otherwise
func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	var fatal *interactions.FatalError
	if errors.As(err, &fatal) {
		os.Exit(2)
	}
	os.Exit(1)
}
