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

// Package detect implements the detect sub-command: it runs the interaction detection and prints its report.
package detect

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-os-tools/cmd/osgraph/tools"
	"github.com/awslabs/ar-os-tools/internal/formatutil"
)

// Usage is the usage of the detect sub-command
const Usage = `Detect the interactions between the OS abstractions of an application.
Usage:
  osgraph detect [options] <package path(s)>
  osgraph detect [options] -model program.yaml
Examples:
  % osgraph detect -config config.yaml ./...
  % osgraph detect -config config.yaml -model model.yaml`

// Run runs the detection with flags and prints the report on standard output
func Run(flags tools.CommonFlags) error {
	a, err := tools.Analyze(flags)
	if err != nil {
		return err
	}
	if err := a.Result.WriteReport(os.Stdout, a.Graph); err != nil {
		return err
	}
	if flags.Verbose {
		if err := a.Result.WriteCallTrees(os.Stdout); err != nil {
			return err
		}
	}
	filename, err := a.WriteReportFile()
	if err != nil {
		return err
	}
	if filename != "" {
		a.Logger.Infof("Report written in %s\n", filename)
	}
	if !a.Result.Complete() {
		fmt.Fprintln(os.Stderr, formatutil.Yellow(
			fmt.Sprintf("detection incomplete: %d diagnostics", len(a.Result.Diagnostics))))
	}
	return nil
}
