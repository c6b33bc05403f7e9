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

// Package render implements the render sub-command, which writes Graphviz files of the interaction graph and of the
// call graph, or the SSA form of the Go packages.
package render

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/render"
	"github.com/awslabs/ar-os-tools/cmd/osgraph/tools"
)

// Usage is the usage of the render sub-command
const Usage = `Render the interaction graph of an application.
Usage:
  osgraph render [options] <package path(s)>
Examples:
Render the interaction graph with the arguments of the system calls
  % osgraph render -config config.yaml -args -o interactions.dot ./...
Render the call graph of a program model
  % osgraph render -config config.yaml -model model.yaml -cgout callgraph.dot
Print out all the packages in SSA form
  % osgraph render -config config.yaml -ssaout tmpSsa ./...`

// Flags represents the parsed render sub-command flags.
type Flags struct {
	tools.CommonFlags
	out      string
	cgOut    string
	ssaOut   string
	args     bool
	isolated bool
	exclude  string
}

// NewFlags returns the parsed render sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("render")
	out := flags.FlagSet.String("o", "interactions.dot", "output file for the interaction graph")
	cgOut := flags.FlagSet.String("cgout", "", "output file for the call graph (no output if not specified)")
	ssaOut := flags.FlagSet.String("ssaout", "", "output folder for ssa (no output if not specified)")
	withArgs := flags.FlagSet.Bool("args", false, "label the edges with the arguments of the system calls")
	isolated := flags.FlagSet.Bool("isolated", false, "render the abstractions without interactions")
	exclude := flags.FlagSet.String("exclude", "", "comma-separated kinds of abstractions not rendered, e.g. rtos")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{
		CommonFlags: common,
		out:         *out,
		cgOut:       *cgOut,
		ssaOut:      *ssaOut,
		args:        *withArgs,
		isolated:    *isolated,
		exclude:     *exclude,
	}, nil
}

// Run runs the render tool with flags.
func Run(flags Flags) error {
	opts := render.Options{Arguments: flags.args, Isolated: flags.isolated}
	if flags.exclude != "" {
		kinds, err := osmodel.ParseKinds(strings.Split(flags.exclude, ","))
		if err != nil {
			return err
		}
		opts.ExcludedKinds = kinds
	}

	a, err := tools.Analyze(flags.CommonFlags)
	if err != nil {
		return err
	}

	if flags.ssaOut != "" {
		if a.Loaded == nil {
			return fmt.Errorf("-ssaout requires Go packages")
		}
		if err := render.OutputSsaPackages(a.Loaded.Program, a.Loaded.Packages, flags.ssaOut); err != nil {
			return err
		}
		a.Logger.Infof("SSA written in %s\n", flags.ssaOut)
	}
	if flags.cgOut != "" {
		if err := render.CallgraphToFile(a.Program, flags.cgOut); err != nil {
			return err
		}
		a.Logger.Infof("Call graph written in %s\n", flags.cgOut)
	}
	if err := render.InteractionGraphToFile(a.Graph, opts, flags.out); err != nil {
		return err
	}
	a.Logger.Infof("Interaction graph written in %s\n", flags.out)
	return nil
}
