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

// Package tools contains the flags and the analysis pipeline shared by the osgraph sub-commands.
package tools

import (
	"context"
	"flag"
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awslabs/ar-os-tools/analysis/config"
	"github.com/awslabs/ar-os-tools/analysis/frontend"
	"github.com/awslabs/ar-os-tools/analysis/interactions"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/program"
	"github.com/awslabs/ar-os-tools/internal/formatutil"
	"golang.org/x/tools/go/buildutil"
)

// Version is the version of the osgraph tool
const Version = "v0.3.0"

// ReportFileName is the name of the report written in the reports directory
const ReportFileName = "interactions-report.txt"

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
	ModelPath  *string
	Callgraph  *string
	Platform   *string
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the common flags but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path or URL for the analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	modelPath := cmd.String("model", "", "program model file path or URL, used instead of Go packages")
	cg := cmd.String("callgraph", "static", "call graph of the Go packages. One of: static, cha")
	platform := cmd.String("platform", "", "GOOS used to load the Go packages")
	cmd.Var((*buildutil.TagsFlag)(&build.Default.BuildTags), "build-tags", buildutil.TagsFlagDoc)
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
		ModelPath:  modelPath,
		Callgraph:  cg,
		Platform:   platform,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
	ModelPath  string
	Callgraph  string
	Platform   string
}

// Parse parses args and returns the common flags
func (f UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := f.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", f.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:    f.FlagSet,
		ConfigPath: *f.ConfigPath,
		Verbose:    *f.Verbose,
		ModelPath:  *f.ModelPath,
		Callgraph:  *f.Callgraph,
		Platform:   *f.Platform,
	}, nil
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	return flags.Parse(args)
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

func isURL(path string) bool {
	return strings.Contains(path, "://")
}

// LoadConfig loads the config file from configPath, which is either a local path or a URL.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file not specified")
	}
	if isURL(configPath) {
		cfg, err := config.LoadFromURL(context.Background(), configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %v", configPath, err)
		}
		return cfg, nil
	}
	config.SetGlobalConfig(configPath)
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
	}
	return cfg, nil
}

// Analysis is the outcome of the pipeline shared by the sub-commands
type Analysis struct {
	Config  *config.Config
	Logger  *config.LogGroup
	Program *program.Program
	Graph   *osmodel.Graph
	Result  *interactions.Result

	// Loaded is the SSA form of the Go packages, nil when the program comes from a model file
	Loaded *frontend.LoadedProgram
}

// Analyze loads the configuration, the abstractions and the program designated by flags, and runs the interaction
// detection. The error is an *interactions.FatalError when the detection aborted.
func Analyze(flags CommonFlags) (*Analysis, error) {
	cfg, err := LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.Verbose && !cfg.Verbose() {
		cfg.LogLevel = int(config.DebugLevel)
	}
	logger := config.NewLogGroup(cfg)
	a := &Analysis{Config: cfg, Logger: logger}

	a.Graph, err = frontend.Abstractions(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not build abstractions: %w", err)
	}
	logger.Infof("%d abstractions declared\n", a.Graph.NumNodes())

	start := time.Now()
	if flags.ModelPath != "" {
		a.Program, err = loadModel(cfg, flags.ModelPath)
		if err != nil {
			return nil, err
		}
	} else {
		mode, err := frontend.ParseCallgraphMode(flags.Callgraph)
		if err != nil {
			return nil, err
		}
		args := flags.FlagSet.Args()
		if len(args) == 0 {
			return nil, fmt.Errorf("could not load program: no package to analyze")
		}
		logger.Infof("%s\n", formatutil.Faint("Reading sources"))
		lp, err := frontend.LoadProgram(".", flags.Platform, args)
		if err != nil {
			return nil, fmt.Errorf("could not load program: %w", err)
		}
		a.Loaded = &lp
		a.Program, err = frontend.Build(cfg, logger, lp, mode)
		if err != nil {
			return nil, fmt.Errorf("could not lower program: %w", err)
		}
	}
	logger.Infof("Loaded %d functions (%.2f s)\n", len(a.Program.Functions()), time.Since(start).Seconds())

	start = time.Now()
	a.Result, err = interactions.NewDetector(cfg, logger, a.Program, a.Program, a.Graph).Run()
	if err != nil {
		return a, err
	}
	logger.Infof("Detected %d interactions (%.2f s)\n", len(a.Result.Edges), time.Since(start).Seconds())
	return a, nil
}

func loadModel(cfg *config.Config, path string) (*program.Program, error) {
	var (
		p   *program.Program
		err error
	)
	if isURL(path) {
		p, err = program.LoadFromURL(context.Background(), cfg, path)
	} else {
		p, err = program.Load(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load program model %s: %w", path, err)
	}
	return p, nil
}

// WriteReportFile writes the report of the detection in the reports directory of the config when diagnostics
// reporting is on. It returns the name of the file written, or "" if there is none.
func (a *Analysis) WriteReportFile() (string, error) {
	if !a.Config.ReportDiagnostics || a.Result == nil {
		return "", nil
	}
	filename := filepath.Join(a.Config.ReportsDir, ReportFileName)
	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("could not create report file: %w", err)
	}
	defer f.Close()
	if err := a.Result.WriteReport(f, a.Graph); err != nil {
		return "", fmt.Errorf("could not write report: %w", err)
	}
	return filename, nil
}
