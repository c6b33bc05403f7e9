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

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// OSVariant identifies the operating system API the analyzed application is written against.
type OSVariant string

const (
	// OSEK is the OSEK/AUTOSAR classic operating system
	OSEK OSVariant = "osek"
	// FreeRTOS is the FreeRTOS kernel
	FreeRTOS OSVariant = "freertos"
)

// FallbackPolicy controls when an unresolved syscall target defaults to the RTOS singleton.
type FallbackPolicy string

const (
	// FallbackCandidates falls back to the RTOS only when the RTOS is one of the syscall's candidate targets
	FallbackCandidates FallbackPolicy = "candidates"
	// FallbackUnmatched additionally falls back to the RTOS when the handler name matches no abstraction at all
	FallbackUnmatched FallbackPolicy = "unmatched"
	// FallbackNever never substitutes the RTOS for an unmatched target
	FallbackNever FallbackPolicy = "never"
)

// Config contains the options of the analysis, the abstraction instances of the analyzed application and the
// system call catalog used to classify calls.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// Instances lists the OS abstractions of the application (tasks, ISRs, alarms, queues...), as produced by the
	// configuration of the OS (e.g. an OIL file for OSEK) or by a discovery step
	Instances []InstanceSpec `yaml:"instances"`

	// Syscalls extends or overrides the built-in system call catalog of the OS variant
	Syscalls []SyscallSpec `yaml:"syscalls"`

	// catalog is the merged system call catalog, indexed by call name
	catalog map[string]SyscallSpec
}

// Options holds the scalar settings of the analysis
type Options struct {
	// OS is the OS variant of the application. It selects the built-in system call catalog and which finishing pass
	// runs after interaction detection.
	OS OSVariant `yaml:"os"`

	// EntryPoint is the name of the function where the application starts. Default is "main".
	EntryPoint string `yaml:"entry-point"`

	// RTOSFallback is the policy used when a syscall target cannot be matched. See FallbackPolicy.
	RTOSFallback FallbackPolicy `yaml:"rtos-fallback"`

	// ReportsDir is the directory where reports are written. If ReportDiagnostics is set and ReportsDir is empty,
	// a temporary directory is created next to the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportDiagnostics specifies whether the diagnostics of the interaction detection are written to a file in the
	// reports directory
	ReportDiagnostics bool `yaml:"report-diagnostics"`

	// MaxDepth sets a limit for the call depth explored from each entry point of the interaction detection.
	// If provided MaxDepth is <= 0, then it is ignored.
	MaxDepth int `yaml:"max-depth"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// InstanceSpec describes one OS abstraction instance. Only the fields relevant to the kind are read.
type InstanceSpec struct {
	// Name is the name of the instance, unique per kind
	Name string `yaml:"name"`

	// Kind is the abstraction kind, e.g. "task", "isr", "timer", "event", "resource", "queue", "queueset"
	Kind string `yaml:"kind"`

	// Handler overrides the string the application uses to address the instance in system calls
	Handler string `yaml:"handler"`

	// Function is the definition function of tasks, ISRs and co-routines, and the callback of timers
	Function string `yaml:"function"`

	Priority   int      `yaml:"priority"`
	Autostart  bool     `yaml:"autostart"`
	Category   int      `yaml:"category"`
	Period     int      `yaml:"period"`
	AutoReload bool     `yaml:"auto-reload"`
	Length     int      `yaml:"length"`
	ItemSize   int      `yaml:"item-size"`
	MaxCount   int      `yaml:"max-count"`
	Initial    int      `yaml:"initial-count"`
	Mask       uint64   `yaml:"mask"`
	Type       string   `yaml:"type"`
	Tasks      []string `yaml:"tasks"`

	// counters
	TicksPerBase int `yaml:"ticks-per-base"`
	MinCycle     int `yaml:"min-cycle"`
}

// SyscallSpec describes a system call of the OS API
type SyscallSpec struct {
	// Name is the name of the called function
	Name string `yaml:"name"`

	// Type is the action category of the call, e.g. "create", "receive", "commit", "wait", "add"
	Type string `yaml:"type"`

	// Targets lists the abstraction kinds the call can address
	Targets []string `yaml:"targets"`

	// HandlerArg is the index of the argument naming the target. Nil means the call has no handler argument.
	HandlerArg *int `yaml:"handler-arg"`
}

// HandlerIndex returns the index of the handler argument, or -1 if the syscall has none
func (s SyscallSpec) HandlerIndex() int {
	if s.HandlerArg == nil {
		return -1
	}
	return *s.HandlerArg
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	c := &Config{
		sourceFile: "",
		Instances:  nil,
		Syscalls:   nil,
		Options: Options{
			OS:                FreeRTOS,
			EntryPoint:        DefaultEntryPoint,
			RTOSFallback:      FallbackCandidates,
			ReportsDir:        "",
			ReportDiagnostics: false,
			MaxDepth:          DefaultSafeMaxDepth,
			LogLevel:          int(InfoLevel),
			SilenceWarn:       false,
		},
	}
	c.buildCatalog()
	return c
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(filename, b)
}

// LoadFromURL reads a configuration from any location supported by the abstract file storage (local paths, file://,
// mem://, and the registered remote schemes)
func LoadFromURL(ctx context.Context, url string) (*Config, error) {
	fs := afs.New()
	b, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("could not download config %s: %w", url, err)
	}
	return LoadFromBytes(url, b)
}

// LoadFromBytes parses the configuration in b. The filename is used to resolve relative paths.
func LoadFromBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	cfg.sourceFile = filename

	switch cfg.OS {
	case "":
		cfg.OS = FreeRTOS
	case OSEK, FreeRTOS:
	default:
		return nil, fmt.Errorf("unknown os variant %q (expected %q or %q)", cfg.OS, OSEK, FreeRTOS)
	}

	switch cfg.RTOSFallback {
	case "":
		cfg.RTOSFallback = FallbackCandidates
	case FallbackCandidates, FallbackUnmatched, FallbackNever:
	default:
		return nil, fmt.Errorf("unknown rtos-fallback policy %q", cfg.RTOSFallback)
	}

	if cfg.EntryPoint == "" {
		cfg.EntryPoint = DefaultEntryPoint
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultSafeMaxDepth
	}

	for i, inst := range cfg.Instances {
		if inst.Name == "" {
			return nil, fmt.Errorf("instance %d has no name", i)
		}
		if inst.Kind == "" {
			return nil, fmt.Errorf("instance %s has no kind", inst.Name)
		}
	}

	for _, sc := range cfg.Syscalls {
		if sc.Name == "" {
			return nil, fmt.Errorf("syscall entry without name")
		}
	}

	if cfg.ReportDiagnostics {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}

	cfg.buildCatalog()
	return cfg, nil
}

// buildCatalog merges the built-in syscalls of the OS variant with the syscalls of the config file. Entries of the
// config file override built-in entries with the same name.
func (c *Config) buildCatalog() {
	c.catalog = map[string]SyscallSpec{}
	for _, sc := range BuiltinSyscalls(c.OS) {
		c.catalog[sc.Name] = sc
	}
	for _, sc := range c.Syscalls {
		c.catalog[sc.Name] = sc
	}
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// Syscall returns the catalog entry for the call name and true, or false if the name is not a system call
func (c *Config) Syscall(name string) (SyscallSpec, bool) {
	if c.catalog == nil {
		c.buildCatalog()
	}
	sc, ok := c.catalog[name]
	return sc, ok
}

// IsSyscall returns true if name is a system call of the catalog
func (c *Config) IsSyscall(name string) bool {
	_, ok := c.Syscall(name)
	return ok
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxDepth returns true if the input exceeds the maximum depth parameter of the configuration.
// (this implements the logic for using maximum depth; if the configuration setting is < 0, then this returns false)
func (c Config) ExceedsMaxDepth(d int) bool {
	if c.MaxDepth <= 0 {
		return false
	} else {
		return d > c.MaxDepth
	}
}
