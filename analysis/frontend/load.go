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

package frontend

import (
	"fmt"
	"go/token"
	"os"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// PkgLoadMode is the loading mode of the application packages
const PkgLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes |
	packages.NeedModule

// LoadedProgram is an application loaded in SSA form
type LoadedProgram struct {
	// Program is the SSA version of the program
	Program *ssa.Program
	// Packages are the SSA packages of the patterns that were loaded. Only their functions are lowered into the
	// program model; calls into other packages are computations or system calls.
	Packages []*ssa.Package
}

// LoadProgram loads the packages matching patterns, relative to dir, and builds their SSA form.
// platform sets GOOS when it is not empty.
func LoadProgram(dir string, platform string, patterns []string) (LoadedProgram, error) {
	cfg := &packages.Config{
		Mode:  PkgLoadMode,
		Tests: false,
		Dir:   dir,
		Fset:  token.NewFileSet(),
	}
	if platform != "" {
		cfg.Env = append(os.Environ(), fmt.Sprintf("GOOS=%s", platform))
	}

	initialPackages, err := packages.Load(cfg, patterns...)
	if err != nil {
		return LoadedProgram{}, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(initialPackages) == 0 {
		return LoadedProgram{}, fmt.Errorf("no packages")
	}
	if packages.PrintErrors(initialPackages) > 0 {
		return LoadedProgram{}, fmt.Errorf("errors found while loading %v", patterns)
	}

	program, ssaPackages := ssautil.AllPackages(initialPackages, ssa.InstantiateGenerics)
	for i, p := range ssaPackages {
		if p == nil {
			return LoadedProgram{}, fmt.Errorf("cannot build SSA for package %s", initialPackages[i])
		}
	}
	program.Build()

	return LoadedProgram{Program: program, Packages: ssaPackages}, nil
}
