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

// Package export implements the export sub-command, which stores the interaction graph in a SQLite database.
package export

import (
	"fmt"

	"github.com/awslabs/ar-os-tools/analysis/export"
	"github.com/awslabs/ar-os-tools/cmd/osgraph/tools"
)

// Usage is the usage of the export sub-command
const Usage = `Export the interaction graph of an application to a SQLite database.
Usage:
  osgraph export [options] -db interactions.sqlite <package path(s)>`

// Flags represents the parsed export sub-command flags.
type Flags struct {
	tools.CommonFlags
	db string
}

// NewFlags returns the parsed export sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("export")
	db := flags.FlagSet.String("db", "", "path of the SQLite database to write")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	if *db == "" {
		return Flags{}, fmt.Errorf("export requires -db")
	}
	return Flags{CommonFlags: common, db: *db}, nil
}

// Run runs the detection and writes its outcome to the database
func Run(flags Flags) error {
	a, err := tools.Analyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	if err := export.WriteDB(flags.db, a.Graph, a.Result); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	a.Logger.Infof("Interaction graph exported to %s\n", flags.db)
	return nil
}
