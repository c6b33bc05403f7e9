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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/awslabs/ar-os-tools/analysis/config"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// modelFile is the schema of a program model file
type modelFile struct {
	Functions []functionSpec `yaml:"functions"`
}

type functionSpec struct {
	Name    string      `yaml:"name"`
	Params  []string    `yaml:"params"`
	Returns yaml.Node   `yaml:"returns"`
	Body    []blockSpec `yaml:"body"`
}

// blockSpec is one block of a function body: either a call (of a function of the model or a system call) or a
// computation
type blockSpec struct {
	Call    string      `yaml:"call"`
	Args    []yaml.Node `yaml:"args"`
	Result  string      `yaml:"result"`
	Compute string      `yaml:"compute"`
}

// Load reads a program model file. Calls are classified with the syscall catalog of cfg.
func Load(cfg *config.Config, filename string) (*Program, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read program model: %w", err)
	}
	return Parse(cfg, b)
}

// LoadFromURL reads a program model from any location supported by the abstract file storage
func LoadFromURL(ctx context.Context, cfg *config.Config, url string) (*Program, error) {
	b, err := afs.New().DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("could not download program model %s: %w", url, err)
	}
	return Parse(cfg, b)
}

// Parse builds the program described by the model in b.
//
// Arguments are yaml scalars. Plain scalars starting with '$' reference a parameter or a call result of the enclosing
// function; every other scalar is a literal whose type is the yaml type of the scalar (string, int, float or null).
// Calls to names that are neither functions of the model nor system calls are computations.
func Parse(cfg *config.Config, b []byte) (*Program, error) {
	var model modelFile
	if err := yaml.Unmarshal(b, &model); err != nil {
		return nil, fmt.Errorf("could not unmarshal program model: %w", err)
	}
	p := New()
	locals := make([]map[string]ValueID, len(model.Functions))
	// declare all functions first so that calls can be forward references
	for i, fs := range model.Functions {
		if fs.Name == "" {
			return nil, fmt.Errorf("function %d has no name", i)
		}
		f, err := p.AddFunction(fs.Name)
		if err != nil {
			return nil, err
		}
		locals[i] = map[string]ValueID{}
		for _, param := range fs.Params {
			locals[i][param] = p.AddParam(f.ID, param)
		}
	}

	for i, fs := range model.Functions {
		f := p.FunctionByName(fs.Name)
		for j, block := range fs.Body {
			if err := p.parseBlock(cfg, f, locals[i], block); err != nil {
				return nil, fmt.Errorf("%s, block %d: %w", fs.Name, j, err)
			}
		}
		if !fs.Returns.IsZero() {
			v, err := p.parseArg(locals[i], &fs.Returns)
			if err != nil {
				return nil, fmt.Errorf("%s, return: %w", fs.Name, err)
			}
			p.SetResult(f.ID, v)
		}
		p.AddExit(f.ID)
	}
	return p, nil
}

func (p *Program) parseBlock(cfg *config.Config, f *Function, locals map[string]ValueID, block blockSpec) error {
	if block.Call == "" {
		p.AddComputation(f.ID).CallName = block.Compute
		return nil
	}
	args := make([]ValueID, len(block.Args))
	for k := range block.Args {
		v, err := p.parseArg(locals, &block.Args[k])
		if err != nil {
			return fmt.Errorf("argument %d of %s: %w", k, block.Call, err)
		}
		args[k] = v
	}
	withResult := block.Result != ""

	var abb *ABB
	if info, isSyscall, err := Classify(cfg, block.Call); err != nil {
		return err
	} else if isSyscall {
		abb = p.AddSyscall(f.ID, block.Call, info, args, withResult)
	} else if callee := p.FunctionByName(block.Call); callee != nil {
		abb, err = p.AddCall(f.ID, callee.ID, args, withResult)
		if err != nil {
			return err
		}
	} else {
		abb = p.AddComputation(f.ID)
		abb.CallName = block.Call
		abb.Args = args
		if withResult {
			abb.Return = p.AddValue(f.ID, block.Call+"()")
		}
	}
	if withResult {
		locals[block.Result] = abb.Return
	}
	return nil
}

func (p *Program) parseArg(locals map[string]ValueID, n *yaml.Node) (ValueID, error) {
	if n.Kind != yaml.ScalarNode {
		return NoValue, fmt.Errorf("line %d: argument must be a scalar", n.Line)
	}
	if n.Style == 0 && strings.HasPrefix(n.Value, "$") {
		v, ok := locals[n.Value[1:]]
		if !ok {
			return NoValue, fmt.Errorf("line %d: unknown local %s", n.Line, n.Value)
		}
		return v, nil
	}
	lit, err := literalOfNode(n)
	if err != nil {
		return NoValue, err
	}
	return p.AddConstant(lit), nil
}

func literalOfNode(n *yaml.Node) (osmodel.Literal, error) {
	switch n.ShortTag() {
	case "!!str":
		return osmodel.Str(n.Value), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return osmodel.Literal{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return osmodel.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return osmodel.Literal{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return osmodel.Float(f), nil
	case "!!null":
		return osmodel.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return osmodel.Literal{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if b {
			return osmodel.Int(1), nil
		}
		return osmodel.Int(0), nil
	}
	return osmodel.Literal{}, fmt.Errorf("line %d: unsupported literal %s", n.Line, n.Value)
}
