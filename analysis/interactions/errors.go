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

package interactions

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEntryPoint is returned when the program has no entry function
	ErrNoEntryPoint = errors.New("entry point not found")

	// ErrAmbiguousAppMode is returned when the application mode the scheduler is started in cannot be determined
	// uniquely
	ErrAmbiguousAppMode = errors.New("ambiguous application mode")

	// ErrNoRTOS is returned when the RTOS singleton is needed but not in the graph
	ErrNoRTOS = errors.New("no RTOS node in the graph")
)

// A FatalError aborts the detection. The graph must not be used after a fatal error.
type FatalError struct {
	// Phase is the phase of the detection that failed
	Phase string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error during %s: %v", e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(phase string, err error) *FatalError {
	return &FatalError{Phase: phase, Err: err}
}

// DiagnosticKind classifies the recoverable problems of the detection
type DiagnosticKind int

const (
	// UnresolvedHandler is reported when the handler argument of a syscall has no value in the context of the call
	UnresolvedHandler DiagnosticKind = iota
	// NonStringHandler is reported when the handler argument of a syscall is not a string
	NonStringHandler
	// AmbiguousHandler is reported when several literals reach the handler argument in the same context. The first
	// one is used.
	AmbiguousHandler
	// NoMatchingTarget is reported when no abstraction matches the handler of a syscall
	NoMatchingTarget
	// MissingFunction is reported when the function of an abstraction is not in the program
	MissingFunction
	// QueueSetMember is reported when a member added to a queue set cannot be determined
	QueueSetMember
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnresolvedHandler:
		return "unresolved-handler"
	case NonStringHandler:
		return "non-string-handler"
	case AmbiguousHandler:
		return "ambiguous-handler"
	case NoMatchingTarget:
		return "no-matching-target"
	case MissingFunction:
		return "missing-function"
	case QueueSetMember:
		return "queueset-member"
	}
	return fmt.Sprintf("diagnostic(%d)", int(k))
}

// A Diagnostic is a recoverable problem of the detection. The edge concerned is not created.
type Diagnostic struct {
	Kind DiagnosticKind
	// Root is the abstraction whose code was being analyzed
	Root string
	// Function is the function containing the syscall
	Function string
	// Syscall is the name of the syscall
	Syscall string
	// Handler is the handler name expected by the syscall, if known
	Handler string
	// CallChain is the chain of functions from the root's function to Function
	CallChain []string
	Message   string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", d.Kind)
	if d.Root != "" {
		fmt.Fprintf(&b, " in %s", d.Root)
	}
	if d.Syscall != "" {
		fmt.Fprintf(&b, " syscall %s", d.Syscall)
	}
	if d.Function != "" {
		fmt.Fprintf(&b, " in function %s", d.Function)
	}
	if d.Handler != "" {
		fmt.Fprintf(&b, " (expected handler %q)", d.Handler)
	}
	if d.Message != "" {
		fmt.Fprintf(&b, ": %s", d.Message)
	}
	if len(d.CallChain) > 1 {
		fmt.Fprintf(&b, " [%s]", strings.Join(d.CallChain, " > "))
	}
	return b.String()
}
