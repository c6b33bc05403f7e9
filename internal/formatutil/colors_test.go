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

package formatutil

import (
	"os"
	"strings"
	"testing"

	"golang.org/x/term"
)

func TestColor(t *testing.T) {
	s := Yellow("unresolved handler ", 2)
	if !strings.Contains(s, "unresolved handler 2") {
		t.Errorf("unexpected %q", s)
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) && s != "unresolved handler 2" {
		t.Errorf("no escape sequence expected outside of a terminal, got %q", s)
	}
}
