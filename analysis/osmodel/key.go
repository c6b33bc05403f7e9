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

package osmodel

import (
	"strconv"

	"github.com/minio/highwayhash"
)

// hashKey is the fixed HighwayHash key; node identities must be stable across runs
var hashKey = []byte("ar-os-tools/osmodel/node-key/v1!")

// Key identifies a node by its name and kind
type Key uint64

// KeyOf returns the identity of the node named name of kind k
func KeyOf(name string, k Kind) Key {
	b := make([]byte, 0, len(name)+4)
	b = append(b, name...)
	b = append(b, 0)
	b = strconv.AppendUint(b, uint64(k), 10)
	return Key(highwayhash.Sum64(b, hashKey))
}

// HashBytes returns the stable 64-bit hash of b used throughout the model
func HashBytes(b []byte) uint64 {
	return highwayhash.Sum64(b, hashKey)
}
