// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage defines the persistence interfaces and wire serialization
// for conversation memory and embedded text segments.
//
// Two stores are defined:
//
//   - MemoryStore persists a conversation's message list keyed by an opaque
//     session identifier, with replace-all and delete-all semantics.
//   - VectorStore persists embedded text segments and answers relevance
//     queries with a result bound, a minimum relevance score in [0,1], and
//     an optional metadata equality filter.
//
// Serialization uses the MUS format via hand-written serializers in the
// core package. Backend implementations live in subpackages (see badger).
package storage
