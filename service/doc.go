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


// Package service orchestrates multi-turn model conversations.
//
// A Service binds a chat model to optional collaborators: a moderation
// model, a conversation memory store, a content retriever and a tool
// registry. A Method describes one callable operation: its user and system
// templates, its declared output schema and whether the rendered input is
// moderated.
//
// Invoke drives a session through an explicit state machine:
//
//	RENDER -> AWAIT_MODEL -> (DISPATCH_TOOLS -> AWAIT_MODEL)* -> PARSE_FINAL -> DONE
//
// with FAILED reachable from any state. Tool-call replies loop through the
// dispatcher until the model produces a final answer, which the schema
// parser materializes into the declared output value. Stream runs the same
// session as an explicitly started task that forwards tokens in emission
// order and fires exactly one terminal completion or error callback.
package service
