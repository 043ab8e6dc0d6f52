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


// Package tool implements tool registration and dispatch.
//
// A Descriptor binds a tool name and natural-language description to a
// typed parameter list and an executable handler. Descriptors are collected
// into an immutable Registry at construction time; the Dispatcher resolves
// model-issued tool calls against the registry, runs the handlers (siblings
// concurrently, on a shared worker pool), and converts each outcome into a
// tool-result message in the original call order.
//
// Handler failures and panics are recoverable: they become tool-result text
// the model can react to. Only an unregistered tool name is fatal, since it
// indicates a configuration mismatch between the registry and the tool
// specs sent to the model.
package tool
