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


// Package schema describes expected model output shapes and parses raw
// replies back into Go values.
//
// A Type is an explicit tagged variant over primitives, enums, date/time
// values, lists and named objects. Each Type produces a deterministic
// format instruction that is appended to the rendered user message, and
// the parser performs the exact inverse: it decodes a raw reply into the
// value the Type declares, failing with a parse error (never a silent
// default) when the reply does not conform.
package schema
