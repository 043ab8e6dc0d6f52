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


// Package ai defines the model collaborator contracts: chat generation
// (synchronous and streaming), moderation and text embedding.
//
// The orchestration core depends only on these interfaces. The openai
// subpackage implements them against OpenAI-compatible APIs; the mock
// subpackage provides test doubles.
package ai
