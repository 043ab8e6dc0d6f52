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


package prompt

import (
	"fmt"

	"github.com/poiesic/servitor/core"
)

// All template failures are configuration errors: they match
// core.ErrConfig via errors.Is and are never retried.
var (
	// ErrEmptyTemplate indicates an empty or blank template.
	ErrEmptyTemplate = fmt.Errorf("%w: prompt template cannot be empty", core.ErrConfig)

	// ErrResourceNotFound indicates a named template resource that does not exist.
	ErrResourceNotFound = fmt.Errorf("%w: prompt template resource not found", core.ErrConfig)

	// ErrMissingVariable indicates a placeholder with no bound value.
	ErrMissingVariable = fmt.Errorf("%w: prompt template variable has no value", core.ErrConfig)
)
