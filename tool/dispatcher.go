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


package tool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/servitor/core"
)

// Dispatcher resolves model-issued tool calls against a registry and runs
// the handlers. Sibling calls from one model turn execute concurrently on
// a shared worker pool; results are collected before any are returned, in
// the original call order.
type Dispatcher struct {
	registry *Registry
	pool     *ants.Pool
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher) error

// WithPoolSize sets the worker pool size for concurrent tool execution.
func WithPoolSize(size int) DispatcherOption {
	return func(d *Dispatcher) error {
		if d.pool != nil {
			d.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		d.pool = pool
		return nil
	}
}

// WithLogger sets the logger used for tool execution diagnostics.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) error {
		d.logger = logger
		return nil
	}
}

// NewDispatcher creates a dispatcher over the given registry.
// The default pool size is half the CPU count, minimum one.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: dispatcher requires a registry", core.ErrConfig)
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		registry: registry,
		pool:     pool,
		logger:   slog.Default().With("component", "tool-dispatcher"),
	}

	for _, opt := range opts {
		if optErr := opt(d); optErr != nil {
			d.Release()
			return nil, optErr
		}
	}
	return d, nil
}

// Dispatch runs every tool call and returns one result per call, in the
// original call order. Handler errors and panics become result text; only
// an unregistered tool name fails the dispatch, before any handler runs.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []core.ToolCall) ([]core.ToolResult, error) {
	// Resolve everything up front so a configuration fault never
	// executes a partial batch.
	descriptors := make([]*Descriptor, len(calls))
	for i, call := range calls {
		descriptor, err := d.registry.Get(call.Name)
		if err != nil {
			return nil, err
		}
		descriptors[i] = descriptor
	}

	results := make([]core.ToolResult, len(calls))
	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		i := i
		run := func() {
			defer wg.Done()
			results[i] = d.execute(ctx, descriptors[i], calls[i])
		}
		if err := d.pool.Submit(run); err != nil {
			// Pool unavailable (released or saturated beyond limits);
			// run inline rather than dropping the call.
			run()
		}
	}
	wg.Wait()

	return results, nil
}

// execute runs one handler and converts any failure into result text so
// the conversation can continue.
func (d *Dispatcher) execute(ctx context.Context, descriptor *Descriptor, call core.ToolCall) (result core.ToolResult) {
	result = core.ToolResult{CallId: call.Id, Name: call.Name}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked", "tool", call.Name, "panic", r)
			result.Text = fmt.Sprintf("error: tool %q panicked: %v", call.Name, r)
		}
	}()

	args, err := descriptor.coerceArgs(call.Arguments)
	if err != nil {
		d.logger.Warn("tool arguments rejected", "tool", call.Name, "err", err)
		result.Text = fmt.Sprintf("error: %v", err)
		return result
	}

	text, err := descriptor.Handler(ctx, args)
	if err != nil {
		d.logger.Warn("tool execution failed", "tool", call.Name, "err", err)
		result.Text = fmt.Sprintf("error: %v", err)
		return result
	}

	result.Text = text
	return result
}

// Release releases the worker pool.
// The dispatcher should not be used after calling Release.
func (d *Dispatcher) Release() {
	if d.pool != nil {
		d.pool.Release()
	}
}
