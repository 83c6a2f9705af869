package sandbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"

	"github.com/searchlens/searchlens/pkg/registry"
)

// entryPointName is the fixed name of the script's async entry point
const entryPointName = "run"

// scriptName labels the compiled program in parse errors and stack traces
const scriptName = "orchestration.js"

// ToolInvoker is the single capability injected into generated scripts
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args map[string]interface{}) (interface{}, error)
}

// Executor runs generated orchestration scripts in an isolated JavaScript
// runtime. Each Execute call gets a fresh runtime containing nothing but the
// injected runTool bridge, and a fresh call log.
type Executor struct {
	invoker ToolInvoker
}

// New creates an executor that bridges tool calls to the given invoker
func New(invoker ToolInvoker) *Executor {
	return &Executor{invoker: invoker}
}

// Execute sanitizes, loads and runs the script, capturing per-call telemetry
// and structured error envelopes. Failures are reported in the result, never
// as a Go error; the executor performs no retries of its own.
func (e *Executor) Execute(ctx context.Context, source string) *ExecutionResult {
	cleaned := Sanitize(source)
	logbook := newCallLog()

	vm := goja.New()
	vm.Set("runTool", e.bridge(ctx, logbook))

	program, err := goja.Compile(scriptName, cleaned, false)
	if err != nil {
		return &ExecutionResult{
			OK:          false,
			FailureKind: FailureCompile,
			Error:       fmt.Sprintf("Error compiling generated script: %v", err),
			Traceback:   err.Error(),
			ToolLogs:    logbook.snapshot(),
		}
	}

	// Top-level statements run here; a throw during load is a structural
	// failure just like a parse error.
	if _, err := vm.RunProgram(program); err != nil {
		return e.loadFailure(err, logbook)
	}

	entry, ok := goja.AssertFunction(vm.Get(entryPointName))
	if !ok {
		return &ExecutionResult{
			OK:          false,
			FailureKind: FailureEntryPointMissing,
			Error:       fmt.Sprintf("Generated script did not define an async function '%s'.", entryPointName),
			ToolLogs:    logbook.snapshot(),
		}
	}

	// Interrupt the runtime when the context expires. The bridge passes the
	// same context to the remote call, so blocking invocations unwind too.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-watchdogDone:
		}
	}()

	value, err := entry(goja.Undefined())
	if err != nil {
		return e.runFailure(ctx, err, logbook)
	}

	result, err := settle(value)
	if err != nil {
		return e.runFailure(ctx, err, logbook)
	}

	log.Debug().Int("tool_calls", len(logbook.snapshot())).Msg("Script execution completed")

	return &ExecutionResult{
		OK:       true,
		Result:   result,
		ToolLogs: logbook.snapshot(),
	}
}

// bridge builds the runTool function exposed to the script. Every invocation
// is logged as running, then updated to success or error; failures are
// re-thrown into the script so its own defensive wrapping decides what to do.
func (e *Executor) bridge(ctx context.Context, logbook *callLog) func(string, map[string]interface{}) (interface{}, error) {
	return func(name string, args map[string]interface{}) (interface{}, error) {
		idx := logbook.begin(name, args)

		result, err := e.invoker.Invoke(ctx, name, args)
		if err != nil {
			logbook.fail(idx, err.Error(), classifyToolError(err), fmt.Sprintf("%+v", err))
			return nil, err
		}

		logbook.succeed(idx, result)
		return result, nil
	}
}

func classifyToolError(err error) string {
	switch {
	case errors.Is(err, registry.ErrToolNotFound):
		return "ToolNotFound"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Timeout"
	default:
		return "ToolCallError"
	}
}

// settle resolves the entry point's return value. An async run() yields a
// promise; with no host event loop every microtask has already drained by the
// time the call returns, so a pending promise means the script relied on
// scheduling the sandbox does not provide.
func settle(value goja.Value) (interface{}, error) {
	promise, ok := value.Export().(*goja.Promise)
	if !ok {
		return value.Export(), nil
	}

	switch promise.State() {
	case goja.PromiseStateFulfilled:
		return promise.Result().Export(), nil
	case goja.PromiseStateRejected:
		return nil, rejectionError(promise.Result())
	default:
		return nil, errors.New("entry point returned a promise that never settled; the sandbox provides no timers or host scheduling")
	}
}

// rejectionError converts a rejected promise value into a Go error carrying
// the JavaScript stack when one is available.
func rejectionError(value goja.Value) error {
	if obj, ok := value.(*goja.Object); ok {
		if stack := obj.Get("stack"); stack != nil && !goja.IsUndefined(stack) {
			return fmt.Errorf("%s\n%s", value.String(), stack.String())
		}
	}
	return errors.New(value.String())
}

// loadFailure maps top-level script errors to a compile-class failure
func (e *Executor) loadFailure(err error, logbook *callLog) *ExecutionResult {
	traceback := err.Error()
	if ex, ok := err.(*goja.Exception); ok {
		traceback = ex.String()
	}
	return &ExecutionResult{
		OK:          false,
		FailureKind: FailureCompile,
		Error:       fmt.Sprintf("Error loading generated script: %v", err),
		Traceback:   traceback,
		ToolLogs:    logbook.snapshot(),
	}
}

// runFailure maps entry point errors to execution or timeout failures
func (e *Executor) runFailure(ctx context.Context, err error, logbook *callLog) *ExecutionResult {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) || ctx.Err() != nil {
		reason := ctx.Err()
		if reason == nil {
			reason = err
		}
		return &ExecutionResult{
			OK:          false,
			FailureKind: FailureTimeout,
			Error:       fmt.Sprintf("Execution aborted: %v", reason),
			Traceback:   err.Error(),
			ToolLogs:    logbook.snapshot(),
		}
	}

	traceback := err.Error()
	if ex, ok := err.(*goja.Exception); ok {
		traceback = ex.String()
	}

	return &ExecutionResult{
		OK:          false,
		FailureKind: FailureExecution,
		Error:       fmt.Sprintf("Error during execution of %s(): %v", entryPointName, err),
		Traceback:   traceback,
		ToolLogs:    logbook.snapshot(),
	}
}
