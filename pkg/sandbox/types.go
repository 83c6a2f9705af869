package sandbox

import "time"

// FailureKind classifies terminal execution failures
type FailureKind string

const (
	// FailureCompile means the generated script failed to parse or load
	FailureCompile FailureKind = "compile"
	// FailureEntryPointMissing means the script lacks a callable run()
	FailureEntryPointMissing FailureKind = "entry_point_missing"
	// FailureExecution means run() raised without catching
	FailureExecution FailureKind = "execution"
	// FailureTimeout means the execution budget was exhausted
	FailureTimeout FailureKind = "timeout"
)

// CallStatus is the lifecycle state of one bridge invocation
type CallStatus string

const (
	StatusRunning CallStatus = "running"
	StatusSuccess CallStatus = "success"
	StatusError   CallStatus = "error"
)

// ToolCallLog records one bridge invocation's arguments, timing and outcome
type ToolCallLog struct {
	ID        string                 `json:"id"`
	ToolName  string                 `json:"tool_name"`
	Args      map[string]interface{} `json:"args"`
	Status    CallStatus             `json:"status"`
	StartTime time.Time              `json:"start_time"`
	Duration  time.Duration          `json:"duration"`
	Result    interface{}            `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	ErrorType string                 `json:"error_type,omitempty"`
	Traceback string                 `json:"traceback,omitempty"`
}

// ExecutionResult is the structured outcome of one Execute call.
// ToolLogs is populated regardless of overall success so partial progress
// stays diagnosable.
type ExecutionResult struct {
	OK          bool          `json:"ok"`
	Result      interface{}   `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	FailureKind FailureKind   `json:"failure_kind,omitempty"`
	Traceback   string        `json:"traceback,omitempty"`
	ToolLogs    []ToolCallLog `json:"tool_logs"`
}
