package sandbox

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// callLog is the append-only record of bridge invocations for one run.
// It is owned by a single Execute call but must tolerate concurrent appends
// in case the script dispatches tool calls concurrently.
type callLog struct {
	mu      sync.Mutex
	entries []ToolCallLog
}

func newCallLog() *callLog {
	return &callLog{}
}

// begin appends a running entry and returns its index
func (cl *callLog) begin(toolName string, args map[string]interface{}) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.entries = append(cl.entries, ToolCallLog{
		ID:        uuid.New().String(),
		ToolName:  toolName,
		Args:      args,
		Status:    StatusRunning,
		StartTime: time.Now(),
	})
	return len(cl.entries) - 1
}

// succeed marks the entry at idx as completed with its result
func (cl *callLog) succeed(idx int, result interface{}) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry := &cl.entries[idx]
	entry.Status = StatusSuccess
	entry.Result = result
	entry.Duration = time.Since(entry.StartTime)
}

// fail marks the entry at idx as errored
func (cl *callLog) fail(idx int, errMsg, errType, traceback string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry := &cl.entries[idx]
	entry.Status = StatusError
	entry.Error = errMsg
	entry.ErrorType = errType
	entry.Traceback = traceback
	entry.Duration = time.Since(entry.StartTime)
}

// snapshot returns a copy of all entries recorded so far
func (cl *callLog) snapshot() []ToolCallLog {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	out := make([]ToolCallLog, len(cl.entries))
	copy(out, cl.entries)
	return out
}
