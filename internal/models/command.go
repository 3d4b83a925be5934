package models

// CommandEnvelope is the request unit carried from the dispatcher to the
// bridge, over either transport. It is immutable once sent; the secret is the
// bridge's shared secret and must match or the command is rejected without
// touching any executor.
type CommandEnvelope struct {
	Secret  string         `json:"secret"`
	Command string         `json:"command" binding:"required" validate:"required"`
	Params  map[string]any `json:"params"`
}

// Result statuses. Executor-level failures are still HTTP 200; the status
// field is the signal.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ExecutionResult is what the bridge produces for every envelope. Executor
// failures are converted into an error-status result at the bridge boundary;
// nothing below HandleCommand ever escapes as a panic or transport error.
type ExecutionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OKResult wraps a successful executor message.
func OKResult(message string) ExecutionResult {
	return ExecutionResult{Status: StatusOK, Message: message}
}

// ErrorResult wraps a failure description.
func ErrorResult(message string) ExecutionResult {
	return ExecutionResult{Status: StatusError, Message: message}
}
