package engine

import "encoding/json"

// Error codes forming the engine's error taxonomy. Every error the engine
// returns that isn't a plain context cancellation carries one of these.
const (
	ErrParse            = "ERR_PARSE"
	ErrCompile          = "ERR_COMPILE"
	ErrInvalidCondition = "ERR_INVALID_CONDITION"
	ErrTimeout          = "ERR_TIMEOUT"
	ErrCancelled        = "ERR_CANCELLED"
	ErrInternal         = "ERR_INTERNAL"
)

// AnalysisError is the uniform error payload the engine returns, suitable
// for both a human-readable message (%s) and machine-readable JSON.
type AnalysisError struct {
	Code    string `json:"code"`
	File    string `json:"file,omitempty"`
	RuleID  string `json:"rule_id,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *AnalysisError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// JSON renders the error as a JSON object.
func (e *AnalysisError) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

func newError(code, file, ruleID, msg string, inner error) *AnalysisError {
	e := &AnalysisError{Code: code, File: file, RuleID: ruleID, Message: msg}
	if inner != nil {
		e.Detail = inner.Error()
	}
	return e
}
