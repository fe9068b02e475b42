package message

import "encoding/json"

// StructuredError is the shaped form of a Response's body.error when
// success is false, mirrored from original_source/dap/protocol.py's
// Message/ErrorResponse.
type StructuredError struct {
	ID            int               `json:"id"`
	Format        string            `json:"format"`
	Variables     map[string]string `json:"variables,omitempty"`
	SendTelemetry *bool             `json:"sendTelemetry,omitempty"`
	ShowUser      *bool             `json:"showUser,omitempty"`
	URL           string            `json:"url,omitempty"`
	URLLabel      string            `json:"urlLabel,omitempty"`
}

// ErrorBody is the shape of Response.Body when Response.Success is false.
type ErrorBody struct {
	Error *StructuredError `json:"error,omitempty"`
}

// DecodeErrorBody extracts the structured error from a Response's raw body,
// if present. A nil or empty body is not an error: many adapters set only
// Response.Message on failure and leave body empty.
func DecodeErrorBody(body json.RawMessage) (*StructuredError, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return nil, err
	}
	return eb.Error, nil
}

// CancelArguments is the typed arguments shape for the "cancel" command;
// field names from original_source/dap/protocol.py's CancelArguments.
type CancelArguments struct {
	RequestID  *int64  `json:"requestId,omitempty"`
	ProgressID *string `json:"progressId,omitempty"`
}
