package models

import "time"

// Meta carries response metadata attached to every ToolResult.
type Meta struct {
	Timestamp string `json:"timestamp"`
	Note      string `json:"note,omitempty"`
}

// ToolResult is the outbound envelope for every tool. Exactly one of Data and
// Error is populated: Data when OK is true, Error when it is false.
type ToolResult struct {
	OK        bool        `json:"ok"`
	ContentMD string      `json:"content_md"`
	Data      interface{} `json:"data,omitempty"`
	Meta      Meta        `json:"meta"`
	Error     string      `json:"error,omitempty"`
}

// Success builds an ok=true result around a tool payload.
func Success(contentMD string, data interface{}) *ToolResult {
	return &ToolResult{
		OK:        true,
		ContentMD: contentMD,
		Data:      data,
		Meta:      Meta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	}
}

// SuccessWithNote builds an ok=true result carrying a meta note.
func SuccessWithNote(contentMD string, data interface{}, note string) *ToolResult {
	r := Success(contentMD, data)
	r.Meta.Note = note
	return r
}

// Failure builds an ok=false result from an error. The message is always a
// single line and never carries a payload.
func Failure(err error) *ToolResult {
	return &ToolResult{
		OK:        false,
		ContentMD: "Error: " + err.Error(),
		Meta:      Meta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
		Error:     err.Error(),
	}
}
