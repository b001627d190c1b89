package network

import (
	"encoding/json"
	"io"
	"net/http"
)

// BackendResponse is the outcome of one backend write or lookup call.
// The backend procedures are opaque: the engine sees only
// success-with-identifier or failure-with-code-and-message.
type BackendResponse struct {
	// ReportID is the backend-assigned identifier, set on a
	// successful write or a lookup match.
	ReportID string

	// DMFStatus is the backend's view of the report's government-
	// submission status.
	DMFStatus string

	// Found reports whether a lookup matched an existing record.
	Found bool

	// ErrorCode is the structured error code, when the backend sent
	// one. ErrorMessage is always present on failure. Classification
	// prefers the code and falls back to the message.
	ErrorCode    string
	ErrorMessage string

	Request  *http.Request
	Response *http.Response

	// Error is any error that occurred while processing the request.
	// If Response is nil as well, the backend was never reached.
	Error error

	data []byte
}

type backendResponseBody struct {
	ReportID  string `json:"report_id"`
	DMFStatus string `json:"dmf_status"`
	Found     bool   `json:"found"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Unreachable returns true if the request never produced an HTTP
// response at all.
func (resp *BackendResponse) Unreachable() bool {
	return resp.Error != nil && resp.Response == nil
}

func (resp *BackendResponse) readBody() {
	if resp.Response == nil || resp.Response.Body == nil {
		return
	}
	resp.data, resp.Error = io.ReadAll(resp.Response.Body)
	resp.Response.Body.Close()
	if resp.Error != nil {
		return
	}
	body := backendResponseBody{}
	resp.Error = json.Unmarshal(resp.data, &body)
	if resp.Error != nil {
		return
	}
	resp.ReportID = body.ReportID
	resp.DMFStatus = body.DMFStatus
	resp.Found = body.Found
	resp.ErrorCode = body.Error.Code
	resp.ErrorMessage = body.Error.Message
}

// RawResponseData returns the raw body of the HTTP response.
func (resp *BackendResponse) RawResponseData() []byte {
	return resp.data
}
