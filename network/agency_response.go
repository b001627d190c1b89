package network

import (
	"encoding/json"
	"io"
	"net/http"
)

// AgencyResponse is the outcome of one call to the government
// reporting endpoint.
type AgencyResponse struct {
	// ObjectID is the authority-assigned record identifier, set on
	// success.
	ObjectID string

	// Succeeded is the success flag from the agency's response body.
	Succeeded bool

	// ErrorCode and ErrorMessage hold the agency's structured error,
	// when it sent one.
	ErrorCode    string
	ErrorMessage string

	// The HTTP request that was (or would have been) sent. Useful for
	// logging and debugging.
	Request *http.Request

	// The HTTP response from the server. Do not read Response.Body;
	// it has already been read and closed.
	Response *http.Response

	// Error is any error that occurred while processing the request,
	// on either side of the wire. If Response is nil as well, the
	// endpoint was never reached.
	Error error

	data []byte
}

type agencyResponseBody struct {
	Success  bool   `json:"success"`
	ObjectID string `json:"object_id"`
	Error    struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Unreachable returns true if the request never produced an HTTP
// response at all. That counts as a connectivity failure, not a
// rejection.
func (resp *AgencyResponse) Unreachable() bool {
	return resp.Error != nil && resp.Response == nil
}

func (resp *AgencyResponse) readBody() {
	if resp.Response == nil || resp.Response.Body == nil {
		return
	}
	resp.data, resp.Error = io.ReadAll(resp.Response.Body)
	resp.Response.Body.Close()
	if resp.Error != nil {
		return
	}
	body := agencyResponseBody{}
	resp.Error = json.Unmarshal(resp.data, &body)
	if resp.Error != nil {
		return
	}
	resp.Succeeded = body.Success
	resp.ObjectID = body.ObjectID
	resp.ErrorCode = body.Error.Code
	resp.ErrorMessage = body.Error.Message
}

// RawResponseData returns the raw body of the HTTP response.
func (resp *AgencyResponse) RawResponseData() []byte {
	return resp.data
}
