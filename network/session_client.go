package network

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SessionStatus is the session service's answer to "is this member's
// session still valid".
type SessionStatus struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// SessionValidator is the one capability the router consumes from the
// auth system. Token refresh mechanics live elsewhere.
type SessionValidator interface {
	IsSessionValid(memberID string) (*SessionStatus, error)
}

// SessionClient asks the session service whether a member's session
// is live.
type SessionClient struct {
	HostURL    string
	httpClient *http.Client
}

func NewSessionClient(hostURL string) *SessionClient {
	return &SessionClient{
		HostURL: hostURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (client *SessionClient) IsSessionValid(memberID string) (*SessionStatus, error) {
	absoluteURL := fmt.Sprintf("%s/session/validate?member_id=%s",
		client.HostURL, url.QueryEscape(memberID))
	resp, err := client.httpClient.Get(absoluteURL)
	if err != nil {
		return nil, fmt.Errorf("session service unreachable: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	status := &SessionStatus{}
	err = json.Unmarshal(data, status)
	if err != nil {
		return nil, fmt.Errorf("bad session service response: %v", err)
	}
	return status, nil
}
