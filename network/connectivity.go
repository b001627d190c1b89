package network

import (
	"net/http"
	"time"
)

// ConnectivityProbe answers one question: does the device currently
// have a network path. The sync engine never calls a remote write
// without an affirmative probe first.
type ConnectivityProbe interface {
	IsReachable() bool
}

// HTTPProbe checks reachability with a HEAD request against a
// well-known URL (typically the backend's health endpoint).
type HTTPProbe struct {
	URL        string
	httpClient *http.Client
}

func NewHTTPProbe(url string) *HTTPProbe {
	return &HTTPProbe{
		URL: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// IsReachable returns true if the probe URL answered at all. Any
// HTTP status counts as reachable; a 500 from the health endpoint
// still means the network path exists.
func (probe *HTTPProbe) IsReachable() bool {
	resp, err := probe.httpClient.Head(probe.URL)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
