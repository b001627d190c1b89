package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/util"
	"github.com/op/go-logging"
)

// FixedGeometry is the placeholder geometry the agency's write call
// requires on every record. Harvest locations are reported by area
// code, not coordinates, so every submission carries this point.
const FixedGeometry = `{"x":0,"y":0,"spatialReference":{"wkid":4326}}`

// AgencyClient submits harvest reports to the government reporting
// endpoint.
type AgencyClient struct {
	HostURL    string
	APIKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// AgencySubmitter is the single capability the submission engine
// needs from the government side. The simulator used in test-mode
// builds implements this too.
type AgencySubmitter interface {
	SubmitReport(payload *harvest.AgencyPayload) *AgencyResponse
}

func NewAgencyClient(hostURL, apiKey string, logger *logging.Logger) (*AgencyClient, error) {
	if hostURL == "" {
		return nil, fmt.Errorf("Agency client requires a host URL")
	}
	if !util.TestsAreRunning() && apiKey == "" {
		return nil, fmt.Errorf("Agency client requires an API key")
	}
	return &AgencyClient{
		HostURL: hostURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// SubmitReport performs the agency's single write call: the payload's
// attribute set plus the fixed geometry placeholder. The agency
// replies with a success flag and an authority-assigned object id, or
// a structured error.
func (client *AgencyClient) SubmitReport(payload *harvest.AgencyPayload) *AgencyResponse {
	resp := &AgencyResponse{}

	body := map[string]interface{}{
		"attributes": payload.Attributes,
		"geometry":   json.RawMessage(FixedGeometry),
	}
	postData, err := json.Marshal(body)
	if err != nil {
		resp.Error = err
		return resp
	}

	absoluteURL := client.buildURL("/reporting-api/v1/harvest-reports")
	req, err := http.NewRequest(http.MethodPost, absoluteURL, bytes.NewBuffer(postData))
	if err != nil {
		resp.Error = err
		return resp
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", client.APIKey)
	resp.Request = req

	httpResp, err := client.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("agency endpoint unreachable: %v", err)
		client.logger.Warningf("Agency submission failed in transit: %v", err)
		return resp
	}
	resp.Response = httpResp
	resp.readBody()

	if resp.Error == nil && !resp.Succeeded {
		resp.Error = fmt.Errorf("agency rejected report: %s (%s)",
			resp.ErrorMessage, resp.ErrorCode)
	}
	return resp
}

func (client *AgencyClient) buildURL(relativeURL string) string {
	return strings.TrimSuffix(client.HostURL, "/") + relativeURL
}
