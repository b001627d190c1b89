package network

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/util"
	"github.com/op/go-logging"
)

// BackendClient consumes the three backend persistence procedures:
// the member-scoped write, the device-scoped anonymous write, and the
// lookup used for idempotency matching. The procedures themselves are
// opaque; see BackendResponse for the only shapes the engine inspects.
type BackendClient struct {
	HostURL    string
	APIKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// ReportLookupParams identifies a report for idempotency matching.
// AgencyObjectID is the primary key; the identity/date/area composite
// is the fallback when no agency id is known locally.
type ReportLookupParams struct {
	AgencyObjectID string
	Identity       string
	HarvestDate    string
	AreaCode       string
}

func NewBackendClient(hostURL, apiKey string, logger *logging.Logger) (*BackendClient, error) {
	if hostURL == "" {
		return nil, fmt.Errorf("Backend client requires a host URL")
	}
	if !util.TestsAreRunning() && apiKey == "" {
		return nil, fmt.Errorf("Backend client requires an API key")
	}
	return &BackendClient{
		HostURL: hostURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// SaveAuthenticated calls the member-scoped write procedure. The
// caller is responsible for checking session validity first.
func (client *BackendClient) SaveAuthenticated(report *harvest.StoredReport) *BackendResponse {
	relativeURL := fmt.Sprintf("/api/v1/members/%s/harvest-reports",
		url.PathEscape(report.Report.MemberID))
	return client.saveReport(relativeURL, report)
}

// SaveAnonymous calls the device-scoped write procedure using the
// device's anonymous identity.
func (client *BackendClient) SaveAnonymous(report *harvest.StoredReport) *BackendResponse {
	relativeURL := fmt.Sprintf("/api/v1/devices/%s/harvest-reports",
		url.PathEscape(report.Report.DeviceID))
	return client.saveReport(relativeURL, report)
}

func (client *BackendClient) saveReport(relativeURL string, report *harvest.StoredReport) *BackendResponse {
	resp := &BackendResponse{}
	jsonData, err := report.ToJSON()
	if err != nil {
		resp.Error = err
		return resp
	}
	client.doRequest(resp, http.MethodPost, relativeURL, []byte(jsonData))
	if resp.Error == nil && resp.ReportID == "" {
		resp.Error = fmt.Errorf("backend write returned no report id")
	}
	return resp
}

// FindReport calls the lookup procedure for idempotency matching.
// A miss is not an error: Found stays false and Error stays nil.
func (client *BackendClient) FindReport(params ReportLookupParams) *BackendResponse {
	v := url.Values{}
	if params.AgencyObjectID != "" {
		v.Add("agency_object_id", params.AgencyObjectID)
	} else {
		v.Add("identity", params.Identity)
		v.Add("harvest_date", params.HarvestDate)
		v.Add("area_code", params.AreaCode)
	}
	resp := &BackendResponse{}
	relativeURL := fmt.Sprintf("/api/v1/harvest-reports/lookup?%s", v.Encode())
	client.doRequest(resp, http.MethodGet, relativeURL, nil)
	if resp.Response != nil && resp.Response.StatusCode == http.StatusNotFound {
		resp.Found = false
		resp.Error = nil
	}
	return resp
}

func (client *BackendClient) doRequest(resp *BackendResponse, method, relativeURL string, body []byte) {
	absoluteURL := strings.TrimSuffix(client.HostURL, "/") + relativeURL
	var reader *bytes.Buffer
	if body == nil {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBuffer(body)
	}
	req, err := http.NewRequest(method, absoluteURL, reader)
	if err != nil {
		resp.Error = err
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", client.APIKey)
	resp.Request = req

	httpResp, err := client.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("backend unreachable: %v", err)
		client.logger.Warningf("Backend call %s failed in transit: %v", relativeURL, err)
		return
	}
	resp.Response = httpResp
	resp.readBody()
	if resp.Error == nil && httpResp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("backend returned status %d: %s",
			httpResp.StatusCode, resp.ErrorMessage)
	}
}
