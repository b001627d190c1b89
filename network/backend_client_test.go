package network_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CatchLog/harvest-services/network"
	"github.com/CatchLog/harvest-services/util/testutil"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getBackendClient(t *testing.T, handler http.HandlerFunc) (*network.BackendClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client, err := network.NewBackendClient(server.URL, "test-key", logging.MustGetLogger("test"))
	require.Nil(t, err)
	return client, server
}

func TestSaveAuthenticated(t *testing.T) {
	var capturedPath string
	handler := func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Write([]byte(`{"report_id": "8842", "dmf_status": "submitted"}`))
	}
	client, server := getBackendClient(t, handler)
	defer server.Close()

	report := testutil.GetStoredReport()
	report.Report.MemberID = testutil.MemberID
	resp := client.SaveAuthenticated(report)

	require.Nil(t, resp.Error)
	assert.Equal(t, "8842", resp.ReportID)
	assert.Equal(t, "submitted", resp.DMFStatus)
	assert.Equal(t, "/api/v1/members/"+testutil.MemberID+"/harvest-reports", capturedPath)
}

func TestSaveAnonymous(t *testing.T) {
	var capturedPath string
	handler := func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Write([]byte(`{"report_id": "8843"}`))
	}
	client, server := getBackendClient(t, handler)
	defer server.Close()

	resp := client.SaveAnonymous(testutil.GetStoredReport())
	require.Nil(t, resp.Error)
	assert.Equal(t, "8843", resp.ReportID)
	assert.Equal(t, "/api/v1/devices/"+testutil.DeviceID+"/harvest-reports", capturedPath)
}

func TestSaveReturnsStructuredError(t *testing.T) {
	handler := testutil.HttpStatusResponder(http.StatusConflict,
		`{"error": {"code": "unique_violation", "message": "report already exists"}}`)
	client, server := getBackendClient(t, handler)
	defer server.Close()

	resp := client.SaveAnonymous(testutil.GetStoredReport())
	require.NotNil(t, resp.Error)
	assert.Equal(t, "unique_violation", resp.ErrorCode)
	assert.Equal(t, "report already exists", resp.ErrorMessage)
	assert.False(t, resp.Unreachable())
}

func TestSaveWithoutReportIDFails(t *testing.T) {
	// A write that "succeeds" without an identifier is a failure. The
	// engine cannot adopt an id it never got.
	handler := testutil.HttpStringResponder(testutil.EmptyHeaders, `{}`)
	client, server := getBackendClient(t, handler)
	defer server.Close()

	resp := client.SaveAnonymous(testutil.GetStoredReport())
	assert.NotNil(t, resp.Error)
}

func TestFindReportByObjectID(t *testing.T) {
	var capturedQuery string
	handler := func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.RawQuery
		w.Write([]byte(`{"report_id": "8842", "found": true}`))
	}
	client, server := getBackendClient(t, handler)
	defer server.Close()

	resp := client.FindReport(network.ReportLookupParams{AgencyObjectID: "{ABC}"})
	require.Nil(t, resp.Error)
	assert.True(t, resp.Found)
	assert.Equal(t, "8842", resp.ReportID)
	assert.Contains(t, capturedQuery, "agency_object_id=")
	assert.NotContains(t, capturedQuery, "identity=")
}

func TestFindReportByCompositeKey(t *testing.T) {
	var capturedQuery string
	handler := func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.RawQuery
		w.Write([]byte(`{"found": false}`))
	}
	client, server := getBackendClient(t, handler)
	defer server.Close()

	resp := client.FindReport(network.ReportLookupParams{
		Identity:    testutil.DeviceID,
		HarvestDate: testutil.HarvestDate,
		AreaCode:    testutil.AreaCode,
	})
	require.Nil(t, resp.Error)
	assert.False(t, resp.Found)
	assert.Contains(t, capturedQuery, "identity=")
	assert.Contains(t, capturedQuery, "harvest_date=")
	assert.Contains(t, capturedQuery, "area_code=")
}

func TestFindReportMissIsNotAnError(t *testing.T) {
	handler := testutil.HttpStatusResponder(http.StatusNotFound, `{"found": false}`)
	client, server := getBackendClient(t, handler)
	defer server.Close()

	resp := client.FindReport(network.ReportLookupParams{AgencyObjectID: "{ABC}"})
	assert.Nil(t, resp.Error)
	assert.False(t, resp.Found)
}

func TestBackendUnreachable(t *testing.T) {
	server := httptest.NewServer(testutil.HttpStringResponder(testutil.EmptyHeaders, "{}"))
	client, err := network.NewBackendClient(server.URL, "key", logging.MustGetLogger("test"))
	require.Nil(t, err)
	server.Close()

	resp := client.SaveAnonymous(testutil.GetStoredReport())
	require.NotNil(t, resp.Error)
	assert.True(t, resp.Unreachable())
}
