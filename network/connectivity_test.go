package network_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CatchLog/harvest-services/network"
	"github.com/CatchLog/harvest-services/util/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPProbeReachable(t *testing.T) {
	server := httptest.NewServer(testutil.HttpStringResponder(testutil.EmptyHeaders, "ok"))
	defer server.Close()
	probe := network.NewHTTPProbe(server.URL)
	assert.True(t, probe.IsReachable())
}

func TestHTTPProbeAnyStatusIsReachable(t *testing.T) {
	// A 500 from the health endpoint still means the network path
	// exists.
	server := httptest.NewServer(testutil.HttpStatusResponder(http.StatusInternalServerError, "down"))
	defer server.Close()
	probe := network.NewHTTPProbe(server.URL)
	assert.True(t, probe.IsReachable())
}

func TestHTTPProbeUnreachable(t *testing.T) {
	server := httptest.NewServer(testutil.HttpStringResponder(testutil.EmptyHeaders, "ok"))
	url := server.URL
	server.Close()
	probe := network.NewHTTPProbe(url)
	assert.False(t, probe.IsReachable())
}
