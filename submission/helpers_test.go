package submission_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/network"
	"github.com/CatchLog/harvest-services/util/testutil"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/require"
)

func getContext(t *testing.T) (*common.Context, *testutil.RedisServer) {
	server := testutil.NewRedisServer()
	context := testutil.NewTestContext(server.Addr())
	return context, server
}

// fakeBackend scripts the three backend procedures and counts calls
// to each.
type fakeBackend struct {
	LookupStatus int
	LookupBody   string
	MemberStatus int
	MemberBody   string
	AnonStatus   int
	AnonBody     string

	LookupCalls int
	MemberCalls int
	AnonCalls   int

	server *httptest.Server
}

// newFakeBackend starts a backend where lookups miss and both writes
// succeed. Tests override the scripted responses as needed.
func newFakeBackend(t *testing.T, context *common.Context) *fakeBackend {
	f := &fakeBackend{
		LookupStatus: http.StatusNotFound,
		LookupBody:   `{"found": false}`,
		MemberStatus: http.StatusOK,
		MemberBody:   `{"report_id": "8842"}`,
		AnonStatus:   http.StatusOK,
		AnonBody:     `{"report_id": "8843"}`,
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	client, err := network.NewBackendClient(f.server.URL, "test-key", logging.MustGetLogger("test"))
	require.Nil(t, err)
	context.BackendClient = client
	return f
}

func (f *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.Contains(r.URL.Path, "/lookup"):
		f.LookupCalls++
		w.WriteHeader(f.LookupStatus)
		w.Write([]byte(f.LookupBody))
	case strings.Contains(r.URL.Path, "/members/"):
		f.MemberCalls++
		w.WriteHeader(f.MemberStatus)
		w.Write([]byte(f.MemberBody))
	case strings.Contains(r.URL.Path, "/devices/"):
		f.AnonCalls++
		w.WriteHeader(f.AnonStatus)
		w.Write([]byte(f.AnonBody))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeBackend) Close() {
	f.server.Close()
}
