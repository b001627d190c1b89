package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/network"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
)

// NewTestContext returns a Context wired to the given in-process
// state store, with millisecond backoffs so retry loops run without
// real timers. Remote clients start nil or unreachable; tests point
// them at httptest servers or stubs as needed.
func NewTestContext(redisAddr string) *common.Context {
	config := &common.Config{
		AgencyMaxRetries:        3,
		ConfigName:              "test",
		ConnectivityBackoffBase: time.Millisecond,
		ConnectivityMaxAttempts: constants.ConnectivityMaxAttempts,
		PhotoBucket:             PhotoBucket,
		WebhookMaxAttempts:      constants.DefaultWebhookMaxAttempts,
	}
	return &common.Context{
		Config:      config,
		Logger:      logging.MustGetLogger("test"),
		NSQClient:   network.NewNSQClient(""),
		Probe:       &ScriptedProbe{Answers: []bool{true}},
		StateClient: network.NewStateClient(redisAddr, "", 0),
		S3Clients:   make(map[string]*minio.Client),
	}
}

// MinioClientFor returns a minio client talking to the given test
// S3 server.
func MinioClientFor(serverURL string) *minio.Client {
	endpoint := strings.TrimPrefix(serverURL, "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("test-key", "test-secret", ""),
		Secure: false,
	})
	if err != nil {
		panic(err)
	}
	return client
}

// ScriptedProbe answers connectivity probes from a script. Probes
// past the end of the script repeat the last answer.
type ScriptedProbe struct {
	Answers []bool
	Calls   int
}

func (p *ScriptedProbe) IsReachable() bool {
	answer := false
	if len(p.Answers) > 0 {
		i := p.Calls
		if i >= len(p.Answers) {
			i = len(p.Answers) - 1
		}
		answer = p.Answers[i]
	}
	p.Calls++
	return answer
}

// ScriptedAgency answers agency submissions from a script of
// responses, recording each payload it sees. Submissions past the
// end of the script repeat the last response.
type ScriptedAgency struct {
	Responses []*network.AgencyResponse
	Payloads  []*harvest.AgencyPayload
	Calls     int
}

func (a *ScriptedAgency) SubmitReport(payload *harvest.AgencyPayload) *network.AgencyResponse {
	a.Payloads = append(a.Payloads, payload)
	i := a.Calls
	a.Calls++
	if i >= len(a.Responses) {
		i = len(a.Responses) - 1
	}
	return a.Responses[i]
}

// AgencySuccess returns a response for a successful agency
// submission.
func AgencySuccess(objectID string) *network.AgencyResponse {
	return &network.AgencyResponse{
		ObjectID:  objectID,
		Succeeded: true,
	}
}

// AgencyFailure returns a response for a rejected agency submission.
func AgencyFailure(code, message string) *network.AgencyResponse {
	return &network.AgencyResponse{
		Succeeded:    false,
		ErrorCode:    code,
		ErrorMessage: message,
		Error:        fmt.Errorf("agency rejected submission: %s", message),
	}
}

// StubSession is a canned SessionValidator.
type StubSession struct {
	Valid  bool
	Reason string
	Err    error
}

func (s *StubSession) IsSessionValid(memberID string) (*network.SessionStatus, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return &network.SessionStatus{Valid: s.Valid, Reason: s.Reason}, nil
}
