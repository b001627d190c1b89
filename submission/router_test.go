package submission_test

import (
	"net/http"
	"testing"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/submission"
	"github.com/CatchLog/harvest-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRouter(context *common.Context) *submission.PersistenceRouter {
	return submission.NewPersistenceRouter(context, submission.NewIdempotencyGuard(context))
}

func TestPersistDefersWhenOffline(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	context.Probe = &testutil.ScriptedProbe{Answers: []bool{false}}

	report := testutil.GetStoredReport()
	result, err := getRouter(context).Persist(report)
	require.Nil(t, err)
	assert.True(t, result.Deferred)
	assert.Equal(t, constants.WritePathDeferred, result.Path)
	assert.Equal(t, report.ID, result.ReportID)

	// The report keeps its local id and joins the pending queue.
	saved, err := context.StateClient.StoredReportGet(report.ID)
	require.Nil(t, err)
	assert.Equal(t, constants.StorageLocal, saved.Storage)
	ids, err := context.StateClient.PendingQueueGet()
	require.Nil(t, err)
	assert.Equal(t, []string{report.ID}, ids)

	// Deferring again must not duplicate the queue entry.
	_, err = getRouter(context).Persist(report)
	require.Nil(t, err)
	ids, _ = context.StateClient.PendingQueueGet()
	assert.Equal(t, []string{report.ID}, ids)
}

func TestPersistAnonymousWrite(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	defer backend.Close()

	report := testutil.GetStoredReport()
	localID := report.ID
	require.Nil(t, context.StateClient.StoredReportSave(report))

	result, err := getRouter(context).Persist(report)
	require.Nil(t, err)
	assert.False(t, result.Deferred)
	assert.Equal(t, constants.WritePathAnonymous, result.Path)
	assert.Equal(t, "8843", report.ID)
	assert.True(t, report.IsConfirmedRemote())
	assert.Equal(t, 1, backend.AnonCalls)
	assert.Equal(t, 0, backend.MemberCalls)

	// The record moved to its remote id; the local one is gone.
	_, err = context.StateClient.StoredReportGet("8843")
	assert.Nil(t, err)
	_, err = context.StateClient.StoredReportGet(localID)
	assert.NotNil(t, err)
	ids, _ := context.StateClient.PendingQueueGet()
	assert.Empty(t, ids)
}

func TestPersistAdoptsExistingRecord(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	defer backend.Close()
	backend.LookupStatus = http.StatusOK
	backend.LookupBody = `{"report_id": "8842", "found": true}`

	report := testutil.GetStoredReport()
	result, err := getRouter(context).Persist(report)
	require.Nil(t, err)
	assert.True(t, result.AdoptedExisting)
	assert.Equal(t, constants.WritePathAdopted, result.Path)
	assert.Equal(t, "8842", report.ID)

	// No write ran. The guard matched first.
	assert.Equal(t, 0, backend.AnonCalls)
	assert.Equal(t, 0, backend.MemberCalls)
}

func TestPersistMemberWrite(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	defer backend.Close()

	router := getRouter(context)
	router.Session = &testutil.StubSession{Valid: true}

	report := testutil.GetStoredReport()
	report.Report.MemberID = testutil.MemberID
	result, err := router.Persist(report)
	require.Nil(t, err)
	assert.Equal(t, constants.WritePathMember, result.Path)
	assert.Equal(t, "8842", report.ID)
	assert.Equal(t, 1, backend.MemberCalls)
	assert.Equal(t, 0, backend.AnonCalls)
}

func TestPersistInvalidSessionUsesAnonymousPath(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	defer backend.Close()

	router := getRouter(context)
	router.Session = &testutil.StubSession{Valid: false, Reason: "session expired"}

	report := testutil.GetStoredReport()
	report.Report.MemberID = testutil.MemberID
	result, err := router.Persist(report)
	require.Nil(t, err)
	assert.Equal(t, constants.WritePathAnonymous, result.Path)
	assert.Equal(t, 0, backend.MemberCalls)
	assert.Equal(t, 1, backend.AnonCalls)
}

func TestPersistMemberAuthFailureFallsThrough(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	defer backend.Close()
	backend.MemberStatus = http.StatusUnauthorized
	backend.MemberBody = `{"error": {"code": "session_expired", "message": "session expired mid-flight"}}`

	router := getRouter(context)
	router.Session = &testutil.StubSession{Valid: true}

	report := testutil.GetStoredReport()
	report.Report.MemberID = testutil.MemberID
	result, err := router.Persist(report)
	require.Nil(t, err)
	assert.Equal(t, constants.WritePathAnonymous, result.Path)
	assert.Equal(t, 1, backend.MemberCalls)
	assert.Equal(t, 1, backend.AnonCalls)
	assert.Equal(t, "8843", report.ID)
}

func TestPersistMemberConflictSurfaces(t *testing.T) {
	// A non-authorization member failure must not retry anonymously;
	// the anonymous path would hit the same wall.
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	defer backend.Close()
	backend.MemberStatus = http.StatusConflict
	backend.MemberBody = `{"error": {"code": "unique_violation", "message": "report already exists"}}`

	router := getRouter(context)
	router.Session = &testutil.StubSession{Valid: true}

	report := testutil.GetStoredReport()
	report.Report.MemberID = testutil.MemberID
	_, err := router.Persist(report)
	require.NotNil(t, err)
	assert.True(t, common.IsConflict(err))
	assert.Equal(t, 0, backend.AnonCalls)

	// Surfaced rejections never join the pending queue.
	ids, _ := context.StateClient.PendingQueueGet()
	assert.Empty(t, ids)
}

func TestPersistAnonymousConflictSurfaces(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	defer backend.Close()
	backend.AnonStatus = http.StatusConflict
	backend.AnonBody = `{"error": {"code": "unique_violation", "message": "report already exists"}}`

	report := testutil.GetStoredReport()
	_, err := getRouter(context).Persist(report)
	require.NotNil(t, err)
	assert.True(t, common.IsConflict(err))
	assert.False(t, report.IsConfirmedRemote())
	ids, _ := context.StateClient.PendingQueueGet()
	assert.Empty(t, ids)
}

func TestPersistUnknownAnonymousFailureDefers(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	defer backend.Close()
	backend.AnonStatus = http.StatusInternalServerError
	backend.AnonBody = `{"error": {"message": "something went wrong"}}`

	report := testutil.GetStoredReport()
	result, err := getRouter(context).Persist(report)
	require.Nil(t, err)
	assert.True(t, result.Deferred)
	ids, _ := context.StateClient.PendingQueueGet()
	assert.Equal(t, []string{report.ID}, ids)
}

func TestPersistUnreachableBackendDefers(t *testing.T) {
	context, redis := getContext(t)
	defer redis.Close()
	backend := newFakeBackend(t, context)
	backend.Close()

	report := testutil.GetStoredReport()
	result, err := getRouter(context).Persist(report)
	require.Nil(t, err)
	assert.True(t, result.Deferred)
	assert.Equal(t, constants.StorageLocal, report.Storage)
}
