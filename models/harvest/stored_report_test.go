package harvest_test

import (
	"strings"
	"testing"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalID(t *testing.T) {
	id := harvest.NewLocalID()
	assert.True(t, strings.HasPrefix(id, "local-"))
	assert.True(t, harvest.IsLocalID(id))
	assert.False(t, harvest.IsLocalID("8842"))
}

func TestNewStoredReport(t *testing.T) {
	report := testutil.GetStoredReport()
	assert.True(t, harvest.IsLocalID(report.ID))
	assert.Equal(t, constants.AgencyStatusPending, report.AgencyStatus)
	assert.Equal(t, constants.StorageLocal, report.Storage)
	assert.False(t, report.IsConfirmedRemote())
	assert.False(t, report.CreatedAt.IsZero())
}

func TestSetAgencyStatusIsMonotonic(t *testing.T) {
	report := testutil.GetStoredReport()

	require.Nil(t, report.SetAgencyStatus(constants.AgencyStatusSubmitted))
	assert.Equal(t, constants.AgencyStatusSubmitted, report.AgencyStatus)

	// Setting the same status again is a no-op, not an error.
	assert.Nil(t, report.SetAgencyStatus(constants.AgencyStatusSubmitted))

	// Leaving a terminal status is an error and changes nothing.
	err := report.SetAgencyStatus(constants.AgencyStatusFailed)
	require.NotNil(t, err)
	assert.Equal(t, constants.AgencyStatusSubmitted, report.AgencyStatus)

	err = report.SetAgencyStatus(constants.AgencyStatusPending)
	require.NotNil(t, err)
	assert.Equal(t, constants.AgencyStatusSubmitted, report.AgencyStatus)
}

func TestMarkAgencySubmitted(t *testing.T) {
	report := testutil.GetStoredReport()
	require.Nil(t, report.MarkAgencySubmitted("140042", "{ABC}"))
	assert.Equal(t, constants.AgencyStatusSubmitted, report.AgencyStatus)
	assert.Equal(t, "140042", report.AgencyConfirmationNumber)
	assert.Equal(t, "{ABC}", report.AgencyObjectID)

	failed := testutil.GetStoredReport()
	require.Nil(t, failed.SetAgencyStatus(constants.AgencyStatusFailed))
	assert.NotNil(t, failed.MarkAgencySubmitted("140042", "{ABC}"))
}

func TestAdoptRemoteID(t *testing.T) {
	report := testutil.GetStoredReport()
	localID := report.ID

	oldID := report.AdoptRemoteID("8842")
	assert.Equal(t, localID, oldID)
	assert.Equal(t, "8842", report.ID)
	assert.Equal(t, constants.StorageRemote, report.Storage)
	assert.True(t, report.IsConfirmedRemote())
}

func TestWithNormalizedEntries(t *testing.T) {
	report := testutil.GetStoredReport()
	require.Empty(t, report.Report.FishEntries)

	wire := report.WithNormalizedEntries()
	assert.Equal(t, 2, len(wire.Report.FishEntries))
	assert.Equal(t, "red_drum", wire.Report.FishEntries[0].Species)

	// The original report and its input are untouched.
	assert.Empty(t, report.Report.FishEntries)
}

func TestStoredReportJSON(t *testing.T) {
	report := testutil.GetStoredReport()
	jsonData, err := report.ToJSON()
	require.Nil(t, err)

	restored, err := harvest.StoredReportFromJSON(jsonData)
	require.Nil(t, err)
	assert.Equal(t, report.ID, restored.ID)
	assert.Equal(t, report.Report, restored.Report)
	assert.Equal(t, report.AgencyStatus, restored.AgencyStatus)
}
