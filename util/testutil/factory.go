package testutil

import (
	"github.com/CatchLog/harvest-services/models/harvest"
)

const (
	AreaCode    = "NC-001"
	DeviceID    = "device-0f3a"
	HarvestDate = "2023-10-14"
	MemberID    = "member-1288"
)

// GetReportInput returns a licensed anonymous report with aggregate
// counts only. Pass member=true for a rewards-member submission.
func GetReportInput(member bool) *harvest.HarvestReportInput {
	input := &harvest.HarvestReportInput{
		HasLicense:         true,
		LicenseID:          "CRFL-55512",
		HarvestDate:        HarvestDate,
		AreaCode:           AreaCode,
		Gear:               "hook_and_line",
		RedDrumCount:       2,
		FlounderCount:      1,
		SpeckledTroutCount: 0,
		StripedBassCount:   0,
		Email:              "angler@example.com",
		EmailOptIn:         true,
		DeviceID:           DeviceID,
	}
	if member {
		input.MemberID = MemberID
	}
	return input
}

// GetUnlicensedReportInput returns a report identified by name and
// zip code rather than license number.
func GetUnlicensedReportInput() *harvest.HarvestReportInput {
	input := GetReportInput(false)
	input.HasLicense = false
	input.LicenseID = ""
	input.FirstName = "Jane"
	input.LastName = "Doe"
	input.ZipCode = "27601"
	return input
}

// GetItemizedReportInput returns a report whose catch is itemized
// into fish entries consistent with its aggregate counts.
func GetItemizedReportInput() *harvest.HarvestReportInput {
	input := GetReportInput(false)
	input.FishEntries = []harvest.FishEntry{
		{Species: "red_drum", Count: 2, Lengths: []float64{24.5, 26.0}},
		{Species: "flounder", Count: 1, TagNumber: "T-4471"},
	}
	return input
}

// GetStoredReport returns a local-only stored report wrapping a fresh
// anonymous input.
func GetStoredReport() *harvest.StoredReport {
	return harvest.NewStoredReport(GetReportInput(false))
}

// GetQueuedSubmission returns a pending agency retry entry linked to
// the given report id.
func GetQueuedSubmission(reportID string) *harvest.QueuedSubmission {
	return harvest.NewQueuedSubmission(
		reportID, GetReportInput(false), "140042", "{ABC123}")
}
