package submission

import (
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/network"
)

// IdempotencyGuard decides, before any remote write, whether an
// equivalent record already exists on the backend. A retry after a
// partial failure goes through here and adopts the record the first
// attempt created instead of creating a second one.
type IdempotencyGuard struct {
	Context *common.Context
}

func NewIdempotencyGuard(context *common.Context) *IdempotencyGuard {
	return &IdempotencyGuard{Context: context}
}

// FindExisting looks up an equivalent remote record. The primary key
// is the agency-assigned object id when the report has one; the
// fallback is the (submitter identity, harvest date, area code)
// composite.
//
// A lookup error is treated as "no match" so the write can proceed.
// That trades a small duplicate risk for forward progress; the
// alternative is a report stuck behind a flaky lookup forever.
func (g *IdempotencyGuard) FindExisting(report *harvest.StoredReport) (string, bool) {
	params := network.ReportLookupParams{
		AgencyObjectID: report.AgencyObjectID,
		Identity:       report.Report.SubmitterIdentity(),
		HarvestDate:    report.Report.HarvestDate,
		AreaCode:       report.Report.AreaCode,
	}
	resp := g.Context.BackendClient.FindReport(params)
	if resp.Error != nil {
		g.Context.Logger.Warningf(
			"Idempotency lookup for report %s failed, proceeding with write: %v",
			report.ID, resp.Error)
		return "", false
	}
	if !resp.Found || resp.ReportID == "" {
		return "", false
	}
	g.Context.Logger.Infof("Report %s already exists remotely as %s",
		report.ID, resp.ReportID)
	return resp.ReportID, true
}
