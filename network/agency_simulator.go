package network

import (
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/op/go-logging"
)

// AgencySimulator stands in for the government endpoint in test-mode
// deployments (Config.AgencySimulator). It accepts every report and
// echoes the payload's own object id back as the authority-assigned
// identifier, so downstream bookkeeping behaves exactly as it would
// against the real endpoint.
type AgencySimulator struct {
	logger *logging.Logger
}

func NewAgencySimulator(logger *logging.Logger) *AgencySimulator {
	return &AgencySimulator{logger: logger}
}

func (sim *AgencySimulator) SubmitReport(payload *harvest.AgencyPayload) *AgencyResponse {
	sim.logger.Infof("Agency simulator accepted report %s (confirmation %s)",
		payload.ObjectID, payload.ConfirmationNumber)
	return &AgencyResponse{
		ObjectID:  payload.ObjectID,
		Succeeded: true,
	}
}
