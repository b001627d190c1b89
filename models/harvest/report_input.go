package harvest

import (
	"encoding/json"
	"time"

	"github.com/CatchLog/harvest-services/constants"
)

// HarvestReportInput is a user-authored harvest report as it arrives
// from the mobile client. It is immutable once constructed: every
// downstream transformation (agency payload, stored report, queued
// submission) copies from it and never writes back.
type HarvestReportInput struct {
	// HasLicense indicates whether the angler holds a coastal
	// recreational fishing license. When false, FirstName, LastName
	// and ZipCode identify the angler instead of LicenseID.
	HasLicense bool   `json:"has_license"`
	LicenseID  string `json:"license_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ZipCode    string `json:"zip_code"`

	// HarvestDate is the date of harvest in YYYY-MM-DD form, as
	// entered on the device. It is part of the idempotency key, so
	// it stays a plain date string rather than a timestamp.
	HarvestDate string `json:"harvest_date"`

	// AreaCode identifies the water body where the harvest occurred,
	// e.g. "NC-001".
	AreaCode string `json:"area_code"`

	// Gear is one of the constants.Gear* methods.
	Gear string `json:"gear"`

	// Aggregate per-species counts. The sum of these always equals
	// the sum of itemized FishEntries counts when both are present.
	RedDrumCount       int `json:"red_drum_count"`
	FlounderCount      int `json:"flounder_count"`
	SpeckledTroutCount int `json:"speckled_trout_count"`
	StripedBassCount   int `json:"striped_bass_count"`

	// FishEntries is optional itemized catch detail. Reports created
	// before itemization existed carry only aggregate counts.
	FishEntries []FishEntry `json:"fish_entries,omitempty"`

	// Contact preferences.
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	EmailOptIn bool   `json:"email_opt_in"`

	// PhotoPath is a locally-referenced photo of the catch, if any.
	// It is replaced by a remote URL once uploaded to object storage.
	PhotoPath string `json:"photo_path,omitempty"`

	// DrawingEntry indicates the angler opted into the citation
	// drawing for this report.
	DrawingEntry bool `json:"drawing_entry"`

	// MemberID is the rewards-member account id, empty for anonymous
	// submissions. DeviceID is the per-device anonymous identity and
	// is always present.
	MemberID string `json:"member_id,omitempty"`
	DeviceID string `json:"device_id"`
}

// IsMember returns true if this report was submitted under an
// authenticated rewards-member account.
func (input *HarvestReportInput) IsMember() bool {
	return input.MemberID != ""
}

// SubmitterIdentity returns the identity half of the fallback
// idempotency key: the member id when present, else the device id.
func (input *HarvestReportInput) SubmitterIdentity() string {
	if input.IsMember() {
		return input.MemberID
	}
	return input.DeviceID
}

// SpeciesCounts returns the aggregate per-species counts keyed by
// species code. Zero counts are included so callers can distinguish
// "reported zero" from "species unknown".
func (input *HarvestReportInput) SpeciesCounts() map[string]int {
	return map[string]int{
		constants.SpeciesRedDrum:       input.RedDrumCount,
		constants.SpeciesFlounder:      input.FlounderCount,
		constants.SpeciesSpeckledTrout: input.SpeckledTroutCount,
		constants.SpeciesStripedBass:   input.StripedBassCount,
	}
}

// TotalCount returns the sum of the aggregate species counts.
func (input *HarvestReportInput) TotalCount() int {
	return input.RedDrumCount + input.FlounderCount +
		input.SpeckledTroutCount + input.StripedBassCount
}

// HarvestDateValue parses HarvestDate. Returns the zero time if the
// date is missing or malformed.
func (input *HarvestReportInput) HarvestDateValue() time.Time {
	t, err := time.Parse("2006-01-02", input.HarvestDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (input *HarvestReportInput) ToJSON() (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func HarvestReportInputFromJSON(jsonData string) (*HarvestReportInput, error) {
	input := &HarvestReportInput{}
	err := json.Unmarshal([]byte(jsonData), input)
	if err != nil {
		return nil, err
	}
	return input, nil
}
