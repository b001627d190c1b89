package harvest

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/google/uuid"
)

// AgencyPayload is the record shape the government endpoint accepts:
// a confirmation number the angler can reference, a globally unique
// object identifier, and a flattened attribute set matching the
// agency's fixed reporting schema.
//
// The attribute mapping is deterministic for a given input, but the
// confirmation number and object id are random. Generate the payload
// exactly once per logical submission and reuse it across retries;
// the agency treats a regenerated confirmation number as a new,
// duplicate filing.
type AgencyPayload struct {
	ConfirmationNumber string            `json:"confirmation_number"`
	ObjectID           string            `json:"object_id"`
	Attributes         map[string]string `json:"attributes"`
}

// NewConfirmationNumber returns a confirmation number in the agency's
// format: the day of the month followed by four random digits.
func NewConfirmationNumber() string {
	return fmt.Sprintf("%d%04d", time.Now().Day(), rand.Intn(10000))
}

// NewAgencyObjectID returns a record identifier in the agency's
// format: an upper-case hyphenated GUID wrapped in braces.
func NewAgencyObjectID() string {
	return "{" + strings.ToUpper(uuid.New().String()) + "}"
}

// NewAgencyPayload builds the payload for one logical submission,
// generating a fresh confirmation number and object id. See the type
// comment: call this once per submission, never per retry.
func NewAgencyPayload(input *HarvestReportInput) *AgencyPayload {
	return NewAgencyPayloadWithIdentifiers(
		input, NewConfirmationNumber(), NewAgencyObjectID())
}

// NewAgencyPayloadWithIdentifiers rebuilds the payload for a queued
// submission that already has its identifiers. Retries of a queued
// submission use this so the confirmation number is stable.
func NewAgencyPayloadWithIdentifiers(input *HarvestReportInput, confirmationNumber, objectID string) *AgencyPayload {
	return &AgencyPayload{
		ConfirmationNumber: confirmationNumber,
		ObjectID:           objectID,
		Attributes:         agencyAttributes(input, confirmationNumber, objectID),
	}
}

func agencyAttributes(input *HarvestReportInput, confirmationNumber, objectID string) map[string]string {
	// The per-species columns derive from the normalized entries, not
	// the raw aggregate counts. When a report carries itemized entries
	// that disagree with its aggregates, the entries win, and the
	// RED_DRUM-style columns always match the ENTRY_* columns.
	entries := NormalizeEntries(input)
	counts := AggregateEntries(entries)
	total := 0
	for _, count := range counts {
		total += count
	}

	attrs := map[string]string{
		"CONFIRMATION_NUMBER": confirmationNumber,
		"OBJECT_ID":           objectID,
		"HAS_LICENSE":         yesNo(input.HasLicense),
		"LICENSE_ID":          input.LicenseID,
		"FIRST_NAME":          input.FirstName,
		"LAST_NAME":           input.LastName,
		"ZIP_CODE":            input.ZipCode,
		"HARVEST_DATE":        input.HarvestDate,
		"AREA_CODE":           input.AreaCode,
		"GEAR":                input.Gear,
		"EMAIL":               input.Email,
		"PHONE":               input.Phone,
		"EMAIL_OPT_IN":        yesNo(input.EmailOptIn),
		"DRAWING_ENTRY":       yesNo(input.DrawingEntry),
		"RED_DRUM":            strconv.Itoa(counts[constants.SpeciesRedDrum]),
		"FLOUNDER":            strconv.Itoa(counts[constants.SpeciesFlounder]),
		"SPECKLED_TROUT":      strconv.Itoa(counts[constants.SpeciesSpeckledTrout]),
		"STRIPED_BASS":        strconv.Itoa(counts[constants.SpeciesStripedBass]),
		"TOTAL_COUNT":         strconv.Itoa(total),
	}
	// The agency schema wants itemized detail in numbered columns.
	// Normalization guarantees entries exist even for reports that
	// predate itemization.
	for i, entry := range entries {
		prefix := fmt.Sprintf("ENTRY_%d_", i+1)
		attrs[prefix+"SPECIES"] = entry.Species
		attrs[prefix+"COUNT"] = strconv.Itoa(entry.Count)
		if len(entry.Lengths) > 0 {
			lengths := make([]string, len(entry.Lengths))
			for j, l := range entry.Lengths {
				lengths[j] = strconv.FormatFloat(l, 'f', 1, 64)
			}
			attrs[prefix+"LENGTHS"] = strings.Join(lengths, ",")
		}
		if entry.TagNumber != "" {
			attrs[prefix+"TAG_NUMBER"] = entry.TagNumber
		}
	}
	return attrs
}

func yesNo(value bool) string {
	if value {
		return "YES"
	}
	return "NO"
}
