package harvest_test

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmationNumber(t *testing.T) {
	day := strconv.Itoa(time.Now().Day())
	for i := 0; i < 25; i++ {
		number := harvest.NewConfirmationNumber()
		assert.True(t, strings.HasPrefix(number, day), number)
		assert.Equal(t, len(day)+4, len(number), number)
		_, err := strconv.Atoi(number)
		assert.Nil(t, err)
	}
}

func TestNewAgencyObjectID(t *testing.T) {
	pattern := regexp.MustCompile(`^\{[0-9A-F]{8}(-[0-9A-F]{4}){3}-[0-9A-F]{12}\}$`)
	id1 := harvest.NewAgencyObjectID()
	id2 := harvest.NewAgencyObjectID()
	assert.True(t, pattern.MatchString(id1), id1)
	assert.True(t, pattern.MatchString(id2), id2)
	assert.NotEqual(t, id1, id2)
}

func TestNewAgencyPayload(t *testing.T) {
	input := testutil.GetReportInput(false)
	payload := harvest.NewAgencyPayload(input)
	assert.NotEmpty(t, payload.ConfirmationNumber)
	assert.NotEmpty(t, payload.ObjectID)
	assert.Equal(t, payload.ConfirmationNumber, payload.Attributes["CONFIRMATION_NUMBER"])
	assert.Equal(t, payload.ObjectID, payload.Attributes["OBJECT_ID"])
}

func TestPayloadAttributesAreDeterministic(t *testing.T) {
	input := testutil.GetItemizedReportInput()
	p1 := harvest.NewAgencyPayloadWithIdentifiers(input, "140042", "{ABC}")
	p2 := harvest.NewAgencyPayloadWithIdentifiers(input, "140042", "{ABC}")
	assert.Equal(t, p1.Attributes, p2.Attributes)
}

func TestPayloadAttributes(t *testing.T) {
	input := testutil.GetItemizedReportInput()
	payload := harvest.NewAgencyPayloadWithIdentifiers(input, "140042", "{ABC}")
	attrs := payload.Attributes

	assert.Equal(t, "YES", attrs["HAS_LICENSE"])
	assert.Equal(t, "CRFL-55512", attrs["LICENSE_ID"])
	assert.Equal(t, testutil.HarvestDate, attrs["HARVEST_DATE"])
	assert.Equal(t, testutil.AreaCode, attrs["AREA_CODE"])
	assert.Equal(t, "hook_and_line", attrs["GEAR"])
	assert.Equal(t, "2", attrs["RED_DRUM"])
	assert.Equal(t, "1", attrs["FLOUNDER"])
	assert.Equal(t, "0", attrs["SPECKLED_TROUT"])
	assert.Equal(t, "3", attrs["TOTAL_COUNT"])
	assert.Equal(t, "YES", attrs["EMAIL_OPT_IN"])
	assert.Equal(t, "NO", attrs["DRAWING_ENTRY"])

	// Itemized detail lands in numbered columns.
	assert.Equal(t, "red_drum", attrs["ENTRY_1_SPECIES"])
	assert.Equal(t, "2", attrs["ENTRY_1_COUNT"])
	assert.Equal(t, "24.5,26.0", attrs["ENTRY_1_LENGTHS"])
	assert.Equal(t, "flounder", attrs["ENTRY_2_SPECIES"])
	assert.Equal(t, "1", attrs["ENTRY_2_COUNT"])
	assert.Equal(t, "T-4471", attrs["ENTRY_2_TAG_NUMBER"])
	_, hasLengths := attrs["ENTRY_2_LENGTHS"]
	assert.False(t, hasLengths)
}

func TestPayloadSynthesizesEntryColumns(t *testing.T) {
	// Pre-itemization reports still produce entry columns.
	input := testutil.GetReportInput(false)
	require.Empty(t, input.FishEntries)
	payload := harvest.NewAgencyPayloadWithIdentifiers(input, "140042", "{ABC}")
	assert.Equal(t, "red_drum", payload.Attributes["ENTRY_1_SPECIES"])
	assert.Equal(t, "2", payload.Attributes["ENTRY_1_COUNT"])
	assert.Equal(t, "flounder", payload.Attributes["ENTRY_2_SPECIES"])
}

func TestPayloadAggregatesFollowItemizedEntries(t *testing.T) {
	// When the aggregate counts and the itemized entries disagree, the
	// entries win: the per-species columns are recomputed so they can
	// never contradict the ENTRY_* columns.
	input := testutil.GetItemizedReportInput()
	input.RedDrumCount = 9
	input.StripedBassCount = 4

	payload := harvest.NewAgencyPayloadWithIdentifiers(input, "140042", "{ABC}")
	attrs := payload.Attributes
	assert.Equal(t, "2", attrs["RED_DRUM"])
	assert.Equal(t, "1", attrs["FLOUNDER"])
	assert.Equal(t, "0", attrs["STRIPED_BASS"])
	assert.Equal(t, "3", attrs["TOTAL_COUNT"])
	assert.Equal(t, "red_drum", attrs["ENTRY_1_SPECIES"])
	assert.Equal(t, "2", attrs["ENTRY_1_COUNT"])
}
