package ingest

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

func TestDecodeFixture(t *testing.T) {
	b, err := os.ReadFile("testdata/campaigns.json")
	require.NoError(t, err)

	records, err := Decode(b)
	require.NoError(t, err)
	require.Len(t, records, 7)

	assert.Equal(t, models.RecordID("1"), records[0].ID)
	assert.Equal(t, "1200.5", records[0].Spend.String())
	assert.Equal(t, models.RecordID("4"), records[3].ID, "string ids are accepted")
	assert.Equal(t, "410.1", records[3].Spend.String(), "quoted decimals are accepted")
	assert.EqualValues(t, 0, records[6].Impressions)
}

func TestDecodeAssignsMissingIDs(t *testing.T) {
	records, err := Decode([]byte(`[{"channel":"A","spend":1},{"id":null,"channel":"B","spend":2}]`))
	require.NoError(t, err)
	for _, r := range records {
		_, err := uuid.Parse(string(r.ID))
		assert.NoError(t, err)
	}
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"object":       `{"data": []}`,
		"null":         `null`,
		"empty":        ``,
		"bad type":     `[{"id":1,"channel":"A","impressions":"many"}]`,
		"bad id":       `[{"id":true,"channel":"A"}]`,
		"negative":     `[{"id":1,"channel":"A","clicks":-1}]`,
		"duplicate id": `[{"id":1,"channel":"A"},{"id":"1","channel":"B"}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEmptyArray(t *testing.T) {
	records, err := Decode([]byte(" [] "))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
