package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

var errNotArray = errors.New("snapshot must be a JSON array of records")

// Decode parses a snapshot document and checks every row. Rows without an
// id get a fresh uuid, which stays stable for the rest of the session.
func Decode(b []byte) ([]models.Record, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil, errNotArray
	}
	var records []models.Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, validate(records)
}

func validate(records []models.Record) error {
	seen := make(map[models.RecordID]int, len(records))
	for i := range records {
		r := &records[i]
		if r.ID == "" {
			r.ID = models.RecordID(uuid.NewString())
		}
		if j, dup := seen[r.ID]; dup {
			return fmt.Errorf("record %d: duplicate id %q (first at record %d)", i, r.ID, j)
		}
		seen[r.ID] = i
		switch {
		case r.Spend.IsNegative():
			return fmt.Errorf("record %d (id %s): negative spend %s", i, r.ID, r.Spend)
		case r.Impressions < 0:
			return fmt.Errorf("record %d (id %s): negative impressions %d", i, r.ID, r.Impressions)
		case r.Clicks < 0:
			return fmt.Errorf("record %d (id %s): negative clicks %d", i, r.ID, r.Clicks)
		case r.Conversions < 0:
			return fmt.Errorf("record %d (id %s): negative conversions %d", i, r.ID, r.Conversions)
		}
	}
	return nil
}
