package models

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RecordID identifies a campaign row for the whole session. Snapshots carry
// it either as a JSON number or a JSON string.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", string(b))
	}
	*id = RecordID(n.String())
	return nil
}

// Compare orders integer ids numerically and everything else as text.
// Integer ids sort before non-integer ones.
func (id RecordID) Compare(other RecordID) int {
	a, errA := strconv.ParseInt(string(id), 10, 64)
	b, errB := strconv.ParseInt(string(other), 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(id, other)
}

// Record is one row of campaign performance data. Values are taken as-is
// from the snapshot; conversions may exceed impressions.
type Record struct {
	ID          RecordID        `json:"id"`
	Channel     string          `json:"channel"`
	Region      string          `json:"region"`
	Spend       decimal.Decimal `json:"spend"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Conversions int64           `json:"conversions"`
}

// CTR is conversions per impression as a percentage, 0 without impressions.
func (r Record) CTR() float64 { return Rate(r.Conversions, r.Impressions) }

// Rate returns num/den*100, or 0 when den is 0.
func Rate(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

type SortKey string

const (
	SortNone        SortKey = ""
	SortID          SortKey = "id"
	SortChannel     SortKey = "channel"
	SortRegion      SortKey = "region"
	SortSpend       SortKey = "spend"
	SortImpressions SortKey = "impressions"
	SortClicks      SortKey = "clicks"
	SortConversions SortKey = "conversions"
)

// SortKeys lists the sortable columns in table order.
var SortKeys = []SortKey{SortChannel, SortRegion, SortSpend, SortImpressions, SortClicks, SortConversions, SortID}

func (k SortKey) Valid() bool {
	if k == SortNone {
		return true
	}
	for _, v := range SortKeys {
		if v == k {
			return true
		}
	}
	return false
}

// ParseSortKey normalizes s and rejects columns that cannot be sorted.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return SortNone, fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

type SortConfig struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// Page is one page-worth slice of the sorted records.
type Page struct {
	Records      []Record `json:"records"`
	Number       int      `json:"page"`
	Size         int      `json:"page_size"`
	TotalPages   int      `json:"total_pages"`
	TotalRecords int      `json:"total_records"`
}

// Summary holds the KPI totals over the filtered records.
type Summary struct {
	TotalSpend       decimal.Decimal `json:"total_spend"`
	TotalConversions int64           `json:"total_conversions"`
	TotalImpressions int64           `json:"total_impressions"`
	AvgCTR           float64         `json:"avg_ctr"`
}

// ChannelAggregate is the roll-up of every filtered record of one channel.
type ChannelAggregate struct {
	Channel     string          `json:"channel"`
	Spend       decimal.Decimal `json:"spend"`
	Conversions int64           `json:"conversions"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Records     int             `json:"records"`
}

type TopPerformer struct {
	ChannelAggregate
	CTR float64 `json:"ctr"`
}
