package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Count is an integer that the xeno-canto API serializes inconsistently:
// some deployments return counts as JSON numbers, others as strings
// ("numRecordings":"548"). Count accepts both.
type Count int

// UnmarshalJSON parses a count from either a JSON number or a numeric string.
func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Count(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count is neither number nor string: %s", data)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("unable to parse count: %q", s)
	}
	*c = Count(n)
	return nil
}

// Page represents one deserialized page of search results.
//
// The totals (NumRecordings, NumPages) are reported on every page; the
// client trusts the page-1 values as authoritative loop bounds.
type Page struct {
	NumRecordings Count       `json:"numRecordings"`
	NumSpecies    Count       `json:"numSpecies"`
	Page          Count       `json:"page"`
	NumPages      Count       `json:"numPages"`
	Recordings    []Recording `json:"recordings"`
}
