package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ISODuration renders a duration in ISO-8601 form (PT2.5S), millisecond
// precision. Exporters need durations that survive a round trip through
// text, which Go's nanosecond integers and unit suffixes do not guarantee
// across consumers.
func ISODuration(d time.Duration) string {
	secs := d.Round(time.Millisecond).Seconds()
	s := strconv.FormatFloat(secs, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return "PT" + s + "S"
}

// MarshalJSON renders Elapsed as an ISO-8601 duration
func (r EngineResult) MarshalJSON() ([]byte, error) {
	type alias EngineResult
	return json.Marshal(struct {
		alias
		Elapsed string `json:"elapsed"`
	}{alias: alias(r), Elapsed: ISODuration(r.Elapsed)})
}

// MarshalJSON renders Elapsed as an ISO-8601 duration
func (s BatchSummary) MarshalJSON() ([]byte, error) {
	type alias BatchSummary
	return json.Marshal(struct {
		alias
		Elapsed string `json:"elapsed"`
	}{alias: alias(s), Elapsed: ISODuration(s.Elapsed)})
}
