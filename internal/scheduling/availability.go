package scheduling

import (
	"encoding/json"
	"fmt"
	"time"
)

// AvailabilityDays is the length of the rolling availability window.
const AvailabilityDays = 7

// DaySlots holds the free-text morning and evening labels of one day. An
// empty label means the doctor is unavailable for that half of the day.
type DaySlots struct {
	Morning string `json:"morning"`
	Evening string `json:"evening"`
}

// Availability maps day_1..day_7 to the labels of that day. day_N is
// relative to the day the pattern is read, not a calendar weekday.
type Availability map[string]DaySlots

// DayKey returns the availability key for day i (1-based).
func DayKey(i int) string {
	return fmt.Sprintf("day_%d", i)
}

// DayKeys returns day_1..day_7 in order.
func DayKeys() []string {
	keys := make([]string, AvailabilityDays)
	for i := range keys {
		keys[i] = DayKey(i + 1)
	}
	return keys
}

// NormalizeAvailability returns a pattern with exactly the keys
// day_1..day_7. Missing days become empty labels; other keys are dropped.
func NormalizeAvailability(in Availability) Availability {
	out := make(Availability, AvailabilityDays)
	for _, key := range DayKeys() {
		out[key] = in[key]
	}
	return out
}

// EncodeAvailability serializes a normalized copy of the pattern.
func EncodeAvailability(a Availability) ([]byte, error) {
	return json.Marshal(NormalizeAvailability(a))
}

// DecodeAvailability never fails: absent or undecodable data yields an
// empty pattern.
func DecodeAvailability(raw []byte) Availability {
	if len(raw) == 0 {
		return Availability{}
	}
	var a Availability
	if err := json.Unmarshal(raw, &a); err != nil || a == nil {
		return Availability{}
	}
	return a
}

// Next7Days labels day_1..day_7 with calendar dates starting at today.
func Next7Days(today time.Time) []string {
	start := DateOf(today)
	days := make([]string, AvailabilityDays)
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format(DateLayout)
	}
	return days
}
