package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-01-02 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2024/01/02", "2024-13-01", "tomorrow"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrMalformedInput, bad)
	}
}

func TestParseClock(t *testing.T) {
	valid := map[string]string{
		"9:00":  "09:00",
		"09:00": "09:00",
		"0:5":   "00:05",
		"23:59": "23:59",
	}
	for in, want := range valid {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "9", "9:00:00", "24:00", "12:60", "-1:00", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrMalformedInput, bad)
	}
}

func TestDateOf(t *testing.T) {
	local := time.FixedZone("UTC+5", 5*3600)
	got := DateOf(time.Date(2024, 3, 10, 23, 0, 0, 0, local))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestConflictKindString(t *testing.T) {
	assert.Equal(t, "none", ConflictNone.String())
	assert.Equal(t, "doctor_slot", ConflictDoctorSlot.String())
	assert.Equal(t, "patient_own", ConflictPatientOwn.String())
	assert.Equal(t, "overlap", ConflictOverlap.String())
}
