package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstant_DateOnly(t *testing.T) {
	got, ok := ParseInstant("2025-08-13")
	require.True(t, ok)

	assert.Equal(t, "2025-08-13", DateET(got))
	et := got.In(Eastern)
	assert.Equal(t, 0, et.Hour())
	assert.Equal(t, 0, et.Minute())
	assert.Equal(t, 0, et.Second())
}

func TestParseInstant_ZonedISO(t *testing.T) {
	got, ok := ParseInstant("2025-08-13T23:30:00Z")
	require.True(t, ok)

	// 23:30 UTC is 19:30 ET during DST.
	assert.Equal(t, "2025-08-13T19:30:00-04:00", InstantET(got))
	assert.Equal(t, "2025-08-13", DateET(got))
}

func TestParseInstant_NaiveAssumedUTC(t *testing.T) {
	got, ok := ParseInstant("2025-08-14T01:00:00")
	require.True(t, ok)

	// 01:00 UTC on the 14th is still the 13th in ET.
	assert.Equal(t, "2025-08-13", DateET(got))
}

func TestParseInstant_AlreadyET_NoOp(t *testing.T) {
	in := "2025-08-13T19:30:00-04:00"
	got, ok := ParseInstant(in)
	require.True(t, ok)
	assert.Equal(t, in, InstantET(got))
}

func TestParseInstant_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-a-date", "2025-13-45", "2025/08/13"} {
		_, ok := ParseInstant(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestRequiredInstant_ErrorNamesField(t *testing.T) {
	_, err := RequiredInstant("gameDate", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gameDate")
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"whole float", float64(3), int64(3)},
		{"negative int string", "-2", int64(-2)},
		{"int string", "17", int64(17)},
		{"nil stays nil", nil, nil},
		{"fractional float passes through", 0.312, 0.312},
		{"decimal string passes through", ".300", ".300"},
		{"innings string passes through", "5.2", "5.2"},
		{"bool passes through", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceInt(tt.in))
		})
	}
}

func TestAsInt(t *testing.T) {
	n, ok := AsInt("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = AsInt(".500")
	assert.False(t, ok)

	_, ok = AsInt(nil)
	assert.False(t, ok)
}

func TestDateET_CrossesMidnight(t *testing.T) {
	// 03:00 UTC is 23:00 ET the previous day.
	utc := time.Date(2025, 8, 14, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-08-13", DateET(utc))
}
