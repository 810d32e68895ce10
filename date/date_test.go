package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	// usually time.Time are not comparable (there is a pointer for the timezone)
	assert.Equal(t, d1.time(), d2.time())
	assert.True(t, d1 == d2)
}

func TestNewNormalizes(t *testing.T) {
	assert.Equal(t, New(2022, time.October, 1), New(2022, time.September, 31))
	assert.Equal(t, New(2024, time.February, 29), New(2024, time.March, 0))
}

func TestSub(t *testing.T) {
	testCases := []struct {
		name string
		d, x Date
		want int
	}{
		{"same day", New(2022, time.September, 1), New(2022, time.September, 1), 0},
		{"later day", New(2022, time.September, 10), New(2022, time.September, 1), 9},
		{"earlier day", New(2022, time.September, 1), New(2022, time.September, 10), -9},
		{"across a leap day", New(2024, time.March, 1), New(2024, time.February, 28), 2},
		{"across years", New(2001, time.January, 1), New(2000, time.January, 1), 366},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.d.Sub(tc.x))
			assert.Equal(t, tc.d, tc.x.Add(tc.want))
		})
	}
}

func TestParse(t *testing.T) {
	today := Today()
	testCases := []struct {
		in   string
		want Date
	}{
		{"2022-09-01", New(2022, time.September, 1)},
		{"2025-7-1", New(2025, time.July, 1)},
		{" 2022-09-01 ", New(2022, time.September, 1)},
		{"0d", today},
		{"-1d", today.Add(-1)},
		{"+2w", today.Add(14)},
		{"-1y", New(today.Year()-1, today.Month(), today.Day())},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Parse("yesterday")
	assert.Error(t, err)
}

func TestMinMax(t *testing.T) {
	a, b := New(2022, time.September, 1), New(2022, time.September, 2)
	assert.Equal(t, a, Min(a, b))
	assert.Equal(t, a, Min(b, a))
	assert.Equal(t, b, Max(a, b))
	assert.Equal(t, b, Max(b, a))
}

func TestJSON(t *testing.T) {
	d := New(2022, time.September, 1)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2022-09-01"`, string(data))

	var got Date
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, d, got)

	assert.Error(t, json.Unmarshal([]byte(`"-1d"`), &got), "relative dates are not allowed in data files")
}
