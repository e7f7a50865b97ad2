package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEntryDate_JSON_String(t *testing.T) {
	var d EntryDate
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-01"`), &d))
	require.Equal(t, DateString, d.Kind())

	s, ok := d.Text()
	require.True(t, ok)
	require.Equal(t, "2024-05-01", s)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `"2024-05-01"`, string(out))
}

func TestEntryDate_JSON_Timestamp(t *testing.T) {
	var d EntryDate
	require.NoError(t, json.Unmarshal([]byte(`{"_seconds":1714521600,"_nanoseconds":5}`), &d))
	require.Equal(t, DateTimestamp, d.Kind())

	ts, ok := d.Stamp()
	require.True(t, ok)
	require.Equal(t, int64(1714521600), ts.Seconds)
	require.Equal(t, int64(5), ts.Nanoseconds)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `{"_seconds":1714521600,"_nanoseconds":5}`, string(out))
}

func TestEntryDate_JSON_Unknown(t *testing.T) {
	for _, in := range []string{`null`, `{}`, `{"seconds":1}`, `42`, `true`} {
		var d EntryDate
		require.NoError(t, json.Unmarshal([]byte(in), &d), in)
		require.True(t, d.IsZero(), in)
	}

	out, err := json.Marshal(EntryDate{})
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}

// Одна и та же дата в двух представлениях сводится к одному дню.
func TestEntryDate_Day_BothFormsAgree(t *testing.T) {
	instant := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	byString, ok := DateFromString("2024-05-01").Day(time.UTC)
	require.True(t, ok)

	byStamp, ok := DateFromTime(instant).Day(time.UTC)
	require.True(t, ok)

	require.Equal(t, byString, byStamp)
	require.Equal(t, Day{Year: 2024, Month: time.May, Day: 1}, byString)
}

func TestEntryDate_Day_LocationMatters(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2024, time.April, 30, 20, 0, 0, 0, time.UTC)

	day, ok := DateFromTime(instant).Day(tokyo)
	require.True(t, ok)
	require.Equal(t, "2024-05-01", day.String())

	day, ok = DateFromTime(instant).Day(nil)
	require.True(t, ok)
	require.Equal(t, "2024-04-30", day.String())
}

func TestEntryDate_Day_Invalid(t *testing.T) {
	_, ok := DateFromString("yesterday").Day(time.UTC)
	require.False(t, ok)

	_, ok = EntryDate{}.Day(time.UTC)
	require.False(t, ok)

	for _, bad := range []string{"2024-05-01junk", "2024-05-01 ", " 2024-05-01", "2024-05-01T99:99", "2024-05-01T10:00:00", "2024-13-01"} {
		_, ok = DateFromString(bad).Day(time.UTC)
		require.False(t, ok, bad)
	}

	day, ok := DateFromString("2024-05-01T10:00:00Z").Day(time.UTC)
	require.True(t, ok)
	require.Equal(t, "2024-05-01", day.String())

	// День берётся в записанном смещении, а не в loc.
	day, ok = DateFromString("2024-05-01T23:30:00+09:00").Day(time.UTC)
	require.True(t, ok)
	require.Equal(t, "2024-05-01", day.String())
}

func TestEntryDate_BSON_RoundTrip(t *testing.T) {
	type doc struct {
		Date EntryDate `bson:"date"`
	}

	instant := time.Date(2024, time.May, 1, 12, 30, 0, 0, time.UTC)

	for name, in := range map[string]EntryDate{
		"string":    DateFromString("2024-05-01"),
		"timestamp": DateFromTime(instant),
		"unknown":   {},
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := bson.Marshal(doc{Date: in})
			require.NoError(t, err)

			var out doc
			require.NoError(t, bson.Unmarshal(raw, &out))
			require.Equal(t, in.Kind(), out.Date.Kind())

			inDay, inOK := in.Day(time.UTC)
			outDay, outOK := out.Date.Day(time.UTC)
			require.Equal(t, inOK, outOK)
			require.Equal(t, inDay, outDay)
		})
	}
}

func TestEntryDate_BSON_EmbeddedSeconds(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "date", Value: bson.D{
		{Key: "_seconds", Value: int64(1714521600)},
		{Key: "_nanoseconds", Value: int32(0)},
	}}})
	require.NoError(t, err)

	var out struct {
		Date EntryDate `bson:"date"`
	}
	require.NoError(t, bson.Unmarshal(raw, &out))
	require.Equal(t, DateTimestamp, out.Date.Kind())

	day, ok := out.Date.Day(time.UTC)
	require.True(t, ok)
	require.Equal(t, "2024-05-01", day.String())
}
