package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDay_Bounds(t *testing.T) {
	d := Day{Year: 2024, Month: time.February, Day: 14}

	require.Equal(t, Day{Year: 2024, Month: time.February, Day: 1}, d.StartOfMonth())
	require.Equal(t, Day{Year: 2024, Month: time.February, Day: 29}, d.EndOfMonth())
	require.Equal(t, time.Wednesday, d.Weekday())
	require.Equal(t, "2024-03-01", d.EndOfMonth().AddDays(1).String())
}

func TestDay_Compare(t *testing.T) {
	a := Day{Year: 2024, Month: time.May, Day: 1}
	b := Day{Year: 2024, Month: time.May, Day: 2}

	require.True(t, a.Before(b))
	require.True(t, b.After(a))
	require.Equal(t, 0, a.Compare(a))
	require.True(t, a.SameMonth(b))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-05-01")
	require.NoError(t, err)
	require.Equal(t, "2024-05-01", d.String())

	_, err = ParseDay("2024/05/01")
	require.Error(t, err)
}

func TestEntryPatch_Apply(t *testing.T) {
	base := Entry{
		Content:  "old",
		Tags:     []string{"trip"},
		Weather:  WeatherSunny,
		Mood:     MoodGood,
		Images:   []string{"a.png"},
		IsPublic: true,
	}

	content := "new"
	p := EntryPatch{Content: &content}
	require.False(t, p.IsEmpty())

	got := p.Apply(base)
	require.Equal(t, "new", got.Content)
	require.Equal(t, base.Tags, got.Tags)
	require.Equal(t, base.Weather, got.Weather)
	require.Equal(t, base.Mood, got.Mood)
	require.Equal(t, base.Images, got.Images)
	require.Equal(t, base.IsPublic, got.IsPublic)

	require.True(t, EntryPatch{}.IsEmpty())
}

func TestEnums_Valid(t *testing.T) {
	for _, w := range Weathers {
		require.True(t, w.Valid())
	}
	require.True(t, Weather("").Valid())
	require.False(t, Weather("stormy").Valid())

	for _, m := range Moods {
		require.True(t, m.Valid())
	}
	require.False(t, Mood("angry").Valid())
}

func TestProfileOf_DefaultUsername(t *testing.T) {
	now := time.Now()
	p := ProfileOf(User{UID: "u1", Email: "a@b.c"}, now)
	require.Equal(t, DefaultUsername, p.Username)

	p = ProfileOf(User{UID: "u1", DisplayName: "Ann"}, now)
	require.Equal(t, "Ann", p.Username)
}
