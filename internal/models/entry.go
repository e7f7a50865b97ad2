// Package models содержит доменные сущности дневника.
package models

import (
	"time"
)

// Weather — погода в записи.
type Weather string

const (
	WeatherSunny        Weather = "sunny"
	WeatherCloudy       Weather = "cloudy"
	WeatherRainy        Weather = "rainy"
	WeatherPartlyCloudy Weather = "partlyCloudy"
	WeatherSnowy        Weather = "snowy"
)

// Weathers — все значения в порядке показа в редакторе.
var Weathers = []Weather{WeatherSunny, WeatherPartlyCloudy, WeatherCloudy, WeatherRainy, WeatherSnowy}

// Valid сообщает, что значение известно. Пустое значение допустимо (не указано).
func (w Weather) Valid() bool {
	switch w {
	case "", WeatherSunny, WeatherCloudy, WeatherRainy, WeatherPartlyCloudy, WeatherSnowy:
		return true
	}

	return false
}

// Mood — настроение в записи.
type Mood string

const (
	MoodGood    Mood = "good"
	MoodNeutral Mood = "neutral"
	MoodBad     Mood = "bad"
)

// Moods — все значения в порядке показа.
var Moods = []Mood{MoodGood, MoodNeutral, MoodBad}

// Valid сообщает, что значение известно. Пустое значение допустимо.
func (m Mood) Valid() bool {
	switch m {
	case "", MoodGood, MoodNeutral, MoodBad:
		return true
	}

	return false
}

// Entry — запись дневника.
// Важно:
//   - ID — ObjectID хранилища в hex, присваивается при создании.
//   - UserID — владелец; все запросы к хранилищу ограничены им.
//   - Date — строка или метка времени, см. EntryDate.
//   - IsLiked живёт только на клиенте и никогда не сохраняется.
//   - CreatedAt проставляется хранилищем при создании.
type Entry struct {
	ID        string
	UserID    string
	Date      EntryDate
	Content   string
	Images    []string
	Tags      []string
	Weather   Weather
	Mood      Mood
	IsPublic  bool
	IsLiked   bool
	CreatedAt time.Time
}

// EntryPatch — частичное обновление: nil означает «не менять».
type EntryPatch struct {
	Date     *EntryDate
	Content  *string
	Images   *[]string
	Tags     *[]string
	Weather  *Weather
	Mood     *Mood
	IsPublic *bool
}

// IsEmpty сообщает, что в патче нет ни одного поля.
func (p EntryPatch) IsEmpty() bool {
	return p.Date == nil && p.Content == nil && p.Images == nil && p.Tags == nil &&
		p.Weather == nil && p.Mood == nil && p.IsPublic == nil
}

// Apply применяет патч к копии записи.
func (p EntryPatch) Apply(e Entry) Entry {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Images != nil {
		e.Images = append([]string(nil), (*p.Images)...)
	}
	if p.Tags != nil {
		e.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Weather != nil {
		e.Weather = *p.Weather
	}
	if p.Mood != nil {
		e.Mood = *p.Mood
	}
	if p.IsPublic != nil {
		e.IsPublic = *p.IsPublic
	}

	return e
}
