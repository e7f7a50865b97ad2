package view

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/pribylovaa/go-diary/internal/models"
)

// UnknownDate — подпись для записи без распознаваемой даты.
const UnknownDate = "日付不明"

// FormatDay — заголовок страницы записи: "2006年01月02日".
func FormatDay(d models.EntryDate, loc *time.Location) string {
	day, ok := d.Day(loc)
	if !ok {
		return UnknownDate
	}

	return fmt.Sprintf("%04d年%02d月%02d日", day.Year, int(day.Month), day.Day)
}

// FormatListDay — дата в списке: "2024年5月1日（水）".
func FormatListDay(day models.Day) string {
	return fmt.Sprintf("%d年%d月%d日（%s）", day.Year, int(day.Month), day.Day, WeekdayLabels[day.Weekday()])
}

// MonthTitle — заголовок месяца: "5月 2024".
func MonthTitle(day models.Day) string {
	return fmt.Sprintf("%d月 %d", int(day.Month), day.Year)
}

// Excerpt обрезает текст до n рун и добавляет многоточие.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	r := []rune(s)
	return string(r[:n]) + "..."
}

// WeatherIcon — значок погоды; незаполненное значение — пустая строка.
func WeatherIcon(w models.Weather) string {
	switch w {
	case models.WeatherSunny:
		return "☀️"
	case models.WeatherPartlyCloudy:
		return "⛅"
	case models.WeatherCloudy:
		return "☁️"
	case models.WeatherRainy:
		return "🌧️"
	case models.WeatherSnowy:
		return "❄️"
	default:
		return ""
	}
}

// MoodIcon — значок настроения.
func MoodIcon(m models.Mood) string {
	switch m {
	case models.MoodGood:
		return "😊"
	case models.MoodNeutral:
		return "😐"
	case models.MoodBad:
		return "😞"
	default:
		return ""
	}
}

// LikeLabel — подпись кнопки отметки: "いいね" или "いいね済み".
func LikeLabel(liked bool) string {
	if liked {
		return "いいね済み"
	}
	return "いいね"
}

// VisibilityLabel — "公開" или "非公開".
func VisibilityLabel(public bool) string {
	if public {
		return "公開"
	}
	return "非公開"
}
