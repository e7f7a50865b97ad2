package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/view"
)

const excerptRunes = 30

// renderCalendar печатает сетку месяца. Отметки: * — есть запись, + — сегодня.
func renderCalendar(w io.Writer, m *view.Model, current, today models.Day) {
	month := m.Calendar(current, today)

	title := view.MonthTitle(current)
	if m.PublicView() {
		title += "  [" + view.VisibilityLabel(true) + "]"
	}
	fmt.Fprintf(w, "%s\n", title)

	for _, l := range view.WeekdayLabels {
		fmt.Fprintf(w, " %s ", l)
	}
	fmt.Fprintln(w)

	for _, week := range month.Weeks {
		var b strings.Builder
		for _, c := range week {
			if !c.InMonth {
				b.WriteString("    ")
				continue
			}

			mark := " "
			switch {
			case c.HasEntry && c.IsToday:
				mark = "#"
			case c.HasEntry:
				mark = "*"
			case c.IsToday:
				mark = "+"
			}
			fmt.Fprintf(&b, "%3d%s", c.Day.Day, mark)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	fmt.Fprintln(w, "* 日記あり  + 今日  # 今日（日記あり）")
}

// renderList печатает записи месяца от новых к старым.
func renderList(w io.Writer, m *view.Model, current models.Day, loc *time.Location) {
	fmt.Fprintf(w, "%s\n", view.MonthTitle(current))

	entries := m.MonthEntries(current)
	if len(entries) == 0 {
		fmt.Fprintln(w, "この月には日記がありません")
		return
	}

	for _, e := range entries {
		d, _ := view.Normalize(e.Date, loc)
		fmt.Fprintf(w, "%s %s %s [%s]\n",
			view.FormatListDay(d), view.WeatherIcon(e.Weather), view.MoodIcon(e.Mood), view.VisibilityLabel(e.IsPublic))
		fmt.Fprintf(w, "  %s\n", view.Excerpt(strings.ReplaceAll(e.Content, "\n", " "), excerptRunes))
		if tags := hashTags(e.Tags); tags != "" {
			fmt.Fprintf(w, "  %s\n", tags)
		}
	}
}

// renderEntry печатает запись целиком.
func renderEntry(w io.Writer, e models.Entry, liked bool, loc *time.Location) {
	fmt.Fprintf(w, "%s  %s %s  [%s]  [%s]\n",
		view.FormatDay(e.Date, loc), view.WeatherIcon(e.Weather), view.MoodIcon(e.Mood),
		view.VisibilityLabel(e.IsPublic), view.LikeLabel(liked))
	fmt.Fprintln(w, strings.Repeat("-", 32))
	fmt.Fprintln(w, e.Content)

	if tags := hashTags(e.Tags); tags != "" {
		fmt.Fprintf(w, "\n%s\n", tags)
	}

	for i, img := range e.Images {
		fmt.Fprintf(w, "画像 %d: %s\n", i+1, img)
	}
}

func hashTags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, "#"+t)
	}

	return strings.Join(parts, " ")
}
