package view

import (
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
)

// WeekdayLabels — заголовки столбцов календаря, неделя с воскресенья.
var WeekdayLabels = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// Cell — день в сетке календаря.
type Cell struct {
	Day      models.Day
	Weekday  time.Weekday
	InMonth  bool
	IsToday  bool
	HasEntry bool
}

// Month — сетка месяца: целые недели с воскресенья по субботу.
type Month struct {
	Current models.Day
	Weeks   [][7]Cell
}

// Calendar строит сетку месяца current. Дни соседних месяцев дополняют
// первую и последнюю неделю и помечаются InMonth=false.
func (m *Model) Calendar(current, today models.Day) Month {
	first := current.StartOfMonth()
	last := current.EndOfMonth()

	start := first.AddDays(-int(first.Weekday()))
	end := last.AddDays(6 - int(last.Weekday()))

	out := Month{Current: current}

	var week [7]Cell
	for d := start; !d.After(end); d = d.AddDays(1) {
		wd := d.Weekday()
		week[wd] = Cell{
			Day:      d,
			Weekday:  wd,
			InMonth:  d.SameMonth(current),
			IsToday:  d == today,
			HasEntry: m.HasEntry(d),
		}

		if wd == time.Saturday {
			out.Weeks = append(out.Weeks, week)
			week = [7]Cell{}
		}
	}

	return out
}
