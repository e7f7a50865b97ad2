// view выводит календарь и список записей из загруженного набора.
//
// Все функции чистые: результат зависит только от записей, текущего дня,
// часового пояса и переключателя публичного режима. Переключатель только
// фильтрует отображение и не является границей доступа: загружаются
// всегда записи одного владельца.
package view

import (
	"sort"
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
)

// Model — производные представления над загруженными записями.
type Model struct {
	entries []placed
	loc     *time.Location
	public  bool
}

// placed — запись с уже нормализованной датой.
type placed struct {
	entry models.Entry
	day   models.Day
	ok    bool
}

// New нормализует даты записей один раз. loc == nil — UTC.
func New(entries []models.Entry, loc *time.Location) *Model {
	if loc == nil {
		loc = time.UTC
	}

	m := &Model{
		entries: make([]placed, 0, len(entries)),
		loc:     loc,
	}

	for _, e := range entries {
		d, ok := Normalize(e.Date, loc)
		m.entries = append(m.entries, placed{entry: e, day: d, ok: ok})
	}

	return m
}

// WithPublicView возвращает копию модели с переключателем публичного режима.
func (m *Model) WithPublicView(public bool) *Model {
	cp := *m
	cp.public = public
	return &cp
}

// PublicView сообщает, включён ли публичный режим.
func (m *Model) PublicView() bool { return m.public }

// Len — число загруженных записей.
func (m *Model) Len() int { return len(m.entries) }

// Normalize сводит дату записи к календарному дню в loc.
func Normalize(d models.EntryDate, loc *time.Location) (models.Day, bool) {
	return d.Day(loc)
}

func (m *Model) visible(p placed) bool {
	return p.ok && (!m.public || p.entry.IsPublic)
}

// HasEntry сообщает, есть ли видимая запись за день.
func (m *Model) HasEntry(day models.Day) bool {
	for _, p := range m.entries {
		if m.visible(p) && p.day == day {
			return true
		}
	}

	return false
}

// FindByDay возвращает первую видимую запись за день в порядке загрузки.
func (m *Model) FindByDay(day models.Day) (models.Entry, bool) {
	for _, p := range m.entries {
		if m.visible(p) && p.day == day {
			return p.entry, true
		}
	}

	return models.Entry{}, false
}

// MonthEntries — видимые записи месяца current, от новых к старым.
// Записи одного дня остаются в порядке загрузки.
func (m *Model) MonthEntries(current models.Day) []models.Entry {
	from, to := current.StartOfMonth(), current.EndOfMonth()

	picked := make([]placed, 0)
	for _, p := range m.entries {
		if !m.visible(p) || p.day.Before(from) || p.day.After(to) {
			continue
		}
		picked = append(picked, p)
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].day.After(picked[j].day)
	})

	out := make([]models.Entry, 0, len(picked))
	for _, p := range picked {
		out = append(out, p.entry)
	}

	return out
}

// Unplaced — записи без распознаваемой даты; в календарь и список не попадают.
func (m *Model) Unplaced() []models.Entry {
	var out []models.Entry
	for _, p := range m.entries {
		if !p.ok {
			out = append(out, p.entry)
		}
	}

	return out
}
