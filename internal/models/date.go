package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// DateKind — представление даты записи.
type DateKind uint8

const (
	// DateUnknown — дата отсутствует или не распознана.
	DateUnknown DateKind = iota
	// DateString — календарная дата строкой (2006-01-02).
	DateString
	// DateTimestamp — структура {_seconds, _nanoseconds}.
	DateTimestamp
)

// Timestamp — нативная метка времени документного хранилища.
type Timestamp struct {
	Seconds     int64 `json:"_seconds"`
	Nanoseconds int64 `json:"_nanoseconds"`
}

// Time возвращает момент времени в UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, t.Nanoseconds).UTC()
}

// EntryDate — дата записи: строка или метка времени.
// Оба представления живут в одном поле; наружу отдаётся то, что было сохранено.
// Нулевое значение — DateUnknown.
type EntryDate struct {
	kind DateKind
	str  string
	ts   Timestamp
}

// DateFromString создаёт строковую дату. Содержимое не валидируется:
// хранилище сравнивает строки как есть.
func DateFromString(s string) EntryDate {
	return EntryDate{kind: DateString, str: s}
}

// DateFromDay создаёт строковую дату из календарного дня.
func DateFromDay(d Day) EntryDate {
	return DateFromString(d.String())
}

// DateFromTime создаёт дату-метку времени.
func DateFromTime(t time.Time) EntryDate {
	return EntryDate{kind: DateTimestamp, ts: Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}}
}

// Kind возвращает представление.
func (d EntryDate) Kind() DateKind { return d.kind }

// IsZero сообщает, что дата не задана.
func (d EntryDate) IsZero() bool { return d.kind == DateUnknown }

// Text возвращает строковое значение, если дата хранится строкой.
func (d EntryDate) Text() (string, bool) {
	return d.str, d.kind == DateString
}

// Stamp возвращает метку времени, если дата хранится меткой.
func (d EntryDate) Stamp() (Timestamp, bool) {
	return d.ts, d.kind == DateTimestamp
}

// Day сводит оба представления к календарному дню.
// Для метки времени день считается в локации loc (nil -> UTC).
// Строка принимается только целиком: 2006-01-02 или RFC3339; для RFC3339
// берётся день в записанном смещении.
func (d EntryDate) Day(loc *time.Location) (Day, bool) {
	switch d.kind {
	case DateString:
		if day, err := ParseDay(d.str); err == nil {
			return day, true
		}

		t, err := time.Parse(time.RFC3339, d.str)
		if err != nil {
			return Day{}, false
		}

		return DayOf(t), true
	case DateTimestamp:
		if loc == nil {
			loc = time.UTC
		}

		return DayOf(d.ts.Time().In(loc)), true
	default:
		return Day{}, false
	}
}

// String нужен для логов.
func (d EntryDate) String() string {
	switch d.kind {
	case DateString:
		return d.str
	case DateTimestamp:
		return fmt.Sprintf("{_seconds:%d}", d.ts.Seconds)
	default:
		return "<unknown>"
	}
}

// MarshalJSON: строка -> "2024-05-01", метка -> {"_seconds":..,"_nanoseconds":..}, иначе null.
func (d EntryDate) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case DateString:
		return json.Marshal(d.str)
	case DateTimestamp:
		return json.Marshal(d.ts)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON принимает строку, объект с _seconds или null.
// Объект без _seconds и прочие типы дают DateUnknown без ошибки:
// такая запись отображается как «дата неизвестна».
func (d *EntryDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*d = EntryDate{}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*d = DateFromString(s)
	case '{':
		var raw struct {
			Seconds     *int64 `json:"_seconds"`
			Nanoseconds int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}

		if raw.Seconds != nil {
			d.kind = DateTimestamp
			d.ts = Timestamp{Seconds: *raw.Seconds, Nanoseconds: raw.Nanoseconds}
		}
	}

	return nil
}

// MarshalBSONValue: строка -> BSON string, метка -> BSON datetime, иначе null.
// BSON datetime никогда не равен строковому фильтру, поэтому запрос по строковой дате
// такие записи не находит.
func (d EntryDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch d.kind {
	case DateString:
		return bsontype.String, bsoncore.AppendString(nil, d.str), nil
	case DateTimestamp:
		return bsontype.DateTime, bsoncore.AppendDateTime(nil, d.ts.Time().UnixMilli()), nil
	default:
		return bsontype.Null, nil, nil
	}
}

// UnmarshalBSONValue понимает string, datetime, BSON timestamp и
// вложенный документ {_seconds, _nanoseconds} (импорт из старого хранилища).
func (d *EntryDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*d = EntryDate{}
	v := bsoncore.Value{Type: t, Data: data}

	switch t {
	case bsontype.String:
		s, ok := v.StringValueOK()
		if !ok {
			return fmt.Errorf("entry date: malformed string")
		}

		*d = DateFromString(s)
	case bsontype.DateTime:
		ms, ok := v.DateTimeOK()
		if !ok {
			return fmt.Errorf("entry date: malformed datetime")
		}

		*d = DateFromTime(time.UnixMilli(ms))
	case bsontype.Timestamp:
		sec, _, ok := v.TimestampOK()
		if !ok {
			return fmt.Errorf("entry date: malformed timestamp")
		}

		*d = DateFromTime(time.Unix(int64(sec), 0))
	case bsontype.EmbeddedDocument:
		doc, ok := v.DocumentOK()
		if !ok {
			return fmt.Errorf("entry date: malformed document")
		}

		secVal, err := doc.LookupErr("_seconds")
		if err != nil {
			return nil
		}

		sec, ok := secVal.AsInt64OK()
		if !ok {
			return nil
		}

		var nanos int64
		if nv, err := doc.LookupErr("_nanoseconds"); err == nil {
			nanos, _ = nv.AsInt64OK()
		}

		d.kind = DateTimestamp
		d.ts = Timestamp{Seconds: sec, Nanoseconds: nanos}
	}

	return nil
}
