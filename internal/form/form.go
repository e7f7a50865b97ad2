// form управляет черновиком записи на странице создания/редактирования.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pribylovaa/go-diary/internal/client"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/pkg/log"
)

var (
	ErrBusy    = errors.New("form is not ready")
	ErrStale   = errors.New("stale result ignored")
	ErrClosed  = errors.New("form is closed")
	ErrWeather = errors.New("unknown weather")
	ErrMood    = errors.New("unknown mood")
)

// Repository — операции хранилища, нужные форме.
type Repository interface {
	ByDate(ctx context.Context, userID, date string) (*models.Entry, error)
	Create(ctx context.Context, userID string, entry models.Entry) (string, error)
	Update(ctx context.Context, userID, entryID string, patch models.EntryPatch) error
}

// State — состояние формы.
type State int

const (
	StateLoading State = iota
	StateIdle
	StateSaving
	StateDone
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateSaving:
		return "saving"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Draft — редактируемые поля. Tags хранится строкой в том виде,
// в котором её ввёл пользователь.
type Draft struct {
	Content  string
	Weather  models.Weather
	Mood     models.Mood
	Tags     string
	Images   []string
	IsPublic bool
}

// Result — куда перейти после сохранения.
type Result struct {
	EntryID string
	Path    string
}

// Option настраивает контроллер.
type Option func(*Controller)

// WithNotFound задаёт распознавание ответа «записи нет».
// По умолчанию — client.ErrNotFound.
func WithNotFound(fn func(error) bool) Option {
	return func(c *Controller) { c.notFound = fn }
}

// Controller — контроллер формы одной даты одного пользователя.
type Controller struct {
	repo     Repository
	userID   string
	day      models.Day
	notFound func(error) bool

	mu       sync.Mutex
	state    State
	draft    Draft
	existing *models.Entry
	err      error
	gen      uint64
	closed   bool
}

func New(repo Repository, userID string, day models.Day, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		userID:   userID,
		day:      day,
		notFound: func(err error) bool { return errors.Is(err, client.ErrNotFound) },
		state:    StateLoading,
		draft:    emptyDraft(),
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

func emptyDraft() Draft {
	return Draft{
		Weather: models.WeatherSunny,
		Mood:    models.MoodGood,
		Images:  []string{},
	}
}

// Load загружает запись за дату формы. Нет записи — форма создания.
// Результат, пришедший после нового Load или Close, отбрасывается с ErrStale.
func (c *Controller) Load(ctx context.Context) error {
	const op = "form.Load"

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if c.state == StateSaving {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrBusy)
	}
	c.gen++
	gen := c.gen
	c.state = StateLoading
	c.mu.Unlock()

	entry, err := c.repo.ByDate(ctx, c.userID, c.day.String())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		return fmt.Errorf("%s: %w", op, ErrStale)
	}

	c.state = StateIdle

	switch {
	case err == nil && entry != nil:
		c.existing = entry
		c.draft = draftOf(*entry)
		c.err = nil
		return nil
	case err == nil || c.notFound(err):
		c.existing = nil
		c.draft = emptyDraft()
		c.err = nil
		return nil
	default:
		log.From(ctx).Error("load entry failed", "op", op, "date", c.day.String(), "err", err)
		c.err = err
		return fmt.Errorf("%s: %w", op, err)
	}
}

func draftOf(e models.Entry) Draft {
	images := make([]string, len(e.Images))
	copy(images, e.Images)

	return Draft{
		Content:  e.Content,
		Weather:  e.Weather,
		Mood:     e.Mood,
		Tags:     strings.Join(e.Tags, ", "),
		Images:   images,
		IsPublic: e.IsPublic,
	}
}

// State возвращает текущее состояние.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft возвращает копию черновика.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.draft
	d.Images = append([]string(nil), c.draft.Images...)
	return d
}

// Existing сообщает, редактируется ли сохранённая запись.
func (c *Controller) Existing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.existing != nil
}

// Err — последняя ошибка загрузки или сохранения, показываемая пользователю.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Day — дата формы.
func (c *Controller) Day() models.Day { return c.day }

func (c *Controller) edit(fn func(d *Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft)
}

func (c *Controller) SetContent(s string) {
	c.edit(func(d *Draft) { d.Content = s })
}

func (c *Controller) SetWeather(w models.Weather) error {
	if w == "" || !w.Valid() {
		return fmt.Errorf("%w: %q", ErrWeather, w)
	}

	c.edit(func(d *Draft) { d.Weather = w })
	return nil
}

func (c *Controller) SetMood(m models.Mood) error {
	if m == "" || !m.Valid() {
		return fmt.Errorf("%w: %q", ErrMood, m)
	}

	c.edit(func(d *Draft) { d.Mood = m })
	return nil
}

func (c *Controller) SetTags(s string) {
	c.edit(func(d *Draft) { d.Tags = s })
}

func (c *Controller) SetPublic(v bool) {
	c.edit(func(d *Draft) { d.IsPublic = v })
}

// AddImages дописывает ссылки в конец списка; порядок не меняется.
func (c *Controller) AddImages(refs ...string) {
	c.edit(func(d *Draft) {
		for _, r := range refs {
			if r = strings.TrimSpace(r); r != "" {
				d.Images = append(d.Images, r)
			}
		}
	})
}

// ParseTags разбивает строку по "," и "、", обрезает пробелы и отбрасывает пустые.
func ParseTags(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '、' })

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Save сохраняет черновик: обновление загруженной записи или создание новой.
// При ошибке форма возвращается в idle, ошибка доступна через Err.
func (c *Controller) Save(ctx context.Context) (Result, error) {
	const op = "form.Save"

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result{}, fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if c.state != StateIdle {
		st := c.state
		c.mu.Unlock()
		return Result{}, fmt.Errorf("%s: %w (%s)", op, ErrBusy, st)
	}
	c.state = StateSaving
	c.gen++
	draft := c.draft
	draft.Images = append([]string{}, c.draft.Images...)
	existing := c.existing
	c.mu.Unlock()

	date := c.day.String()
	tags := ParseTags(draft.Tags)

	var (
		id  string
		err error
	)
	if existing != nil {
		id = existing.ID
		err = c.repo.Update(ctx, c.userID, existing.ID, models.EntryPatch{
			Content:  &draft.Content,
			Weather:  &draft.Weather,
			Mood:     &draft.Mood,
			Tags:     &tags,
			Images:   &draft.Images,
			IsPublic: &draft.IsPublic,
		})
	} else {
		id, err = c.repo.Create(ctx, c.userID, models.Entry{
			UserID:   c.userID,
			Date:     models.DateFromString(date),
			Content:  draft.Content,
			Images:   draft.Images,
			Tags:     tags,
			Weather:  draft.Weather,
			Mood:     draft.Mood,
			IsPublic: draft.IsPublic,
			IsLiked:  false,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		log.From(ctx).Error("save entry failed", "op", op, "date", date, "update", existing != nil, "err", err)
		if !c.closed {
			c.state = StateIdle
			c.err = err
		}
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	if !c.closed {
		c.state = StateDone
		c.err = nil
	}

	return Result{EntryID: id, Path: "/diary/" + date}, nil
}

// Close отключает контроллер: поздние результаты больше не меняют состояние.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
