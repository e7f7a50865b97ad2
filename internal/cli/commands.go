package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/go-diary/internal/client"
	"github.com/pribylovaa/go-diary/internal/form"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/view"
	"github.com/pribylovaa/go-diary/pkg/log"
)

// Register создаёт учётную запись и открывает сессию.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.in, "メールアドレス", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "パスワードを読み取れませんでした: %v\n", err)
		return err
	}
	defer wipe(pw)

	name, err := GetSimpleText(a.in, "表示名（省略可）", a.out)
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, email, string(pw), name)
	if err != nil {
		fmt.Fprintf(a.out, "登録に失敗しました: %v\n", describe(err))
		return err
	}

	fmt.Fprintf(a.out, "登録しました: %s\n", u.Email)
	return a.Calendar(ctx)
}

// Login открывает сессию по email и паролю.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.in, "メールアドレス", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "パスワードを読み取れませんでした: %v\n", err)
		return err
	}
	defer wipe(pw)

	u, err := a.api.Login(ctx, email, string(pw))
	if err != nil {
		fmt.Fprintf(a.out, "ログインに失敗しました: %v\n", describe(err))
		return err
	}

	fmt.Fprintf(a.out, "ようこそ、%s さん\n", u.Email)
	return a.Calendar(ctx)
}

// Logout завершает сессию; локальное состояние очищается в любом случае.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.invalidate()

	if err != nil {
		log.From(ctx).Warn("logout failed", "err", err)
		fmt.Fprintf(a.out, "サーバーでのログアウトに失敗しました: %v\n", describe(err))
	}

	fmt.Fprintln(a.out, "ログアウトしました")
	return err
}

// Calendar печатает календарь текущего месяца.
func (a *App) Calendar(ctx context.Context) error {
	m, err := a.entries(ctx)
	if err != nil {
		return err
	}

	renderCalendar(a.out, m, a.month(), a.today())
	return nil
}

// List печатает записи текущего месяца.
func (a *App) List(ctx context.Context) error {
	m, err := a.entries(ctx)
	if err != nil {
		return err
	}

	renderList(a.out, m, a.month(), a.loc)
	return nil
}

// Show печатает запись за день; если её нет, предлагает создать.
func (a *App) Show(ctx context.Context, arg string) error {
	day, err := a.parseDay(arg)
	if err != nil {
		fmt.Fprintf(a.out, "日付を解釈できません: %q\n", arg)
		return err
	}

	m, err := a.entries(ctx)
	if err != nil {
		return err
	}

	// Детальная страница не зависит от фильтра публичности.
	e, ok := m.WithPublicView(false).FindByDay(day)
	if !ok {
		fmt.Fprintf(a.out, "%s の日記はありません\n", view.FormatDay(models.DateFromDay(day), a.loc))
		if confirm(a.in, "作成しますか？", a.out) {
			return a.Edit(ctx, day.String())
		}
		return nil
	}

	renderEntry(a.out, e, a.isLiked(e), a.loc)
	return nil
}

// Like переключает отметку "いいね" у записи за день. Отметка живёт только
// в этом клиенте: запись на сервере не меняется.
func (a *App) Like(ctx context.Context, arg string) error {
	day, err := a.parseDay(arg)
	if err != nil {
		fmt.Fprintf(a.out, "日付を解釈できません: %q\n", arg)
		return err
	}

	m, err := a.entries(ctx)
	if err != nil {
		return err
	}

	e, ok := m.WithPublicView(false).FindByDay(day)
	if !ok {
		fmt.Fprintf(a.out, "%s の日記はありません\n", view.FormatDay(models.DateFromDay(day), a.loc))
		return nil
	}

	liked := !a.isLiked(e)
	a.mu.Lock()
	a.liked[e.ID] = liked
	a.mu.Unlock()

	fmt.Fprintf(a.out, "%s: %s\n", view.FormatDay(e.Date, a.loc), view.LikeLabel(liked))
	return nil
}

func (a *App) isLiked(e models.Entry) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if v, ok := a.liked[e.ID]; ok {
		return v
	}
	return e.IsLiked
}

// Edit открывает форму записи за день (по умолчанию сегодня).
func (a *App) Edit(ctx context.Context, arg string) error {
	uid, err := a.uid()
	if err != nil {
		return err
	}

	day := a.today()
	if arg != "" {
		if day, err = a.parseDay(arg); err != nil {
			fmt.Fprintf(a.out, "日付を解釈できません: %q\n", arg)
			return err
		}
	}

	fc := form.New(a.api, uid, day)
	defer fc.Close()

	if err := fc.Load(ctx); err != nil && !errors.Is(err, form.ErrStale) {
		fmt.Fprintf(a.out, "既存の日記を読み込めませんでした: %v\n", describe(err))
	}

	title := "新規作成"
	if fc.Existing() {
		title = "編集"
	}
	fmt.Fprintf(a.out, "%s: %s\n", title, view.FormatDay(models.DateFromDay(day), a.loc))

	if err := a.fill(ctx, fc, uid); err != nil {
		return err
	}

	for {
		res, err := fc.Save(ctx)
		if err == nil {
			a.invalidate()
			fmt.Fprintf(a.out, "保存しました (%s)\n", res.Path)
			return a.Show(ctx, day.String())
		}

		fmt.Fprintf(a.out, "保存に失敗しました: %v\n", describe(fc.Err()))
		if !confirm(a.in, "もう一度保存しますか？", a.out) {
			return err
		}
	}
}

// fill проводит пользователя по полям формы. Пустой ввод сохраняет текущее значение.
func (a *App) fill(ctx context.Context, fc *form.Controller, uid string) error {
	d := fc.Draft()

	if d.Content != "" {
		fmt.Fprintf(a.out, "現在の本文:\n%s\n", d.Content)
	}
	content, err := GetMultiline(a.in, "本文（何も入力しなければ変更なし）", a.out)
	if err != nil {
		return err
	}
	if content != "" {
		fc.SetContent(content)
	}

	for {
		w, err := GetSimpleText(a.in, fmt.Sprintf("天気 %s（現在: %s）", weatherChoices(), d.Weather), a.out)
		if err != nil {
			return err
		}
		if w == "" {
			break
		}
		if err := fc.SetWeather(models.Weather(w)); err != nil {
			fmt.Fprintln(a.out, "不明な天気です")
			continue
		}
		break
	}

	for {
		m, err := GetSimpleText(a.in, fmt.Sprintf("気分 %s（現在: %s）", moodChoices(), d.Mood), a.out)
		if err != nil {
			return err
		}
		if m == "" {
			break
		}
		if err := fc.SetMood(models.Mood(m)); err != nil {
			fmt.Fprintln(a.out, "不明な気分です")
			continue
		}
		break
	}

	tags, err := GetSimpleText(a.in, fmt.Sprintf("タグ（, または 、 区切り。- で削除）（現在: %s）", d.Tags), a.out)
	if err != nil {
		return err
	}
	switch tags {
	case "":
	case "-":
		fc.SetTags("")
	default:
		fc.SetTags(tags)
	}

	refs, err := GetSimpleText(a.in, "画像を追加（ファイルパスまたは URL、, 区切り）", a.out)
	if err != nil {
		return err
	}
	for _, ref := range strings.Split(refs, ",") {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}

		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			fc.AddImages(ref)
			continue
		}

		url, err := a.upload(ctx, uid, ref)
		if err != nil {
			fmt.Fprintf(a.out, "画像 %s をアップロードできませんでした: %v\n", ref, describe(err))
			continue
		}
		fc.AddImages(url)
	}

	pub, err := GetSimpleText(a.in, fmt.Sprintf("公開しますか？ [y/n]（現在: %s）", view.VisibilityLabel(d.IsPublic)), a.out)
	if err != nil {
		return err
	}
	switch strings.ToLower(pub) {
	case "y", "yes":
		fc.SetPublic(true)
	case "n", "no":
		fc.SetPublic(false)
	}

	return nil
}

// upload загружает локальный файл в хранилище изображений.
func (a *App) upload(ctx context.Context, uid, path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return a.api.UploadImage(ctx, uid, http.DetectContentType(head[:n]), st.Size(), f)
}

// TogglePublic переключает показ только публичных записей.
func (a *App) TogglePublic(ctx context.Context) error {
	a.mu.Lock()
	a.public = !a.public
	public := a.public
	a.mu.Unlock()

	if public {
		fmt.Fprintln(a.out, "公開中の日記のみ表示します")
	} else {
		fmt.Fprintln(a.out, "すべての日記を表示します")
	}

	return a.Calendar(ctx)
}

// Move сдвигает текущий месяц на months.
func (a *App) Move(ctx context.Context, months int) error {
	a.mu.Lock()
	first := a.current.StartOfMonth().Time(time.UTC)
	a.current = models.DayOf(first.AddDate(0, months, 0))
	a.mu.Unlock()

	return a.Calendar(ctx)
}

// Today возвращает календарь к текущему месяцу.
func (a *App) Today(ctx context.Context) error {
	a.mu.Lock()
	a.current = a.today()
	a.mu.Unlock()

	return a.Calendar(ctx)
}

// Reload перечитывает записи с сервера.
func (a *App) Reload(ctx context.Context) error {
	a.invalidate()
	return a.Calendar(ctx)
}

// parseDay понимает "YYYY-MM-DD" и номер дня текущего месяца; пусто — сегодня.
func (a *App) parseDay(arg string) (models.Day, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return a.today(), nil
	}

	if n, err := strconv.Atoi(arg); err == nil {
		cur := a.month()
		if n < 1 || n > cur.EndOfMonth().Day {
			return models.Day{}, fmt.Errorf("day %d out of month", n)
		}
		return models.Day{Year: cur.Year, Month: cur.Month, Day: n}, nil
	}

	return models.ParseDay(arg)
}

// describe переводит ошибки клиента в понятный текст.
func describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, client.ErrUnavailable):
		return "サーバーに接続できません"
	case errors.Is(err, client.ErrUnauthorized):
		return "認証に失敗しました"
	case errors.Is(err, client.ErrForbidden):
		return "権限がありません"
	case errors.Is(err, client.ErrConflict):
		return "既に登録されています"
	case errors.Is(err, client.ErrInvalidArgument):
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "入力が正しくありません: " + apiErr.Message
		}
		return "入力が正しくありません"
	default:
		return err.Error()
	}
}

func weatherChoices() string {
	parts := make([]string, 0, len(models.Weathers))
	for _, w := range models.Weathers {
		parts = append(parts, view.WeatherIcon(w)+string(w))
	}
	return "[" + strings.Join(parts, " / ") + "]"
}

func moodChoices() string {
	parts := make([]string, 0, len(models.Moods))
	for _, m := range models.Moods {
		parts = append(parts, view.MoodIcon(m)+string(m))
	}
	return "[" + strings.Join(parts, " / ") + "]"
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
