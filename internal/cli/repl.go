package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface — команды, которые REPL вызывает у App; в тестах подменяется.
type execIface interface {
	signedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Calendar(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, arg string) error
	Like(ctx context.Context, arg string) error
	Edit(ctx context.Context, arg string) error
	TogglePublic(ctx context.Context) error
	Move(ctx context.Context, months int) error
	Today(ctx context.Context) error
	Reload(ctx context.Context) error
}

// runREPL читает команды построчно до exit/quit или EOF.
// Ошибки команд здесь не обрабатываются: команды сами сообщают о них.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "diary [%s]> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help", "h":
			if a.signedIn() {
				fmt.Fprintln(w, "コマンド: (c)alendar, (l)ist, show <日>, like [日], edit [日], public, next, prev, today, reload, logout, exit")
			} else {
				fmt.Fprintln(w, "コマンド: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "c", "cal", "calendar":
			_ = a.Calendar(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show", "open":
			_ = a.Show(ctx, arg)

		case "like":
			_ = a.Like(ctx, arg)

		case "edit", "new":
			_ = a.Edit(ctx, arg)

		case "public":
			_ = a.TogglePublic(ctx)

		case "next", "n":
			_ = a.Move(ctx, 1)

		case "prev", "p":
			_ = a.Move(ctx, -1)

		case "today":
			_ = a.Today(ctx)

		case "reload":
			_ = a.Reload(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "さようなら")
			return

		default:
			fmt.Fprintln(w, "不明なコマンド:", cmd)
		}

		if err != nil {
			return
		}
	}
}
