package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword — точка подмены term.ReadPassword в тестах.
var readPassword = term.ReadPassword

// GetSimpleText печатает подсказку и читает одну строку без перевода строки.
// Если EOF пришёл после части строки, возвращается эта часть.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// GetPassword читает пароль с терминала без эха.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "パスワード: "); err != nil {
		return nil, err
	}

	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}

	return pw, nil
}

// GetMultiline читает строки до первой пустой и склеивает их через '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(空行で終了)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
			break
		}

		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// confirm задаёт вопрос да/нет; всё, кроме y/yes/はい, считается отказом.
func confirm(reader *bufio.Reader, prompt string, w io.Writer) bool {
	ans, err := GetSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		return false
	}

	switch strings.ToLower(ans) {
	case "y", "yes", "はい":
		return true
	default:
		return false
	}
}
