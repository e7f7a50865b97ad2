package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	apierrors "github.com/pribylovaa/go-diary/internal/transport/http/errors"
	logctx "github.com/pribylovaa/go-diary/pkg/log"
)

// Recover превращает panic обработчика в 500 с общим конвертом ошибки.
// Текст паники остаётся только в логе. http.ErrAbortHandler пробрасывается дальше.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logctx.From(r.Context()).Error("handler panic",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", RequestIDFrom(r.Context()),
					"reason", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
				apierrors.WriteError(w, r, fmt.Errorf("panic in %s %s", r.Method, r.URL.Path))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
