package middleware

import (
	"context"
	"net/http"
	"time"
)

// HeaderRequestTimeout — клиент может попросить дедлайн короче серверного
// (значение в формате time.ParseDuration, например "2s").
const HeaderRequestTimeout = "X-Request-Timeout"

// Timeout ограничивает обработку запроса сроком d. Действует самый ранний
// из дедлайнов: уже установленный в контексте, d и запрошенный клиентом.
// d <= 0 выключает мидлвар.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := d
			if v := r.Header.Get(HeaderRequestTimeout); v != "" {
				if asked, err := time.ParseDuration(v); err == nil && asked > 0 && asked < limit {
					limit = asked
				}
			}

			deadline := time.Now().Add(limit)
			if cur, ok := r.Context().Deadline(); ok && cur.Before(deadline) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithDeadline(r.Context(), deadline)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
