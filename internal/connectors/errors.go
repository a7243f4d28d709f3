package connectors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated — нет ключа API. Возвращается до любого сетевого вызова, не ретраится.
	ErrUnauthenticated = errors.New("API Key not provided in URL. Please add '?apiKey=YOUR_KEY' to the URL")
	// ErrBlocked — в ответе нет candidates/content (например, сработал safety-фильтр).
	ErrBlocked = errors.New("AI response was blocked or invalid")
	// ErrCancelled — вызов прерван отменой контекста. Вызывающий не должен ретраить.
	ErrCancelled = errors.New("request cancelled")
)

// HTTPError описывает ответ с не-2xx статусом. Message берется из тела, если оно разбирается.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d - %s", e.Status, e.Message)
}

// IsRetryable отвечает, можно ли повторить вызов после этой ошибки.
// Отмена и отсутствие ключа терминальны, остальное (HTTP, Blocked, сеть, CB) повторяется.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrCancelled) && !errors.Is(err, ErrUnauthenticated)
}
