package port

import "context"

// ScoringClient определяет интерфейс внешнего scoring-сервиса (Port)
// Реализация будет в Infrastructure слое
type ScoringClient interface {
	// RunUntilSuccess возвращает сериализованный отчет для URL.
	// Retry/polling — ответственность самой реализации (или внешнего
	// runner-сервиса); ошибка означает, что её бюджет исчерпан
	RunUntilSuccess(ctx context.Context, url string) (string, error)
}
