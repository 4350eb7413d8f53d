package port

import "github.com/dreschagin/perfci/internal/application/dto"

// NotificationService определяет интерфейс для отправки уведомлений (Port)
// Реализация будет в Infrastructure слое (WebSocket Hub)
type NotificationService interface {
	// Broadcast отправляет событие сборки всем подключенным клиентам
	Broadcast(event *dto.BuildEventDTO)

	// ClientCount возвращает количество подключенных клиентов
	ClientCount() int
}
