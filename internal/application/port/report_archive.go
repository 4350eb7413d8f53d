package port

import "context"

// ReportArchive определяет интерфейс для долговременного хранения сырых
// scoring-отчетов (Port)
type ReportArchive interface {
	// PutReport загружает отчет и возвращает URL для чтения
	PutReport(ctx context.Context, key string, body []byte) (string, error)
}
