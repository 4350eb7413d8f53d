package dto

// SiteConfigDTO представляет конфигурацию сайта для автосбора.
// Приходит из файла конфигурации или из HTTP trigger-запроса
type SiteConfigDTO struct {
	// Название сайта для логов и статуса (опционально)
	Name string `json:"name,omitempty"`

	// Build token проекта, к которому относится сайт
	BuildToken string `json:"buildToken"`

	// Упорядоченный список URL для измерения (обязателен)
	URLs []string `json:"urls"`

	// Ветка сборки; по умолчанию базовая ветка проекта
	Branch string `json:"branch,omitempty"`

	// Количество повторов на каждый URL; по умолчанию 3
	NumberOfRuns int `json:"numberOfRuns,omitempty"`
}
