package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dreschagin/perfci/internal/domain/entity"
	"github.com/google/uuid"
)

// AutocollectAuthor — фиксированный автор синтетических сборок автосбора
const AutocollectAuthor = "Lighthouse CI Server <no-reply@example.com>"

const gravatarURLFormat = "https://www.gravatar.com/avatar/%s.jpg?d=identicon"

// BuildSynthesizer создает метаданные синтетических сборок (Domain Service)
// Источники времени и hash инжектируются, чтобы тесты могли проверять точные значения
type BuildSynthesizer struct {
	now     func() time.Time
	newHash func() string
}

// NewBuildSynthesizer создает синтезатор с реальными источниками времени и hash
func NewBuildSynthesizer() *BuildSynthesizer {
	return &BuildSynthesizer{
		now:     time.Now,
		newHash: RandomCommitHash,
	}
}

// NewBuildSynthesizerWithSources создает синтезатор с заданными источниками
// времени и hash (для тестов)
func NewBuildSynthesizerWithSources(now func() time.Time, newHash func() string) *BuildSynthesizer {
	if now == nil {
		now = time.Now
	}
	if newHash == nil {
		newHash = RandomCommitHash
	}
	return &BuildSynthesizer{
		now:     now,
		newHash: newHash,
	}
}

// Synthesize создает запись сборки с синтетическими метаданными коммита.
// committedAt и runAt фиксируются одним моментом времени
func (s *BuildSynthesizer) Synthesize(projectID, branch, externalBuildURL string) (*entity.Build, error) {
	now := s.now()

	return entity.NewBuild(
		projectID,
		branch,
		s.newHash(),
		fmt.Sprintf("Autocollected at %s", now.Format(time.RFC1123)),
		AutocollectAuthor,
		GravatarURL(AutocollectAuthor),
		externalBuildURL,
		now,
		now,
	)
}

// RandomCommitHash возвращает случайную строку из lowercase hex символов
func RandomCommitHash() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GravatarURL строит identicon URL по email внутри строки автора
// ("Name <email>"); если скобок нет, hash берется от всей строки
func GravatarURL(author string) string {
	email := author
	if start := strings.Index(author, "<"); start != -1 {
		if end := strings.Index(author[start:], ">"); end != -1 {
			email = author[start+1 : start+end]
		}
	}

	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf(gravatarURLFormat, hex.EncodeToString(sum[:]))
}
