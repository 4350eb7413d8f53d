package service

import (
	"regexp"
	"testing"
	"time"
)

var commitHashPattern = regexp.MustCompile(`^[a-f0-9]+$`)

func TestBuildSynthesizer_Synthesize(t *testing.T) {
	fixedNow := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	synth := NewBuildSynthesizerWithSources(
		func() time.Time { return fixedNow },
		func() string { return "deadbeef01234567" },
	)

	build, err := synth.Synthesize("project-1", "main", "https://example.com/")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if build.ProjectID() != "project-1" {
		t.Errorf("project id = %q, want %q", build.ProjectID(), "project-1")
	}
	if build.Branch() != "main" {
		t.Errorf("branch = %q, want %q", build.Branch(), "main")
	}
	if build.CommitHash() != "deadbeef01234567" {
		t.Errorf("commit hash = %q, want injected hash", build.CommitHash())
	}
	if build.Author() != AutocollectAuthor {
		t.Errorf("author = %q, want %q", build.Author(), AutocollectAuthor)
	}
	wantAvatar := "https://www.gravatar.com/avatar/f52a99e6bec57a971cbe232b7c5cc49f.jpg?d=identicon"
	if build.AvatarURL() != wantAvatar {
		t.Errorf("avatar url = %q, want %q", build.AvatarURL(), wantAvatar)
	}
	wantMessage := "Autocollected at " + fixedNow.Format(time.RFC1123)
	if build.CommitMessage() != wantMessage {
		t.Errorf("commit message = %q, want %q", build.CommitMessage(), wantMessage)
	}
	if build.ExternalBuildURL() != "https://example.com/" {
		t.Errorf("external build url = %q, want first site url", build.ExternalBuildURL())
	}
	if !build.CommittedAt().Equal(fixedNow) || !build.RunAt().Equal(fixedNow) {
		t.Errorf("committedAt/runAt = %v/%v, want both %v", build.CommittedAt(), build.RunAt(), fixedNow)
	}
	if build.Lifecycle() != "unsealed" {
		t.Errorf("lifecycle = %q, want %q", build.Lifecycle(), "unsealed")
	}
	if build.ID() != "" {
		t.Errorf("id = %q, want empty before persistence", build.ID())
	}
}

func TestRandomCommitHash_Pattern(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		hash := RandomCommitHash()
		if !commitHashPattern.MatchString(hash) {
			t.Fatalf("hash %q does not match ^[a-f0-9]+$", hash)
		}
		if seen[hash] {
			t.Fatalf("hash %q repeated", hash)
		}
		seen[hash] = true
	}
}

func TestDefaultSynthesizer_HashPattern(t *testing.T) {
	build, err := NewBuildSynthesizer().Synthesize("project-1", "main", "https://example.com/")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !commitHashPattern.MatchString(build.CommitHash()) {
		t.Errorf("commit hash %q does not match ^[a-f0-9]+$", build.CommitHash())
	}
}

func TestGravatarURL_NoAngleBrackets(t *testing.T) {
	// md5("someone@example.com")
	want := "https://www.gravatar.com/avatar/16d113840f999444259f73bac9ab8b10.jpg?d=identicon"
	if got := GravatarURL("Someone@Example.com"); got != want {
		t.Errorf("GravatarURL = %q, want %q", got, want)
	}
}
