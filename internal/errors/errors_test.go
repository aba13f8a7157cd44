package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "auth sentinel",
			err:  ErrAuthFailed,
			want: "Check speaker.username and speaker.password in your config",
		},
		{
			name: "wrapped auth",
			err:  fmt.Errorf("login: %w", ErrAuthFailed),
			want: "Check speaker.username and speaker.password in your config",
		},
		{
			name: "device auth message",
			err:  errors.New("dahua api error 400: username or password incorrect"),
			want: "Check speaker.username and speaker.password in your config",
		},
		{
			name: "unreachable",
			err:  ErrUnreachable,
			want: "Check the speaker is powered (PoE) and reachable on the network",
		},
		{
			name: "connection refused",
			err:  errors.New("dial tcp 10.0.0.7:80: connection refused"),
			want: "Check the speaker is powered (PoE) and reachable on the network",
		},
		{
			name: "not configured",
			err:  ErrNotConfigured,
			want: "Run 'dahuactl config init' to set up the speaker connection",
		},
		{
			name: "file missing",
			err:  ErrFileNotFound,
			want: "Run 'dahuactl files' to list audio files on the speaker",
		},
		{
			name: "unsupported media",
			err:  ErrUnsupportedMedia,
			want: "The speaker only accepts MP3 files",
		},
		{
			name: "unknown error",
			err:  errors.New("something else entirely"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSuggestion(tt.err); got != tt.want {
				t.Errorf("GetSuggestion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	base := errors.New("boom")
	err := WithSuggestion(base, "try again")

	if got := GetSuggestion(err); got != "try again" {
		t.Errorf("GetSuggestion() = %q, want %q", got, "try again")
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the base error")
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}

	out := Format(ErrUnreachable)
	if !strings.Contains(out, "speaker unreachable") {
		t.Errorf("Format() missing error text: %q", out)
	}
	if !strings.Contains(out, "Suggestion:") {
		t.Errorf("Format() missing suggestion: %q", out)
	}

	out = Format(errors.New("opaque"))
	if strings.Contains(out, "Suggestion:") {
		t.Errorf("Format() should not add a suggestion for unknown errors: %q", out)
	}
}
