package cli

import (
	"fmt"
	"os"
	"time"

	apperrors "github.com/vcsh30/dahuactl/internal/errors"

	"github.com/vcsh30/dahuactl/internal/dahua"
)

// getSpeaker builds a speaker controller from the loaded configuration.
func getSpeaker() (*dahua.Speaker, error) {
	if cfg.Speaker.Host == "" {
		return nil, fmt.Errorf("%w: no speaker host set", apperrors.ErrNotConfigured)
	}

	store, err := dahua.NewSessionStore("")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session storage: %w", err)
	}

	client := dahua.NewClient(cfg.Speaker.Host, cfg.Speaker.Username, cfg.Speaker.Password, store)
	if cfg.Speaker.Timeout > 0 {
		client.SetTimeout(time.Duration(cfg.Speaker.Timeout) * time.Second)
	}
	if Verbose() {
		client.SetVerbose(true, func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		})
	}

	return dahua.NewSpeaker(client, cfg.Speaker.Name), nil
}
