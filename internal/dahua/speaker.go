package dahua

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/vcsh30/dahuactl/internal/core"
	apperrors "github.com/vcsh30/dahuactl/internal/errors"
)

// fallbackVolume is used when unmuting without a remembered level.
const fallbackVolume = 50

// Speaker implements core.Controller for a Dahua VCS-SH30 speaker.
type Speaker struct {
	client *Client
	name   string

	mu         sync.Mutex
	device     *core.Device // cached identity, refreshed on each poll
	lastVolume int          // percent before mute
	muted      bool
}

// NewSpeaker creates a controller for the given client.
func NewSpeaker(client *Client, name string) *Speaker {
	return &Speaker{
		client: client,
		name:   name,
	}
}

// Status returns the observed speaker state. Connection failures map to
// the unavailable state rather than an error, so pollers keep running.
func (s *Speaker) Status(ctx context.Context) (*core.Status, error) {
	info, err := s.client.DeviceInfo(ctx)
	if err != nil {
		if unreachable(err) {
			return core.Unavailable(s.cachedDevice()), nil
		}
		return nil, err
	}

	files, err := s.client.Files(ctx)
	if err != nil {
		if unreachable(err) {
			return core.Unavailable(s.cachedDevice()), nil
		}
		return nil, err
	}

	device := &core.Device{
		MAC:     info.MAC,
		Model:   info.Model,
		Version: info.Version,
		Host:    s.client.Host(),
		Name:    s.name,
	}

	s.mu.Lock()
	s.device = device
	muted := s.muted
	s.mu.Unlock()

	status := &core.Status{
		State:      core.StateIdle,
		Volume:     StepsToPercent(info.AoVol),
		Muted:      muted && info.AoVol == 0,
		Device:     device,
		ObservedAt: time.Now(),
	}

	for _, f := range files {
		if f.Playing() {
			status.State = core.StatePlaying
			status.NowPlaying = &core.AudioFile{
				ID:      f.ID,
				Name:    f.Name,
				Size:    f.Size,
				Playing: true,
			}
			break
		}
	}

	return status, nil
}

// Play starts playback of the named audio file.
func (s *Speaker) Play(ctx context.Context, name string) error {
	files, err := s.client.Files(ctx)
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.Name == name {
			return s.client.Start(ctx, f.ID)
		}
	}

	return fmt.Errorf("%w: %q", apperrors.ErrFileNotFound, name)
}

// Stop halts playback of any currently playing file.
func (s *Speaker) Stop(ctx context.Context) error {
	files, err := s.client.Files(ctx)
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.Playing() {
			if err := s.client.Stop(ctx, f.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

// SetVolume sets the output volume as a percentage (0-100). The device
// resolves volume in steps of 10.
func (s *Speaker) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", percent)
	}

	applied, err := s.client.SetRawVolume(ctx, PercentToSteps(percent))
	if err != nil {
		return err
	}

	s.mu.Lock()
	if applied > 0 {
		s.muted = false
		s.lastVolume = StepsToPercent(applied)
	}
	s.mu.Unlock()

	return nil
}

// Mute drops the volume to zero, remembering the previous level. The
// device has no native mute.
func (s *Speaker) Mute(ctx context.Context) error {
	info, err := s.client.DeviceInfo(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if info.AoVol > 0 {
		s.lastVolume = StepsToPercent(info.AoVol)
	}
	s.mu.Unlock()

	if _, err := s.client.SetRawVolume(ctx, 0); err != nil {
		return err
	}

	s.mu.Lock()
	s.muted = true
	s.mu.Unlock()

	return nil
}

// Unmute restores the volume level remembered by Mute.
func (s *Speaker) Unmute(ctx context.Context) error {
	s.mu.Lock()
	restore := s.lastVolume
	s.mu.Unlock()
	if restore == 0 {
		restore = fallbackVolume
	}

	if _, err := s.client.SetRawVolume(ctx, PercentToSteps(restore)); err != nil {
		return err
	}

	s.mu.Lock()
	s.muted = false
	s.mu.Unlock()

	return nil
}

// Files lists the audio programs stored on the speaker.
func (s *Speaker) Files(ctx context.Context) ([]core.AudioFile, error) {
	files, err := s.client.Files(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.AudioFile, 0, len(files))
	for _, f := range files {
		out = append(out, core.AudioFile{
			ID:      f.ID,
			Name:    f.Name,
			Size:    f.Size,
			Playing: f.Playing(),
		})
	}
	return out, nil
}

// Push uploads an MP3 to the speaker and verifies it arrived.
func (s *Speaker) Push(ctx context.Context, path, name string) (*core.AudioFile, error) {
	if name == "" {
		name = filepath.Base(path)
	}
	if err := s.client.Upload(ctx, path, name); err != nil {
		return nil, err
	}

	files, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}

	if f := core.FileByName(files, name); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("file %q missing on speaker after upload", name)
}

func (s *Speaker) cachedDevice() *core.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// unreachable reports whether err means the speaker could not be reached.
func unreachable(err error) bool {
	return errors.Is(err, apperrors.ErrUnreachable) || errors.Is(err, apperrors.ErrTimeout)
}

// Ensure Speaker implements core.Controller
var _ core.Controller = (*Speaker)(nil)
