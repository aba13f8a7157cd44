package core

import "context"

// Controller defines the interface for speaker control.
type Controller interface {
	// Playback control
	Play(ctx context.Context, name string) error
	Stop(ctx context.Context) error

	// Volume control
	SetVolume(ctx context.Context, percent int) error
	Mute(ctx context.Context) error
	Unmute(ctx context.Context) error

	// State queries
	Status(ctx context.Context) (*Status, error)
	Files(ctx context.Context) ([]AudioFile, error)

	// File management
	Push(ctx context.Context, path, name string) (*AudioFile, error)
}
