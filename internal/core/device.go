package core

// PlaybackState indicates what the speaker is doing.
type PlaybackState string

const (
	StateIdle        PlaybackState = "idle"
	StatePlaying     PlaybackState = "playing"
	StateUnavailable PlaybackState = "unavailable"
)

// Device identifies a speaker on the network.
type Device struct {
	MAC     string `json:"mac"`
	Model   string `json:"model"`
	Version string `json:"version"`
	Host    string `json:"host"`
	Name    string `json:"name"`
}

// AudioFile is an audio program stored on the speaker.
type AudioFile struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Playing bool   `json:"playing"`
}

// FileByName returns the file with the given name, or nil.
func FileByName(files []AudioFile, name string) *AudioFile {
	for i := range files {
		if files[i].Name == name {
			return &files[i]
		}
	}
	return nil
}
