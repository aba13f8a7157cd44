package dahua

// volumeKey is the device property holding speaker output volume (0-10 steps).
const volumeKey = "aoVol"

// DeviceInfo is the speaker identity returned by the device info endpoint.
type DeviceInfo struct {
	MAC     string `json:"mac"`
	Model   string `json:"model"`
	Version string `json:"version"`
	AoVol   int    `json:"aoVol"`
}

// ProgramFile is an audio program stored on the speaker.
// playStatus is 1 while the file is playing.
type ProgramFile struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	PlayStatus int    `json:"playStatus"`
}

// Playing returns true if the file is currently playing.
func (f ProgramFile) Playing() bool {
	return f.PlayStatus == 1
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
}

type programInfo struct {
	Files []ProgramFile `json:"files"`
}

// PercentToSteps converts a volume percentage (0-100) to device steps (0-10).
func PercentToSteps(percent int) int {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return (percent + 5) / 10
}

// StepsToPercent converts device volume steps (0-10) to a percentage (0-100).
func StepsToPercent(steps int) int {
	if steps < 0 {
		steps = 0
	}
	if steps > 10 {
		steps = 10
	}
	return steps * 10
}
