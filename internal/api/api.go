// Package api serves a small REST surface over a speaker controller so
// other systems can drive the speaker without speaking the vendor protocol.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vcsh30/dahuactl/internal/core"
	apperrors "github.com/vcsh30/dahuactl/internal/errors"
)

// API handles HTTP control endpoints.
type API struct {
	controller core.Controller
}

// NewAPI creates a new API handler.
func NewAPI(controller core.Controller) *API {
	return &API{
		controller: controller,
	}
}

// StatusResponse is the response for the status endpoint.
type StatusResponse struct {
	State      string    `json:"state"`
	Volume     int       `json:"volume"`
	Muted      bool      `json:"muted"`
	NowPlaying string    `json:"now_playing,omitempty"`
	Speaker    string    `json:"speaker,omitempty"`
	Model      string    `json:"model,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// FileEntry represents a stored audio file.
type FileEntry struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Playing bool   `json:"playing"`
}

// FilesResponse is the response for the files endpoint.
type FilesResponse struct {
	Count int         `json:"count"`
	Files []FileEntry `json:"files"`
}

// VolumeRequest is the request body for the volume endpoint.
type VolumeRequest struct {
	Volume *int `json:"volume" binding:"required"`
}

// PlayRequest is the request body for the play endpoint.
type PlayRequest struct {
	File string `json:"file" binding:"required"`
}

// ErrorResponse carries an error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Status returns the current speaker state.
func (a *API) Status(c *gin.Context) {
	status, err := a.controller.Status(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	resp := StatusResponse{
		State:      string(status.State),
		Volume:     status.Volume,
		Muted:      status.Muted,
		ObservedAt: status.ObservedAt,
	}
	if status.NowPlaying != nil {
		resp.NowPlaying = status.NowPlaying.Name
	}
	if status.Device != nil {
		resp.Speaker = status.Device.Name
		resp.Model = status.Device.Model
	}

	c.JSON(http.StatusOK, resp)
}

// Files lists the audio files stored on the speaker.
func (a *API) Files(c *gin.Context) {
	files, err := a.controller.Files(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	entries := make([]FileEntry, len(files))
	for i, f := range files {
		entries[i] = FileEntry{
			ID:      f.ID,
			Name:    f.Name,
			Size:    f.Size,
			Playing: f.Playing,
		}
	}

	c.JSON(http.StatusOK, FilesResponse{Count: len(entries), Files: entries})
}

// SetVolume sets the output volume.
func (a *API) SetVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "volume is required"})
		return
	}
	if *req.Volume < 0 || *req.Volume > 100 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "volume must be between 0 and 100"})
		return
	}

	if err := a.controller.SetVolume(c.Request.Context(), *req.Volume); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"volume": *req.Volume})
}

// Play starts playback of a stored file.
func (a *API) Play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}

	if err := a.controller.Play(c.Request.Context(), req.File); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": "playing", "file": req.File})
}

// Stop halts any current playback.
func (a *API) Stop(c *gin.Context) {
	if err := a.controller.Stop(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": "idle"})
}

// Mute silences the speaker.
func (a *API) Mute(c *gin.Context) {
	if err := a.controller.Mute(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"muted": true})
}

// Unmute restores the volume from before the mute.
func (a *API) Unmute(c *gin.Context) {
	if err := a.controller.Unmute(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"muted": false})
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnreachable), errors.Is(err, apperrors.ErrTimeout):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrAuthFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
