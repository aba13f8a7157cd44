package dahua

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/vcsh30/dahuactl/internal/errors"
)

const (
	// DefaultTimeout bounds each device request.
	DefaultTimeout = 5 * time.Second

	audioMPEG = "audio/mpeg"
)

// APIError represents an error envelope returned by the speaker's API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dahua api error %d: %s", e.Code, e.Message)
}

// IsAuth returns true if the error indicates bad or expired credentials.
func (e *APIError) IsAuth() bool {
	if e.Code == 401 {
		return true
	}
	return e.Code == 400 && strings.Contains(e.Message, "username or password")
}

// Client talks to the HTTP control API of a Dahua VCS-SH30 speaker.
type Client struct {
	host       string
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	store      *SessionStore

	mu    sync.Mutex
	token string

	verbose bool
	logFunc func(format string, args ...interface{})
}

// NewClient creates a client for the speaker at host. The session store may
// be nil, in which case the login token is kept in memory only.
func NewClient(host, username, password string, store *SessionStore) *Client {
	return &Client{
		host:       host,
		baseURL:    fmt.Sprintf("http://%s/prod-api", host),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      store,
	}
}

// Host returns the speaker's network address.
func (c *Client) Host() string {
	return c.host
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// SetVerbose enables verbose logging.
func (c *Client) SetVerbose(verbose bool, logFunc func(format string, args ...interface{})) {
	c.verbose = verbose
	c.logFunc = logFunc
}

func (c *Client) log(format string, args ...interface{}) {
	if c.verbose && c.logFunc != nil {
		c.logFunc(format, args...)
	}
}

// Login authenticates against the speaker and stores the session token.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{Username: c.username, Password: c.password})
	if err != nil {
		return err
	}

	c.log("[dahua] POST %s/uer/login", c.baseURL)
	resp, err := c.do(ctx, http.MethodPost, "/uer/login", body, "")
	if err != nil {
		return fmt.Errorf("login to %s: %w", c.host, err)
	}

	var data loginData
	if err := decodeEnvelope(resp, &data); err != nil {
		return fmt.Errorf("login to %s: %w", c.host, err)
	}
	if data.Token == "" {
		return fmt.Errorf("login to %s: no token in response", c.host)
	}

	c.mu.Lock()
	c.token = data.Token
	c.mu.Unlock()

	if c.store != nil {
		_ = c.store.Save(&Session{Host: c.host, Token: data.Token, SavedAt: time.Now()})
	}

	return nil
}

// DeviceInfo fetches the speaker's identity and current volume.
func (c *Client) DeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	var info DeviceInfo
	if err := c.request(ctx, http.MethodGet, "/device/info", nil, &info); err != nil {
		return nil, fmt.Errorf("get device info from %s: %w", c.host, err)
	}
	return &info, nil
}

// SetRawVolume sets the output volume in device steps (0-10) and returns
// the value the device applied.
func (c *Client) SetRawVolume(ctx context.Context, steps int) (int, error) {
	body, err := json.Marshal(map[string]int{volumeKey: steps})
	if err != nil {
		return 0, err
	}

	var applied struct {
		AoVol *int `json:"aoVol"`
	}
	if err := c.requestRaw(ctx, http.MethodPost, "/device/edit", body, &applied); err != nil {
		return 0, fmt.Errorf("set volume on %s: %w", c.host, err)
	}
	if applied.AoVol != nil {
		return *applied.AoVol, nil
	}
	return steps, nil
}

// Files fetches the list of audio programs stored on the speaker.
func (c *Client) Files(ctx context.Context) ([]ProgramFile, error) {
	var info programInfo
	if err := c.request(ctx, http.MethodGet, "/program/info", nil, &info); err != nil {
		return nil, fmt.Errorf("fetch file list from %s: %w", c.host, err)
	}
	return info.Files, nil
}

// Start begins playback of the audio program with the given id.
func (c *Client) Start(ctx context.Context, id int) error {
	body, err := json.Marshal(map[string]int{"id": id})
	if err != nil {
		return err
	}
	if err := c.request(ctx, http.MethodPost, "/program/start", body, nil); err != nil {
		return fmt.Errorf("start playback on %s: %w", c.host, err)
	}
	return nil
}

// Stop halts playback of the audio program with the given id.
func (c *Client) Stop(ctx context.Context, id int) error {
	body, err := json.Marshal(map[string]int{"id": id})
	if err != nil {
		return err
	}
	if err := c.request(ctx, http.MethodPost, "/program/stop", body, nil); err != nil {
		return fmt.Errorf("stop playback on %s: %w", c.host, err)
	}
	return nil
}

// Upload pushes an MP3 file to the speaker. The speaker rejects anything
// that is not audio/mpeg, so the extension is checked up front.
func (c *Client) Upload(ctx context.Context, path, name string) error {
	if filepath.Ext(path) != ".mp3" {
		return apperrors.ErrUnsupportedMedia
	}
	if name == "" {
		name = filepath.Base(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", audioMPEG)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	c.log("[dahua] POST %s/program/upload (%s)", c.baseURL, name)
	body := buf.Bytes()
	contentType := mw.FormDataContentType()

	err = c.doUpload(ctx, body, contentType, token)

	// The body is fully buffered, so the same one-login-and-retry rule
	// the JSON calls follow applies here too.
	if err != nil && isAuthError(err) {
		c.log("[dahua] token rejected, logging in again")
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		if loginErr := c.Login(ctx); loginErr != nil {
			return loginErr
		}
		c.mu.Lock()
		token = c.token
		c.mu.Unlock()

		err = c.doUpload(ctx, body, contentType, token)
	}
	if err != nil {
		return fmt.Errorf("push file to %s: %w", c.host, err)
	}
	return nil
}

func (c *Client) doUpload(ctx context.Context, body []byte, contentType, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/program/upload", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyNetError(err)
	}
	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}
	return decodeEnvelope(respBody, nil)
}

// request performs an authenticated call and unmarshals the envelope's
// data field into result.
func (c *Client) request(ctx context.Context, method, path string, body []byte, result interface{}) error {
	return c.call(ctx, method, path, body, func(respBody []byte) error {
		return decodeEnvelope(respBody, result)
	})
}

// requestRaw performs an authenticated call and unmarshals the whole
// response body into result. The device/edit endpoint echoes the applied
// property at the top level rather than inside the data field.
func (c *Client) requestRaw(ctx context.Context, method, path string, body []byte, result interface{}) error {
	return c.call(ctx, method, path, body, func(respBody []byte) error {
		if err := decodeEnvelope(respBody, nil); err != nil {
			return err
		}
		if result != nil {
			return json.Unmarshal(respBody, result)
		}
		return nil
	})
}

func (c *Client) call(ctx context.Context, method, path string, body []byte, decode func([]byte) error) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	c.log("[dahua] %s %s%s", method, c.baseURL, path)
	respBody, err := c.do(ctx, method, path, body, token)
	if err == nil {
		err = decode(respBody)
	}
	if err == nil {
		return nil
	}

	// A stored token can outlive the device's session. Log in again once
	// and retry before giving up.
	if isAuthError(err) {
		c.log("[dahua] token rejected, logging in again")
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		if loginErr := c.Login(ctx); loginErr != nil {
			return loginErr
		}
		c.mu.Lock()
		token = c.token
		c.mu.Unlock()

		respBody, err = c.do(ctx, method, path, body, token)
		if err == nil {
			err = decode(respBody)
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, token string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyNetError(err)
	}
	return readResponse(resp)
}

// ensureToken returns a session token, loading a persisted one or logging
// in as needed.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	if c.store != nil {
		if session, err := c.store.Load(); err == nil && session != nil && session.Host == c.host {
			c.mu.Lock()
			c.token = session.Token
			token = c.token
			c.mu.Unlock()
			return token, nil
		}
	}

	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	token = c.token
	c.mu.Unlock()
	return token, nil
}

func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return body, nil
}

// decodeEnvelope parses the API envelope {code, message, data} and
// unmarshals data into result. A code other than 200 is an API error.
func decodeEnvelope(body []byte, result interface{}) error {
	var envelope struct {
		Code    *int            `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if envelope.Code != nil && *envelope.Code != 200 {
		apiErr := &APIError{Code: *envelope.Code, Message: envelope.Message}
		if apiErr.IsAuth() {
			return fmt.Errorf("%w: %s", apperrors.ErrAuthFailed, apiErr.Message)
		}
		return apiErr
	}

	if result != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}
	return nil
}

// classifyNetError maps transport failures onto the shared error taxonomy.
func classifyNetError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrUnreachable, err)
}

// isAuthError checks whether err is an auth failure from the API.
func isAuthError(err error) bool {
	if errors.Is(err, apperrors.ErrAuthFailed) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsAuth()
}
