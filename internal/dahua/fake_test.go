package dahua

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// fakeSpeaker is an in-memory stand-in for the device's control API.
type fakeSpeaker struct {
	mu sync.Mutex

	username string
	password string
	token    string
	vol      int // device steps 0-10
	files    []ProgramFile
	nextID   int

	logins int

	server *httptest.Server
}

func newFakeSpeaker() *fakeSpeaker {
	f := &fakeSpeaker{
		username: "admin",
		password: "secret",
		token:    "tok-1",
		vol:      5,
		nextID:   100,
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeSpeaker) host() string {
	return strings.TrimPrefix(f.server.URL, "http://")
}

func (f *fakeSpeaker) close() {
	f.server.Close()
}

func (f *fakeSpeaker) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

// rotateToken invalidates the token handed out by previous logins.
func (f *fakeSpeaker) rotateToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = f.token + "x"
}

func (f *fakeSpeaker) addFile(name string, size int64) ProgramFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	file := ProgramFile{ID: f.nextID, Name: name, Size: size}
	f.files = append(f.files, file)
	return file
}

func (f *fakeSpeaker) setPlaying(id int, playing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.files {
		if f.files[i].ID == id {
			if playing {
				f.files[i].PlayStatus = 1
			} else {
				f.files[i].PlayStatus = 0
			}
		}
	}
}

func (f *fakeSpeaker) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/prod-api/uer/login":
		f.handleLogin(w, r)
	case r.URL.Path == "/prod-api/device/info":
		f.withAuth(w, r, f.handleDeviceInfo)
	case r.URL.Path == "/prod-api/device/edit":
		f.withAuth(w, r, f.handleDeviceEdit)
	case r.URL.Path == "/prod-api/program/info":
		f.withAuth(w, r, f.handleProgramInfo)
	case r.URL.Path == "/prod-api/program/start":
		f.withAuth(w, r, f.handleProgramStart)
	case r.URL.Path == "/prod-api/program/stop":
		f.withAuth(w, r, f.handleProgramStop)
	case r.URL.Path == "/prod-api/program/upload":
		f.withAuth(w, r, f.handleProgramUpload)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSpeaker) withAuth(w http.ResponseWriter, r *http.Request, next func(http.ResponseWriter, *http.Request)) {
	f.mu.Lock()
	token := f.token
	f.mu.Unlock()
	if r.Header.Get("X-Token") != token {
		writeJSON(w, map[string]interface{}{"code": 401, "message": "token expired"})
		return
	}
	next(w, r)
}

func (f *fakeSpeaker) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++

	if req.Username != f.username || req.Password != f.password {
		writeJSON(w, map[string]interface{}{
			"code":    400,
			"message": "username or password incorrect",
		})
		return
	}

	writeJSON(w, map[string]interface{}{
		"code": 200,
		"data": map[string]string{"token": f.token},
	})
}

func (f *fakeSpeaker) handleDeviceInfo(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, map[string]interface{}{
		"code": 200,
		"data": map[string]interface{}{
			"mac":     "aa:bb:cc:dd:ee:ff",
			"model":   "VCS-SH30",
			"version": "1.000.0000000.3.R",
			"aoVol":   f.vol,
		},
	})
}

func (f *fakeSpeaker) handleDeviceEdit(w http.ResponseWriter, r *http.Request) {
	var req map[string]int
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if vol, ok := req[volumeKey]; ok {
		f.vol = vol
	}
	writeJSON(w, map[string]interface{}{
		"code":    200,
		volumeKey: f.vol,
	})
}

func (f *fakeSpeaker) handleProgramInfo(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, map[string]interface{}{
		"code": 200,
		"data": map[string]interface{}{"files": f.files},
	})
}

func (f *fakeSpeaker) handleProgramStart(w http.ResponseWriter, r *http.Request) {
	id, err := readID(r)
	if err != nil {
		writeJSON(w, map[string]interface{}{"code": 400, "message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.files {
		if f.files[i].ID == id {
			f.files[i].PlayStatus = 1
			writeJSON(w, map[string]interface{}{"code": 200})
			return
		}
	}
	writeJSON(w, map[string]interface{}{"code": 500, "message": "no such program"})
}

func (f *fakeSpeaker) handleProgramStop(w http.ResponseWriter, r *http.Request) {
	id, err := readID(r)
	if err != nil {
		writeJSON(w, map[string]interface{}{"code": 400, "message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.files {
		if f.files[i].ID == id {
			f.files[i].PlayStatus = 0
		}
	}
	writeJSON(w, map[string]interface{}{"code": 200})
}

func (f *fakeSpeaker) handleProgramUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, map[string]interface{}{"code": 400, "message": "bad upload"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, map[string]interface{}{"code": 400, "message": "missing file"})
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	f.mu.Lock()
	f.nextID++
	f.files = append(f.files, ProgramFile{
		ID:   f.nextID,
		Name: header.Filename,
		Size: int64(len(data)),
	})
	f.mu.Unlock()

	writeJSON(w, map[string]interface{}{"code": 200})
}

func readID(r *http.Request) (int, error) {
	var req map[string]int
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return 0, err
	}
	id, ok := req["id"]
	if !ok {
		return 0, fmt.Errorf("id is required")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
