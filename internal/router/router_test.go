package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/handler"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/remote"
	"github.com/stemsi/paperdesk/internal/response"
	"github.com/stemsi/paperdesk/internal/service"
	"github.com/stemsi/paperdesk/internal/storage"
	"github.com/stemsi/paperdesk/internal/validator"
)

// upstream fakes the generation and auth service.
type upstream struct {
	mu        sync.Mutex
	replaces  int
	answerKey int
}

func samplePaper(id string) model.Paper {
	return model.Paper{
		ID: id,
		Metadata: model.PaperMetadata{
			Board: model.BoardCBSE, ClassLevel: "10", Subject: "Science",
			Chapters: []string{"Light"}, Difficulty: "Medium", Marks: 20,
		},
		Sections: []model.Section{
			{
				Type:       "MCQ",
				TotalMarks: 4,
				Questions: []model.Question{
					model.NewMCQ("Unit of current?", []string{"Volt", "Ampere"}, model.TextAnswer("Ampere"), 2),
					model.NewMCQ("Unit of charge?", []string{"Coulomb", "Ohm"}, model.TextAnswer("Coulomb"), 2),
				},
			},
			{
				Type:       "Long Answer",
				TotalMarks: 16,
				Questions: []model.Question{
					model.NewOpenEnded("Explain refraction.", model.TextAnswer("Bending of light at a boundary"), 16),
				},
			},
		},
	}
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	write := func(status int, v any) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.URL.Path == "/health":
		write(200, remote.HealthStatus{Status: "healthy", Version: "1.4.0"})
	case r.URL.Path == "/auth/login":
		var req model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			write(200, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		write(200, map[string]any{"success": true, "school": model.SchoolData{
			Username: req.Username, SchoolName: "Green Valley High", Board: "ICSE", Address: "Pune", IsActive: true,
		}})
	case r.URL.Path == "/auth/verify":
		write(200, map[string]any{"success": true, "school": model.SchoolData{
			Username: r.URL.Query().Get("username"), SchoolName: "Green Valley High School", Board: "ICSE",
		}})
	case r.URL.Path == "/generate-paper":
		write(200, samplePaper("p1"))
	case r.URL.Path == "/generate-answers":
		u.mu.Lock()
		u.answerKey++
		u.mu.Unlock()
		write(200, samplePaper("p1"))
	case r.URL.Path == "/replace-question":
		u.mu.Lock()
		u.replaces++
		u.mu.Unlock()
		q := model.NewOpenEnded("Fresh question", model.TextAnswer("Fresh answer"), 1)
		write(200, model.ReplaceQuestionResult{Success: true, NewQuestion: &q})
	case r.URL.Path == "/boards":
		write(200, []string{"CBSE", "ICSE", "SSC"})
	case strings.HasPrefix(r.URL.Path, "/paper/"):
		write(404, map[string]string{"detail": "Paper not found"})
	default:
		write(404, map[string]string{"detail": "no route"})
	}
}

type testServer struct {
	t        *testing.T
	engine   *gin.Engine
	upstream *upstream
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	validator.Setup()

	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		GinMode:             gin.TestMode,
		JWTSecret:           "router-secret",
		JWTExpiry:           time.Hour,
		DefaultExamType:     "Unit Test",
		DefaultAcademicYear: "2025-26",
		DefaultDuration:     "1 Hour",
	}
	log := zerolog.Nop()
	blobs := storage.NewMemoryBlobStore()
	gen := remote.NewClient(srv.URL, 5*time.Second, log)

	sessions := service.NewSessionService(cfg, gen, blobs, log)
	papers := service.NewPaperService(storage.NewPaperStore(blobs, log), gen, log)
	handlers := &Handlers{
		Auth:      handler.NewAuthHandler(sessions),
		Paper:     handler.NewPaperHandler(papers),
		Export:    handler.NewExportHandler(service.NewExportService(cfg, papers, log)),
		FormState: handler.NewFormStateHandler(service.NewFormStateService(storage.NewFormStateStore(blobs, log))),
		Catalog:   handler.NewCatalogHandler(gen),
		System:    handler.NewSystemHandler(gen, papers, log),
	}

	return &testServer{
		t:        t,
		engine:   SetupRouter(sessions, handlers, cfg, Options{GenerateLimit: 100, GenerateWindow: time.Hour}),
		upstream: up,
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			s.t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	if dst != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int, code response.ErrCode) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d: %s", w.Code, status, w.Body.String())
	}
	if code == "" {
		return
	}
	env := decode(t, w, nil)
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want %s", env.Error, code)
	}
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Username: username, Password: "secret"})
	expect(s.t, w, http.StatusOK, "")
	var res model.LoginResponse
	decode(s.t, w, &res)
	if res.Token == "" {
		s.t.Fatal("login returned no token")
	}
	return res.Token
}

var validGeneration = model.GenerationRequest{
	Board:                model.BoardCBSE,
	ClassLevel:           "10",
	Subject:              "Science",
	Chapters:             []string{"Light"},
	TotalMarks:           20,
	DifficultyPercentage: 50,
	Distribution:         model.QuestionDistribution{MCQCount: 2, MCQMarks: 2, LongAnswerCount: 1, LongAnswerMarks: 16},
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/health", "", nil)
	expect(t, w, http.StatusOK, "")

	var data struct {
		Status    string `json:"status"`
		Generator struct {
			Status  string `json:"status"`
			Version string `json:"version"`
		} `json:"generator"`
	}
	decode(t, w, &data)
	if data.Status != "ok" || data.Generator.Status != "up" || data.Generator.Version != "1.4.0" {
		t.Errorf("health = %+v", data)
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	expect(t, s.do(http.MethodGet, "/api/v1/papers", "", nil), http.StatusUnauthorized, response.ErrTokenRequired)

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Username: "gv", Password: "wrong"})
	expect(t, w, http.StatusUnauthorized, response.ErrInvalidCredentials)
	if env := decode(t, w, nil); env.Error.Message != "Invalid credentials" {
		t.Errorf("message = %q", env.Error.Message)
	}

	expect(t, s.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":""}`), http.StatusBadRequest, response.ErrValidation)

	token := s.login("gv")

	w = s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	expect(t, w, http.StatusOK, "")
	var me struct {
		School  model.SchoolData `json:"school"`
		IsAdmin bool             `json:"is_admin"`
	}
	decode(t, w, &me)
	if me.School.SchoolName != "Green Valley High" || me.IsAdmin {
		t.Errorf("me = %+v", me)
	}

	w = s.do(http.MethodPost, "/api/v1/auth/verify", token, nil)
	expect(t, w, http.StatusOK, "")
	decode(t, w, &me)
	if me.School.SchoolName != "Green Valley High School" {
		t.Errorf("verify did not refresh school: %+v", me.School)
	}

	expect(t, s.do(http.MethodPost, "/api/v1/auth/logout", token, nil), http.StatusOK, "")
	expect(t, s.do(http.MethodGet, "/api/v1/auth/me", token, nil), http.StatusUnauthorized, response.ErrSessionInvalidated)
}

func TestPaperLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login("gv")

	bad := validGeneration
	bad.Chapters = nil
	expect(t, s.do(http.MethodPost, "/api/v1/papers/generate", token, bad), http.StatusBadRequest, response.ErrValidation)

	w := s.do(http.MethodPost, "/api/v1/papers/generate", token, validGeneration)
	expect(t, w, http.StatusCreated, "")
	var paper model.Paper
	decode(t, w, &paper)
	if paper.ID != "p1" {
		t.Fatalf("paper id = %q", paper.ID)
	}

	w = s.do(http.MethodGet, "/api/v1/papers", token, nil)
	expect(t, w, http.StatusOK, "")
	var list []model.SavedPaper
	decode(t, w, &list)
	if len(list) != 1 || list[0].Title != "CBSE Class 10 Science - 20 marks (Medium)" {
		t.Fatalf("list = %+v", list)
	}

	// replace
	w = s.do(http.MethodPost, "/api/v1/papers/p1/sections/0/questions/0/replace", token, nil)
	expect(t, w, http.StatusOK, "")
	var q model.Question
	decode(t, w, &q)
	if q.Text != "Fresh question" || q.Marks != 1 {
		t.Errorf("replaced = %+v", q)
	}

	expect(t, s.do(http.MethodPost, "/api/v1/papers/p1/sections/-1/questions/0/replace", token, nil),
		http.StatusBadRequest, response.ErrInvalidIndex)
	expect(t, s.do(http.MethodPut, "/api/v1/papers/p1/sections/5/questions/0", token,
		model.EditQuestionRequest{Question: "x"}), http.StatusNotFound, response.ErrQuestionOutOfRange)

	// edit
	w = s.do(http.MethodPut, "/api/v1/papers/p1/sections/1/questions/0", token,
		map[string]any{"question": "Describe total internal reflection.", "answer": "Light reflects fully"})
	expect(t, w, http.StatusOK, "")
	decode(t, w, &q)
	if q.Text != "Describe total internal reflection." || q.Marks != 16 || q.HasOptions() {
		t.Errorf("edited = %+v", q)
	}

	// selection
	expect(t, s.do(http.MethodPost, "/api/v1/papers/p1/replace-selected", token, nil),
		http.StatusBadRequest, response.ErrNothingSelected)
	w = s.do(http.MethodPost, "/api/v1/papers/p1/selection", token, model.QuestionRef{SectionIndex: 0, QuestionIndex: 1})
	expect(t, w, http.StatusOK, "")
	var sel struct {
		Selected  bool                `json:"selected"`
		Selection []model.QuestionRef `json:"selection"`
	}
	decode(t, w, &sel)
	if !sel.Selected || len(sel.Selection) != 1 {
		t.Fatalf("selection = %+v", sel)
	}

	w = s.do(http.MethodPost, "/api/v1/papers/p1/replace-selected", token, nil)
	expect(t, w, http.StatusOK, "")
	var bulk model.ReplaceSelectedResult
	decode(t, w, &bulk)
	if len(bulk.Replaced) != 1 || len(bulk.Failed) != 0 {
		t.Errorf("bulk = %+v", bulk)
	}
	if s.upstream.replaces != 2 {
		t.Errorf("upstream replace calls = %d, want 2", s.upstream.replaces)
	}

	w = s.do(http.MethodGet, "/api/v1/papers/p1/selection", token, nil)
	decode(t, w, &sel)
	if len(sel.Selection) != 0 {
		t.Errorf("selection not cleared: %+v", sel.Selection)
	}

	// save and reload through the cache
	expect(t, s.do(http.MethodPost, "/api/v1/papers/p1/save", token, nil), http.StatusOK, "")
	w = s.do(http.MethodGet, "/api/v1/papers", token, nil)
	decode(t, w, &list)
	if got := list[0].Sections[1].Questions[0].Text; got != "Describe total internal reflection." {
		t.Errorf("saved text = %q", got)
	}

	// delete
	expect(t, s.do(http.MethodDelete, "/api/v1/papers/p1", token, nil), http.StatusOK, "")
	expect(t, s.do(http.MethodDelete, "/api/v1/papers/p1", token, nil), http.StatusNotFound, response.ErrPaperNotFound)
	expect(t, s.do(http.MethodGet, "/api/v1/papers/zz", token, nil), http.StatusNotFound, response.ErrPaperNotFound)
}

func TestExports(t *testing.T) {
	s := newTestServer(t)
	token := s.login("gv")
	expect(t, s.do(http.MethodPost, "/api/v1/papers/generate", token, validGeneration), http.StatusCreated, "")

	w := s.do(http.MethodGet, "/api/v1/papers/p1/answer-key/pdf", token, nil)
	expect(t, w, http.StatusOK, "")
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "answer-key-p1.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}

	expect(t, s.do(http.MethodGet, "/api/v1/papers/p1/answer-key", token, nil), http.StatusOK, "")
	if s.upstream.answerKey != 1 {
		t.Errorf("answer key generated %d times, want 1", s.upstream.answerKey)
	}

	w = s.do(http.MethodPost, "/api/v1/papers/p1/pdf", token, model.PrintRequest{School: &model.SchoolDetails{ExamType: "Final"}})
	expect(t, w, http.StatusOK, "")
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Final_Science_Class10.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	w = s.do(http.MethodPost, "/api/v1/papers/p1/print", token, nil)
	expect(t, w, http.StatusOK, "")
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") || !strings.Contains(w.Body.String(), "Green Valley High") {
		t.Errorf("print view: %s %q", w.Header().Get("Content-Type"), w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/v1/papers/p1/text?width=60", token, nil)
	expect(t, w, http.StatusOK, "")
	if !strings.Contains(w.Body.String(), "Unit of current?") {
		t.Errorf("text = %q", w.Body.String())
	}
	expect(t, s.do(http.MethodPost, "/api/v1/papers/p1/text?width=5", token, nil), http.StatusBadRequest, response.ErrValidation)

	w = s.do(http.MethodGet, "/api/v1/papers/export", token, nil)
	expect(t, w, http.StatusOK, "")
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "question-papers.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestBulkRoutesNeedAdmin(t *testing.T) {
	s := newTestServer(t)
	school := s.login("gv")
	admin := s.login("admin")

	expect(t, s.do(http.MethodDelete, "/api/v1/papers", school, nil), http.StatusForbidden, response.ErrAdminAccessOnly)
	expect(t, s.do(http.MethodPost, "/api/v1/papers/import", school, "[]"), http.StatusForbidden, response.ErrAdminAccessOnly)

	expect(t, s.do(http.MethodPost, "/api/v1/papers/import", admin, `{"not":"an array"}`), http.StatusBadRequest, response.ErrImportInvalid)

	imported := []model.SavedPaper{{ID: "x1", Title: "Imported", Metadata: samplePaper("x1").Metadata}}
	w := s.do(http.MethodPost, "/api/v1/papers/import", admin, imported)
	expect(t, w, http.StatusOK, "")
	var info model.StorageInfo
	decode(t, w, &info)
	if info.Count != 1 {
		t.Errorf("count = %d", info.Count)
	}

	expect(t, s.do(http.MethodDelete, "/api/v1/papers", admin, nil), http.StatusOK, "")
	w = s.do(http.MethodGet, "/api/v1/papers/storage-info", admin, nil)
	decode(t, w, &info)
	if info.Count != 0 {
		t.Errorf("count after clear = %d", info.Count)
	}
}

func TestFormStateAndCatalog(t *testing.T) {
	s := newTestServer(t)
	token := s.login("gv")

	w := s.do(http.MethodGet, "/api/v1/form-state", token, nil)
	expect(t, w, http.StatusOK, "")
	if env := decode(t, w, nil); string(env.Data) != "null" {
		t.Errorf("empty form state = %s", env.Data)
	}

	expect(t, s.do(http.MethodPut, "/api/v1/form-state", token,
		model.FormState{Board: model.BoardCBSE, Subject: "Maths", Chapters: []string{"Algebra"}}), http.StatusOK, "")
	w = s.do(http.MethodGet, "/api/v1/form-state", token, nil)
	var state model.FormState
	decode(t, w, &state)
	if state.Board != model.BoardICSE || state.Subject != "Maths" {
		t.Errorf("form state = %+v", state)
	}
	expect(t, s.do(http.MethodDelete, "/api/v1/form-state", token, nil), http.StatusOK, "")

	w = s.do(http.MethodGet, "/api/v1/catalog/boards", token, nil)
	expect(t, w, http.StatusOK, "")
	var boards []string
	decode(t, w, &boards)
	if len(boards) != 3 || w.Header().Get("Cache-Control") != "private, max-age=3600" {
		t.Errorf("boards = %v, Cache-Control = %q", boards, w.Header().Get("Cache-Control"))
	}
}
