package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, zerolog.Nop())
}

func TestGeneratePaper(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate-paper" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req model.GenerationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Subject != "Science" || req.Distribution.MCQCount != 4 {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"paper_id":"p1","metadata":{"board":"CBSE","class_level":"10","subject":"Science","chapters":["Light"],"difficulty":"High","marks":50,"generated_at":"now"},
			"sections":[{"type":"MCQ","total_marks":10,"questions":[{"question":"Q","options":{"A":"x","B":"y"},"answer":"x","marks":5}]}]}`))
	})

	paper, err := c.GeneratePaper(context.Background(), &model.GenerationRequest{
		Board: model.BoardCBSE, Subject: "Science", Distribution: model.QuestionDistribution{MCQCount: 4},
	})
	if err != nil {
		t.Fatalf("GeneratePaper: %v", err)
	}
	if paper.ID != "p1" || len(paper.Sections) != 1 {
		t.Fatalf("paper = %+v", paper)
	}
	if opts := paper.Sections[0].Questions[0].Options; len(opts) != 2 || opts[1] != "y" {
		t.Errorf("options = %v", opts)
	}
}

func TestGeneratePaperErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		check   func(error) bool
	}{
		{
			name:    "validation list",
			status:  422,
			body:    `{"detail":[{"loc":["body","total_marks"],"msg":"must be positive"},{"loc":["body","chapters",0],"msg":"required"}]}`,
			wantMsg: "Validation Error: body.total_marks: must be positive, body.chapters.0: required",
			check:   func(err error) bool { var v *ValidationError; return errors.As(err, &v) },
		},
		{
			name:    "validation string",
			status:  422,
			body:    `{"detail":"bad distribution"}`,
			wantMsg: "Validation Error: bad distribution",
			check:   func(err error) bool { var v *ValidationError; return errors.As(err, &v) },
		},
		{
			name:    "server error",
			status:  500,
			body:    `{"detail":"boom"}`,
			wantMsg: serverMessage,
			check:   func(err error) bool { return errors.Is(err, ErrServer) },
		},
		{
			name:    "other status with detail",
			status:  400,
			body:    `{"detail":"subject not supported"}`,
			wantMsg: "subject not supported",
			check:   func(err error) bool { var a *APIError; return errors.As(err, &a) && a.Status == 400 },
		},
		{
			name:    "other status without body",
			status:  503,
			body:    ``,
			wantMsg: "Failed to generate paper",
			check:   func(err error) bool { var a *APIError; return errors.As(err, &a) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.GeneratePaper(context.Background(), &model.GenerationRequest{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
			if got := Message(err); got != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestServerErrorOnlySpecialForGeneration(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		_, _ = w.Write([]byte(`{"detail":"answer model offline"}`))
	})
	_, err := c.GenerateAnswerKey(context.Background(), "p1")
	if errors.Is(err, ErrServer) {
		t.Fatal("answer key 500 mapped to the generation message")
	}
	if Message(err) != "answer model offline" {
		t.Errorf("Message = %q", Message(err))
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 20*time.Millisecond, zerolog.Nop())

	_, err := c.GeneratePaper(context.Background(), &model.GenerationRequest{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if !strings.HasPrefix(Message(err), "Request timed out.") {
		t.Errorf("Message = %q", Message(err))
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, zerolog.Nop())
	_, err := c.GetPaper(context.Background(), "p1")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if Message(err) != networkMessage {
		t.Errorf("Message = %q", Message(err))
	}
}

func TestGenerateAnswerKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path != "/generate-answers" || body["paper_id"] != "p9" {
			t.Errorf("unexpected request %s %v", r.URL.Path, body)
		}
		_, _ = w.Write([]byte(`{"metadata":{"board":"SSC"},"sections":[]}`))
	})
	key, err := c.GenerateAnswerKey(context.Background(), "p9")
	if err != nil {
		t.Fatal(err)
	}
	if key.ID != "p9" {
		t.Errorf("answer key id = %q", key.ID)
	}
}

func TestReplaceQuestion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req model.ReplaceQuestionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.PaperID != "p1" || req.SectionIndex != 1 || req.QuestionIndex != 2 || req.QuestionText != "old" {
			t.Errorf("request = %+v", req)
		}
		_, _ = w.Write([]byte(`{"success":true,"new_question":{"question":"new","answer":"a","marks":2},"message":"ok"}`))
	})
	res, err := c.ReplaceQuestion(context.Background(), model.ReplaceQuestionRequest{PaperID: "p1", SectionIndex: 1, QuestionIndex: 2, QuestionText: "old"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.NewQuestion == nil || res.NewQuestion.Text != "new" || res.NewQuestion.HasOptions() {
		t.Errorf("result = %+v", res)
	}
}

func TestGetPaperEscapesID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/paper/a%2Fb" {
			t.Errorf("path = %s", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte(`{"paper_id":"a/b","metadata":{},"sections":[]}`))
	})
	if _, err := c.GetPaper(context.Background(), "a/b"); err != nil {
		t.Fatal(err)
	}
}

func TestLoginAndVerify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req model.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Invalid username or password"}`))
				return
			}
			_, _ = w.Write([]byte(`{"success":true,"school":{"username":"gv","school_name":"Green Valley","board":"CBSE","is_active":true}}`))
		case "/auth/verify":
			if r.URL.Query().Get("username") != "gv" {
				_, _ = w.Write([]byte(`{"success":false}`))
				return
			}
			_, _ = w.Write([]byte(`{"success":true,"school":{"username":"gv","school_name":"Green Valley Renamed"}}`))
		}
	})
	ctx := context.Background()

	school, err := c.Login(ctx, "gv", "secret")
	if err != nil || school.SchoolName != "Green Valley" {
		t.Fatalf("Login = %+v, %v", school, err)
	}
	if _, err := c.Login(ctx, "gv", "wrong"); Message(err) != "Invalid username or password" {
		t.Errorf("bad login message = %q", Message(err))
	}

	school, err = c.Verify(ctx, "gv")
	if err != nil || school.SchoolName != "Green Valley Renamed" {
		t.Errorf("Verify = %+v, %v", school, err)
	}
	if _, err := c.Verify(ctx, "other"); err == nil {
		t.Error("expected verify failure")
	}
}

func TestCatalogAndHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boards":
			_, _ = w.Write([]byte(`["CBSE","ICSE","SSC"]`))
		case "/health":
			_, _ = w.Write([]byte(`{"status":"healthy","version":"1.0.0","timestamp":"t"}`))
		default:
			w.WriteHeader(404)
		}
	})
	raw, err := c.Catalog(context.Background(), CatalogBoards)
	if err != nil || string(raw) != `["CBSE","ICSE","SSC"]` {
		t.Errorf("Catalog = %s, %v", raw, err)
	}
	h, err := c.Health(context.Background())
	if err != nil || h.Status != "healthy" {
		t.Errorf("Health = %+v, %v", h, err)
	}
	if _, err := c.Catalog(context.Background(), CatalogSubjects); Message(err) != "Failed to fetch subjects" {
		t.Errorf("404 message = %q", Message(err))
	}
}
