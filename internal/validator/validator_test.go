package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/model"
)

func bindBody(t *testing.T, body string, dst any) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindGenerationRequest(t *testing.T) {
	valid := `{"board":"CBSE","class_level":"10","subject":"Science","chapters":["Light"],
		"total_marks":50,"difficulty_percentage":60,"distribution":{"mcq_count":5,"mcq_marks":1}}`

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "valid", body: valid},
		{
			name:      "unknown board",
			body:      strings.Replace(valid, `"CBSE"`, `"IB"`, 1),
			wantField: "board",
		},
		{
			name:      "no chapters",
			body:      strings.Replace(valid, `["Light"]`, `[]`, 1),
			wantField: "chapters",
		},
		{
			name:      "difficulty too low",
			body:      strings.Replace(valid, `"difficulty_percentage":60`, `"difficulty_percentage":5`, 1),
			wantField: "difficulty_percentage",
		},
		{
			name:      "no questions requested",
			body:      strings.Replace(valid, `"mcq_count":5`, `"mcq_count":0`, 1),
			wantField: "distribution",
		},
		{
			name:      "malformed json",
			body:      `{"board":`,
			wantField: "detail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.GenerationRequest
			fields := bindBody(t, tt.body, &req)
			if tt.wantField == "" {
				if fields != nil {
					t.Fatalf("unexpected errors: %v", fields)
				}
				return
			}
			msg, ok := fields[tt.wantField]
			if !ok || msg == "" {
				t.Errorf("fields = %v, want an error on %q", fields, tt.wantField)
			}
		})
	}
}

func TestDistributionMessage(t *testing.T) {
	var req model.GenerationRequest
	fields := bindBody(t, `{"board":"SSC","class_level":"9","subject":"Maths","chapters":["Algebra"],
		"total_marks":20,"difficulty_percentage":50,"distribution":{}}`, &req)
	if got := fields["distribution"]; got != "distribution must request at least one question" {
		t.Errorf("message = %q", got)
	}
}
