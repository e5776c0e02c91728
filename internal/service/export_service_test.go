package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/storage"
)

func newTestExportService(t *testing.T) (*ExportService, *storage.PaperStore, *fakeGenerator) {
	t.Helper()
	papers, store, gen := newTestPaperService(t)
	svc := NewExportService(testConfig(), papers, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC) }
	return svc, store, gen
}

func TestDefaultSchoolDetails(t *testing.T) {
	svc, _, _ := newTestExportService(t)

	d := svc.DefaultSchoolDetails(&model.SchoolData{SchoolName: "Green Valley", Address: "12 Hill Rd"})
	want := model.SchoolDetails{
		SchoolName:   "Green Valley",
		Address:      "12 Hill Rd",
		ExamType:     "Unit Test",
		AcademicYear: "2025-26",
		Date:         "07/03/2025",
		Duration:     "1 Hour",
		Instructions: model.DefaultInstructions,
	}
	if d != want {
		t.Errorf("defaults = %+v\nwant %+v", d, want)
	}

	svc.cfg.DefaultExamType = ""
	if d := svc.DefaultSchoolDetails(nil); d.ExamType != model.DefaultExamType || d.SchoolName != "" {
		t.Errorf("defaults without config = %+v", d)
	}
}

func TestDocumentMergesOverrides(t *testing.T) {
	svc, store, _ := newTestExportService(t)
	ctx := context.Background()
	store.SavePaper(ctx, testPaper("p1"))

	doc, details, _, err := svc.Document(ctx, "p1", model.PrintRequest{
		School: &model.SchoolDetails{ExamType: "Final Examination", Instructions: "  \n"},
	}, &model.SchoolData{SchoolName: "Green Valley"})
	if err != nil {
		t.Fatal(err)
	}
	if details.ExamType != "Final Examination" || details.SchoolName != "Green Valley" {
		t.Errorf("details = %+v", details)
	}
	if len(doc.Instructions) != 5 {
		t.Errorf("blank instructions should fall back to defaults, got %v", doc.Instructions)
	}
	if doc.Title != "QUESTIONS" || doc.Sections[0].Questions[0].Answer != "" {
		t.Error("question paper leaks answers")
	}
}

func TestPDFExport(t *testing.T) {
	svc, store, gen := newTestExportService(t)
	ctx := context.Background()
	store.SavePaper(ctx, testPaper("p1"))
	gen.answerKeys["p1"] = &model.AnswerKey{Paper: *testPaper("p1")}

	paper, err := svc.PDF(ctx, "p1", model.PrintRequest{}, &model.SchoolData{SchoolName: "Green Valley"})
	if err != nil {
		t.Fatal(err)
	}
	if paper.Filename != "Unit Test_Science_Class10.pdf" {
		t.Errorf("filename = %q", paper.Filename)
	}
	if paper.ContentType != "application/pdf" || !bytes.HasPrefix(paper.Body, []byte("%PDF-")) {
		t.Errorf("not a pdf: %s", paper.ContentType)
	}

	key, err := svc.PDF(ctx, "p1", model.PrintRequest{IsAnswerKey: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if key.Filename != "answer-key-p1.pdf" {
		t.Errorf("answer key filename = %q", key.Filename)
	}
	if store.GetAnswerKey(ctx, "p1") == nil {
		t.Error("answer key export did not cache the generated key")
	}
}

func TestPrintAndTextExport(t *testing.T) {
	svc, store, gen := newTestExportService(t)
	ctx := context.Background()
	store.SavePaper(ctx, testPaper("p1"))
	gen.answerKeys["p1"] = &model.AnswerKey{Paper: *testPaper("p1")}

	page, err := svc.Print(ctx, "p1", model.PrintRequest{IsAnswerKey: true}, &model.SchoolData{SchoolName: "Green Valley"})
	if err != nil {
		t.Fatal(err)
	}
	html := string(page.Body)
	if !strings.Contains(page.ContentType, "text/html") || !strings.Contains(html, "Green Valley") || !strings.Contains(html, "ANSWERS") {
		t.Errorf("unexpected print page (%s)", page.ContentType)
	}

	text, err := svc.Text(ctx, "p1", model.PrintRequest{}, nil, 60)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(string(text.Body), "\n") {
		if n := len([]rune(line)); n > 60 {
			t.Errorf("line wider than 60 columns (%d): %q", n, line)
		}
	}
}

func TestExportMissingPaper(t *testing.T) {
	svc, _, _ := newTestExportService(t)
	if _, err := svc.PDF(context.Background(), "nope", model.PrintRequest{}, nil); err == nil {
		t.Error("expected error for a paper that exists nowhere")
	}
}
