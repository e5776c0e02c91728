package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/render"
)

// Export is a rendered document ready to be sent or written.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders papers and answer keys through the shared document
// traversal into the print, PDF and text backends.
type ExportService struct {
	cfg    *config.Config
	papers *PaperService
	pdf    *render.PDFRenderer
	markup *render.MarkupRenderer
	log    zerolog.Logger
	now    func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(cfg *config.Config, papers *PaperService, log zerolog.Logger) *ExportService {
	return &ExportService{
		cfg:    cfg,
		papers: papers,
		pdf:    render.NewPDFRenderer(log),
		markup: render.NewMarkupRenderer(log, true),
		log:    log.With().Str("component", "export_service").Logger(),
		now:    time.Now,
	}
}

// DefaultSchoolDetails returns the print header defaults for a school.
func (s *ExportService) DefaultSchoolDetails(school *model.SchoolData) model.SchoolDetails {
	d := model.DefaultSchoolDetails(school, s.now())
	d.ExamType = s.cfg.DefaultExamType
	d.AcademicYear = s.cfg.DefaultAcademicYear
	d.Duration = s.cfg.DefaultDuration
	return d.Merge(model.DefaultSchoolDetails(school, s.now()))
}

// Document builds the printable document of a paper, or of its answer key
// when req.IsAnswerKey is set. Empty header fields fall back to the
// school's defaults.
func (s *ExportService) Document(ctx context.Context, paperID string, req model.PrintRequest, school *model.SchoolData) (*render.Document, model.SchoolDetails, *model.Paper, error) {
	details := s.DefaultSchoolDetails(school)
	if req.School != nil {
		details = req.School.Merge(details)
	}

	var paper *model.Paper
	if req.IsAnswerKey {
		key, err := s.papers.ResolveAnswerKey(ctx, paperID)
		if err != nil {
			return nil, details, nil, err
		}
		paper = &key.Paper
	} else {
		p, err := s.papers.OpenPaper(ctx, paperID)
		if err != nil {
			return nil, details, nil, err
		}
		paper = p
	}
	return render.BuildDocument(paper, details, req.IsAnswerKey), details, paper, nil
}

// PDF renders a paper or answer key as an A4 PDF.
func (s *ExportService) PDF(ctx context.Context, paperID string, req model.PrintRequest, school *model.SchoolData) (*Export, error) {
	doc, details, paper, err := s.Document(ctx, paperID, req, school)
	if err != nil {
		return nil, err
	}

	filename := render.PaperFilename(details, paper.Metadata)
	if req.IsAnswerKey {
		filename = render.AnswerKeyFilename(paperID)
	}
	return s.render(ctx, s.pdf, doc, filename)
}

// Print renders the browser print view of a paper or answer key.
func (s *ExportService) Print(ctx context.Context, paperID string, req model.PrintRequest, school *model.SchoolData) (*Export, error) {
	doc, _, _, err := s.Document(ctx, paperID, req, school)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, s.markup, doc, "")
}

// Text renders a plain-text preview wrapped at width columns.
func (s *ExportService) Text(ctx context.Context, paperID string, req model.PrintRequest, school *model.SchoolData, width int) (*Export, error) {
	doc, _, _, err := s.Document(ctx, paperID, req, school)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, render.NewTextRenderer(width), doc, "")
}

func (s *ExportService) render(ctx context.Context, r render.Renderer, doc *render.Document, filename string) (*Export, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, doc, &buf); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.log.Error().Err(err).Str("content_type", r.ContentType()).Msg("Failed to render document")
		if errors.Is(err, render.ErrRenderFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", render.ErrRenderFailed, err)
	}
	return &Export{Filename: filename, ContentType: r.ContentType(), Body: buf.Bytes()}, nil
}
