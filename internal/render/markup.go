package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/rs/zerolog"
)

const printTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.ExamType}}{{if .IsAnswerKey}} - Answer Key{{end}}</title>
<style>
  @page { size: A4; margin: 20mm; }
  body { font-family: "Times New Roman", serif; font-size: 11pt; color: #000; margin: 0; }
  .header { text-align: center; margin-bottom: 8px; }
  .school-name { font-size: 18pt; font-weight: bold; margin: 0; }
  .address { font-size: 12pt; margin: 4px 0 10px; }
  .exam-type { font-size: 16pt; font-weight: bold; margin: 0 0 12px; }
  .details-row { display: flex; justify-content: space-between; margin: 4px 0; }
  hr { border: none; border-top: 1.5px solid #000; margin: 8px 0; }
  .instructions { border: 1px solid #000; width: 120mm; margin: 8px auto; padding: 5mm; }
  .instructions h3 { font-size: 12pt; margin: 0 0 4px; }
  .instructions p { font-size: 10pt; margin: 2px 0; }
  .title { font-size: 14pt; font-weight: bold; margin: 12px 0; }
  .section { margin-bottom: 8mm; }
  .section h2 { font-size: 12pt; margin: 0 0 8px; }
  .question { margin: 0 0 8mm 5mm; page-break-inside: avoid; }
  .options { margin: 4px 0 0 10mm; }
  .option { margin: 2px 0; }
  .option.correct { font-weight: bold; color: #2e7d32; }
  .answer { margin: 4px 0 0 5mm; font-weight: bold; }
  .marks { margin: 3px 0 0 5mm; }
</style>
</head>
<body>
<div class="header">
  <p class="school-name">{{.SchoolName}}</p>
  <p class="address">{{.Address}}</p>
  <p class="exam-type">{{.ExamType}}</p>
  <div class="details-row">{{range .ExamRow}}<span><strong>{{.Label}}</strong> {{.Value}}</span>{{end}}</div>
  <div class="details-row">{{range .PaperRow}}<span><strong>{{.Label}}</strong> {{.Value}}</span>{{end}}</div>
</div>
<hr>
<div class="instructions">
  <h3>General Instructions:</h3>
  {{range .Instructions}}<p>{{.}}</p>
  {{end}}
</div>
<hr>
<div class="title">{{.Title}}</div>
{{range .Sections}}<div class="section">
  <h2>{{.Heading}}</h2>
  {{range .Questions}}<div class="question">
    <div class="question-text">{{.Label}}</div>
    {{if .Options}}<div class="options">
      {{range .Options}}<div class="option{{if .Correct}} correct{{end}}">{{.Label}}</div>
      {{end}}
    </div>{{end}}
    {{if .Answer}}<div class="answer">Answer: {{.Answer}}</div>
    <div class="marks">Marks: {{.Marks}}</div>{{end}}
  </div>
  {{end}}
</div>
{{end}}
{{if .AutoPrint}}<script>
  window.addEventListener("load", function () { window.focus(); window.print(); });
  window.addEventListener("afterprint", function () { window.close(); });
</script>{{end}}
</body>
</html>
`

var printTmpl = template.Must(template.New("print").Parse(printTemplate))

// MarkupRenderer produces a self-contained HTML page for the browser print
// dialog. With AutoPrint the page opens the dialog once loaded and closes
// itself when printing finishes.
type MarkupRenderer struct {
	AutoPrint bool
	log       zerolog.Logger
}

// NewMarkupRenderer creates a print markup renderer.
func NewMarkupRenderer(log zerolog.Logger, autoPrint bool) *MarkupRenderer {
	return &MarkupRenderer{
		AutoPrint: autoPrint,
		log:       log.With().Str("component", "markup_renderer").Logger(),
	}
}

// ContentType is the MIME type of the rendered output.
func (r *MarkupRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes doc to w as HTML, buffering so that a template error never
// leaves a truncated page behind.
func (r *MarkupRenderer) Render(ctx context.Context, doc *Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	data := struct {
		*Document
		AutoPrint bool
	}{doc, r.AutoPrint}

	var buf bytes.Buffer
	if err := printTmpl.Execute(&buf, data); err != nil {
		r.log.Error().Err(err).Msg("Print markup generation failed")
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if _, err := io.Copy(w, &buf); err != nil {
		return fmt.Errorf("write markup: %w", err)
	}
	return nil
}
