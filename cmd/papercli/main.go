package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/logger"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/remote"
	"github.com/stemsi/paperdesk/internal/service"
	"github.com/stemsi/paperdesk/internal/storage"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	maxWidth     = 120
)

// app bundles what every command needs.
type app struct {
	papers  *service.PaperService
	exports *service.ExportService
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	// stdout carries exported data, so logs go to stderr.
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Open Cache Store ──────────────────────────────────────────────
	blobs, closeStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache store")
	}
	defer closeStore()

	generator := remote.NewClient(cfg.GeneratorURL, cfg.GeneratorTimeout, log)
	papers := service.NewPaperService(storage.NewPaperStore(blobs, log), generator, log)
	a := &app{
		papers:  papers,
		exports: service.NewExportService(cfg, papers, log),
	}

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "list":
		return a.list(ctx)
	case "show":
		return a.show(ctx, args)
	case "pdf":
		return a.pdf(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "export":
		_, err := os.Stdout.Write(a.papers.ExportPapers(ctx))
		return err
	case "import":
		return a.importFile(ctx, args)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) list(ctx context.Context) error {
	saved := a.papers.ListPapers(ctx)
	if len(saved) == 0 {
		fmt.Println("No papers cached")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, p := range saved {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Title, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	info := a.papers.StorageInfo(ctx)
	fmt.Fprintf(tw, "\n%d papers, %s\n", info.Count, info.Size)
	return tw.Flush()
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	answers := fs.Bool("answers", false, "Show the answer key")
	school := fs.String("school", "", "School name for the header")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("show requires a paper id")
	}

	out, err := a.exports.Text(ctx, fs.Arg(0), printRequest(*answers, *school), nil, terminalWidth())
	if err != nil {
		return describe(err)
	}
	_, err = os.Stdout.Write(out.Body)
	return err
}

func (a *app) pdf(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	answers := fs.Bool("answers", false, "Export the answer key")
	school := fs.String("school", "", "School name for the header")
	outPath := fs.String("o", "", "Output file (default: the generated file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("pdf requires a paper id")
	}

	out, err := a.exports.PDF(ctx, fs.Arg(0), printRequest(*answers, *school), nil)
	if err != nil {
		return describe(err)
	}

	path := *outPath
	if path == "" {
		path = out.Filename
	}
	if err := os.WriteFile(path, out.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Println("Wrote", path)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete requires a paper id")
	}
	if !a.papers.DeletePaper(ctx, args[0]) {
		return fmt.Errorf("paper %s not found", args[0])
	}
	fmt.Println("Deleted", args[0])
	return nil
}

func (a *app) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("import requires a file")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := a.papers.ImportPapers(ctx, data); err != nil {
		return err
	}
	info := a.papers.StorageInfo(ctx)
	fmt.Printf("Imported. %d papers cached (%s)\n", info.Count, info.Size)
	return nil
}

func printRequest(answers bool, school string) model.PrintRequest {
	req := model.PrintRequest{IsAnswerKey: answers}
	if school != "" {
		req.School = &model.SchoolDetails{SchoolName: school}
	}
	return req
}

// describe prefers the generation service's user-facing message.
func describe(err error) error {
	if msg := remote.Message(err); msg != "" && msg != err.Error() {
		return errors.New(msg)
	}
	return err
}

// terminalWidth is the width of stdout when it is a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return min(w, maxWidth)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: papercli <command> [args]

Commands:
  list                                   List cached papers
  show [-answers] [-school name] <id>    Print a paper or its answer key as text
  pdf [-answers] [-school name] [-o file] <id>
                                         Export a paper or its answer key as PDF
  delete <id>                            Delete a paper and its answer key
  export                                 Write every cached paper as JSON to stdout
  import <file>                          Merge papers from a JSON export`)
}
