package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"visa-advisory-portal/internal/checklist"
	"visa-advisory-portal/internal/portal"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Show required categories and the status of each one",
	RunE:  runChecklist,
}

var uploadFlags struct {
	category     string
	familyMember string
	resubmit     bool
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document for a checklist category",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete one of your documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var watchFlags struct {
	interval time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the document list and print progress when it changes",
	RunE:  runWatch,
}

func init() {
	f := uploadCmd.Flags()
	f.StringVar(&uploadFlags.category, "category", "", "Checklist category (required)")
	f.StringVar(&uploadFlags.familyMember, "family-member", "", "Family member the document belongs to")
	f.BoolVar(&uploadFlags.resubmit, "resubmit", false, "Replace a rejected document")
	_ = uploadCmd.MarkFlagRequired("category")

	watchCmd.Flags().DurationVar(&watchFlags.interval, "interval", portal.DefaultPollInterval, "Polling interval")
}

func newPortal(ctx context.Context) (*portal.Portal, error) {
	client, log, err := newClient()
	if err != nil {
		return nil, err
	}
	p := portal.New(client, portal.WithLogger(log))
	if err := p.Refresh(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func runChecklist(cmd *cobra.Command, _ []string) error {
	p, err := newPortal(cmd.Context())
	if err != nil {
		return err
	}
	printChecklist(cmd.OutOrStdout(), p.Checklist())
	return nil
}

func printChecklist(out io.Writer, c checklist.Checklist) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSTATUS\tFILES")
	for _, name := range c.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", name, c.Status(name), len(c.ByCategory[name]))
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "\nProgress: %d%% (%d/%d)\n", c.Progress, c.Completed, len(c.Categories))
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	file, err := readFile(args[0])
	if err != nil {
		return err
	}

	p, err := newPortal(ctx)
	if err != nil {
		return err
	}

	uploader := p.NewUploader()
	if uploadFlags.resubmit {
		uploader.SelectResubmission(uploadFlags.category, file)
	} else {
		uploader.Select(uploadFlags.category, file)
	}
	uploader.SetFamilyMember(uploadFlags.familyMember)

	doc, err := uploader.Submit(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Uploaded %s as %s (%s)\n", doc.OriginalName, doc.ID, doc.Status)
	fmt.Fprintf(out, "Progress: %d%%\n", p.Checklist().Progress)
	return nil
}

func readFile(path string) (portal.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return portal.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(content)
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	return portal.File{Name: filepath.Base(path), MimeType: mimeType, Content: content}, nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, err := newPortal(ctx)
	if err != nil {
		return err
	}
	if err := p.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s, progress %d%%\n", args[0], p.Checklist().Progress)
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPortal(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	last := -1
	p.OnChange(func(c checklist.Checklist) {
		if c.Progress == last {
			return
		}
		last = c.Progress
		fmt.Fprintf(out, "%s progress %d%% (%d/%d)\n", time.Now().Format(time.TimeOnly), c.Progress, c.Completed, len(c.Categories))
	})
	printChecklist(out, p.Checklist())

	p.Watch(ctx, watchFlags.interval)
	return nil
}
