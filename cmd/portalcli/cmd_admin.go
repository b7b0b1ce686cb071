package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"visa-advisory-portal/internal/model"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Reviewer commands, requires an admin account",
}

var adminDocumentsFlags struct {
	status string
	limit  int
}

var adminDocumentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List uploaded documents across clients",
	RunE:  runAdminDocuments,
}

var adminReviewFlags struct {
	status string
	notes  string
}

var adminReviewCmd = &cobra.Command{
	Use:   "review <document-id>",
	Short: "Approve or reject a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminReview,
}

func init() {
	adminDocumentsCmd.Flags().StringVar(&adminDocumentsFlags.status, "status", string(model.DocumentPending), "Filter by status, empty for all")
	adminDocumentsCmd.Flags().IntVar(&adminDocumentsFlags.limit, "limit", 50, "Maximum number of documents")

	f := adminReviewCmd.Flags()
	f.StringVar(&adminReviewFlags.status, "status", "", "approved or rejected (required)")
	f.StringVar(&adminReviewFlags.notes, "notes", "", "Notes shown to the client")
	_ = adminReviewCmd.MarkFlagRequired("status")

	adminCmd.AddCommand(adminDocumentsCmd)
	adminCmd.AddCommand(adminReviewCmd)
}

func runAdminDocuments(cmd *cobra.Command, _ []string) error {
	client, log, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	docs, err := client.AdminDocuments(cmd.Context(), model.DocumentStatus(adminDocumentsFlags.status), adminDocumentsFlags.limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tSTATUS\tFILE\tUPLOADED")
	for _, doc := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", doc.ID, doc.Category, doc.Status, doc.OriginalName, doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runAdminReview(cmd *cobra.Command, args []string) error {
	status := model.DocumentStatus(adminReviewFlags.status)
	if status != model.DocumentApproved && status != model.DocumentRejected {
		return fmt.Errorf("status must be %q or %q", model.DocumentApproved, model.DocumentRejected)
	}

	client, log, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	doc, err := client.ReviewDocument(cmd.Context(), args[0], status, adminReviewFlags.notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", doc.Category, doc.ID, doc.Status)
	return nil
}
