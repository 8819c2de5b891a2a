package cli

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/megafile/internal/adapters/driving/view"
	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ranking"
)

var operationCmd = &cobra.Command{
	Use:     "operation",
	Aliases: []string{"op"},
	Short:   "Manage client operations",
	Long:    `Create, list, inspect, reprocess or delete client operations and their documents.`,
}

var operationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent operations",
	Args:  cobra.NoArgs,
	RunE:  runOperationList,
}

var operationGetCmd = &cobra.Command{
	Use:   "get [operation-id]",
	Short: "Show an operation with its documents and extracted fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runOperationGet,
}

var operationCreateCmd = &cobra.Command{
	Use:   "create [files...]",
	Short: "Create an operation from local files",
	Long: `Uploads the files as a new operation and queues their extraction.

Example:
  megafile operation create --client-name "Ana Pérez" --client-id 12.345.678-9 carnet.png factura.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOperationCreate,
}

var operationDeleteCmd = &cobra.Command{
	Use:   "delete [operation-id]",
	Short: "Delete an operation and its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runOperationDelete,
}

var operationProcessCmd = &cobra.Command{
	Use:   "process [operation-id]",
	Short: "Queue extraction for pending documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runOperationProcess,
}

var operationStatusCmd = &cobra.Command{
	Use:   "status [operation-id]",
	Short: "Show extraction jobs of an operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runOperationStatus,
}

var operationOpenCmd = &cobra.Command{
	Use:   "open [document-id]",
	Short: "Open a document in the default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runOperationOpen,
}

var (
	opListLimit   int
	opClientName  string
	opClientID    string
	opWait        bool
	opForce       bool
	opJSON        bool
	opWaitTimeout = 2 * time.Minute
	opPollEvery   = 500 * time.Millisecond
)

func init() {
	operationListCmd.Flags().IntVarP(&opListLimit, "limit", "n", 20, "maximum number of operations")
	operationListCmd.Flags().BoolVar(&opJSON, "json", false, "output as JSON")
	operationGetCmd.Flags().BoolVar(&opJSON, "json", false, "output as JSON")

	operationCreateCmd.Flags().StringVar(&opClientName, "client-name", "", "client display name (required)")
	operationCreateCmd.Flags().StringVar(&opClientID, "client-id", "", "client identification number (required)")
	operationCreateCmd.Flags().BoolVarP(&opWait, "wait", "w", false, "wait for extraction to finish")
	operationProcessCmd.Flags().BoolVarP(&opForce, "force", "f", false, "re-extract every document, not only pending ones")
	operationProcessCmd.Flags().BoolVarP(&opWait, "wait", "w", false, "wait for extraction to finish")

	operationCmd.AddCommand(operationListCmd)
	operationCmd.AddCommand(operationGetCmd)
	operationCmd.AddCommand(operationCreateCmd)
	operationCmd.AddCommand(operationDeleteCmd)
	operationCmd.AddCommand(operationProcessCmd)
	operationCmd.AddCommand(operationStatusCmd)
	operationCmd.AddCommand(operationOpenCmd)
	rootCmd.AddCommand(operationCmd)
}

func requireOperationService() error {
	if operationService == nil {
		return errors.New("operation service not configured")
	}
	return nil
}

func runOperationList(cmd *cobra.Command, _ []string) error {
	if err := requireOperationService(); err != nil {
		return err
	}

	ops, err := operationService.List(cmd.Context(), opListLimit)
	if err != nil {
		return fmt.Errorf("failed to list operations: %w", err)
	}
	if opJSON {
		return printJSON(cmd, view.NewOperations(ops))
	}

	if len(ops) == 0 {
		cmd.Println("No operations yet. Create one with 'megafile operation create'.")
		return nil
	}

	p := newPalette(cmd)
	for i := range ops {
		op := &ops[i]
		cmd.Printf("  %s  %s (%s)\n", op.ID, p.Title(op.ClientName), op.ClientID)
		cmd.Printf("    %s, %d documents\n", p.Dim(op.CreatedAt.Format("2006-01-02 15:04")), len(op.Documents))
	}
	cmd.Printf("\nTotal: %d operations\n", len(ops))
	return nil
}

func runOperationGet(cmd *cobra.Command, args []string) error {
	if err := requireOperationService(); err != nil {
		return err
	}

	op, err := operationService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get operation: %w", err)
	}
	if opJSON {
		return printJSON(cmd, view.NewOperation(op, true))
	}

	p := newPalette(cmd)
	cmd.Printf("Operation: %s\n\n", op.ID)
	cmd.Printf("  Client:    %s\n", op.ClientName)
	cmd.Printf("  Client ID: %s\n", op.ClientID)
	cmd.Printf("  Created:   %s\n", op.CreatedAt.Format("2006-01-02 15:04:05"))
	if op.AISummary != "" {
		cmd.Printf("  Summary:   %s\n", strings.ReplaceAll(op.AISummary, "\n", "\n             "))
	}

	cmd.Printf("\n%s\n", p.Title(fmt.Sprintf("Documents (%d)", len(op.Documents))))
	for i := range op.Documents {
		printDocument(cmd, p, &op.Documents[i])
	}
	return nil
}

func printDocument(cmd *cobra.Command, p palette, doc *domain.Document) {
	cmd.Printf("\n  %s  %s %s\n", doc.ID, doc.FileName, p.Dim("["+doc.MIMEType+"]"))
	if doc.IsPending() {
		cmd.Printf("    %s\n", p.Warn("extraction pending"))
		return
	}

	rows := ranking.FlattenFields(domain.FieldsJSON(doc.ExtractedFields))
	if kind := ranking.DocumentType(rows); kind != "" {
		cmd.Printf("    Type: %s\n", kind)
	}
	for _, row := range rows {
		cmd.Printf("    %s: %s\n", row.Label, row.Value)
	}
	if text := doc.Text(); text != "" {
		cmd.Printf("    Text: %s\n", p.Dim(domain.TruncateRunes(strings.Join(strings.Fields(text), " "), 160)))
	}
}

func runOperationCreate(cmd *cobra.Command, args []string) error {
	if err := requireOperationService(); err != nil {
		return err
	}

	req := domain.CreateOperationRequest{ClientName: opClientName, ClientID: opClientID}
	for _, path := range args {
		upload, err := readLocalUpload(path)
		if err != nil {
			return err
		}
		req.Uploads = append(req.Uploads, upload)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("--client-name, --client-id and at least one file are required: %w", err)
	}

	op, err := operationService.Create(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", err)
	}

	cmd.Printf("Created operation %s with %d documents.\n", op.ID, len(op.Documents))
	if !opWait {
		cmd.Printf("Extraction runs in the background; check it with 'megafile operation status %s'.\n", op.ID)
		return nil
	}
	return waitForJobs(cmd, op.ID)
}

func runOperationDelete(cmd *cobra.Command, args []string) error {
	if err := requireOperationService(); err != nil {
		return err
	}
	if err := operationService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	cmd.Printf("Deleted operation %s.\n", args[0])
	return nil
}

func runOperationProcess(cmd *cobra.Command, args []string) error {
	if err := requireOperationService(); err != nil {
		return err
	}

	job, err := operationService.Reprocess(cmd.Context(), args[0], opForce)
	if err != nil {
		return fmt.Errorf("failed to queue extraction: %w", err)
	}
	cmd.Printf("Queued extraction job %s.\n", job.ID)
	if !opWait {
		return nil
	}
	return waitForJobs(cmd, args[0])
}

func runOperationStatus(cmd *cobra.Command, args []string) error {
	if err := requireOperationService(); err != nil {
		return err
	}

	jobs, err := operationService.Jobs(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	if len(jobs) == 0 {
		cmd.Println("No extraction jobs for this operation.")
		return nil
	}
	for i := range jobs {
		printJob(cmd, &jobs[i])
	}
	return nil
}

func runOperationOpen(cmd *cobra.Command, args []string) error {
	if err := requireOperationService(); err != nil {
		return err
	}
	if actionService == nil {
		return errors.New("action service not configured")
	}

	doc, err := operationService.GetDocument(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	match := &domain.PublicMatch{OperationID: doc.OperationID, DocumentID: doc.ID, FileName: doc.FileName, MIMEType: doc.MIMEType}
	if err := actionService.OpenDocument(cmd.Context(), match); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	return nil
}

func printJob(cmd *cobra.Command, job *domain.ExtractionJob) {
	cmd.Printf("  %s  %-8s processed %d, failed %d", job.ID, job.State, job.Processed, job.Failed)
	if job.Force {
		cmd.Print(" (forced)")
	}
	if job.Error != "" {
		cmd.Printf(": %s", job.Error)
	}
	cmd.Println()
}

// waitForJobs polls until the newest job of the operation is terminal.
func waitForJobs(cmd *cobra.Command, operationID string) error {
	ctx := cmd.Context()
	deadline := time.Now().Add(opWaitTimeout)
	ticker := time.NewTicker(opPollEvery)
	defer ticker.Stop()

	cmd.Print("Extracting")
	for {
		jobs, err := operationService.Jobs(ctx, operationID)
		if err != nil {
			cmd.Println()
			return fmt.Errorf("failed to poll jobs: %w", err)
		}
		if len(jobs) > 0 && jobs[0].State.IsTerminal() {
			cmd.Println()
			printJob(cmd, &jobs[0])
			if jobs[0].State == domain.JobStateFailed {
				return fmt.Errorf("extraction failed: %s", jobs[0].Error)
			}
			return nil
		}
		if time.Now().After(deadline) {
			cmd.Println()
			return fmt.Errorf("extraction still running after %s", opWaitTimeout)
		}

		select {
		case <-ctx.Done():
			cmd.Println()
			return ctx.Err()
		case <-ticker.C:
			cmd.Print(".")
		}
	}
}

// readLocalUpload reads a file and guesses its MIME type from the extension,
// then from its content.
func readLocalUpload(path string) (domain.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("reading %s: %w", path, err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}

	return domain.Upload{FileName: filepath.Base(path), MIMEType: mimeType, Data: data}, nil
}
