package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
)

// operationStore implements driven.OperationStore.
type operationStore struct {
	store *Store
}

var _ driven.OperationStore = (*operationStore)(nil)

const documentColumns = `id, operation_id, file_name, mime_type, storage_url, thumbnail_url,
	extracted_text, extracted_fields, created_at`

// CreateOperation stores an operation together with its documents.
func (s *operationStore) CreateOperation(ctx context.Context, op *domain.Operation) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO operations (id, client_name, client_id, ai_summary, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, op.ID, op.ClientName, op.ClientID, op.AISummary, op.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("saving operation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range op.Documents {
		doc := &op.Documents[i]
		fields, err := fieldsColumn(doc.ExtractedFields)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, op.ID, doc.FileName, doc.MIMEType,
			doc.StorageURL, doc.ThumbnailURL, textColumn(doc.ExtractedText), fields,
			doc.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("saving document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetOperation retrieves an operation with its documents, newest first.
func (s *operationStore) GetOperation(ctx context.Context, id string) (*domain.Operation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, client_name, client_id, ai_summary, created_at
		FROM operations WHERE id = ?
	`, id)

	op, err := scanOperation(row)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentsOf(ctx, []string{op.ID})
	if err != nil {
		return nil, err
	}
	op.Documents = docs[op.ID]
	if op.Documents == nil {
		op.Documents = []domain.Document{}
	}
	return op, nil
}

// ListOperations returns the most recent operations with their documents.
func (s *operationStore) ListOperations(ctx context.Context, limit int) ([]domain.Operation, error) {
	ops, err := s.recentOperations(ctx, "", limit, 0)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentsOf(ctx, operationIDs(ops))
	if err != nil {
		return nil, err
	}
	for i := range ops {
		ops[i].Documents = docs[ops[i].ID]
		if ops[i].Documents == nil {
			ops[i].Documents = []domain.Document{}
		}
	}
	return ops, nil
}

// DeleteOperation removes an operation; documents go with it through the cascade.
func (s *operationStore) DeleteOperation(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM operations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting operation: %w", err)
	}
	return requireAffected(res)
}

// UpdateSummary replaces the AI summary of an operation.
func (s *operationStore) UpdateSummary(ctx context.Context, id, summary string) error {
	res, err := s.store.db.ExecContext(ctx, "UPDATE operations SET ai_summary = ? WHERE id = ?", summary, id)
	if err != nil {
		return fmt.Errorf("updating summary: %w", err)
	}
	return requireAffected(res)
}

// GetDocument retrieves a single document by ID.
func (s *operationStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents WHERE id = ?
	`, id)

	doc, _, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// SaveExtraction stores the extraction result of a document.
func (s *operationStore) SaveExtraction(ctx context.Context, documentID string, result *domain.ExtractionResult) error {
	fieldsMap := result.Fields
	if fieldsMap == nil {
		fieldsMap = map[string]any{}
	}
	fields, err := fieldsColumn(fieldsMap)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET extracted_text = ?, extracted_fields = ? WHERE id = ?
	`, result.Text, fields, documentID)
	if err != nil {
		return fmt.Errorf("saving extraction: %w", err)
	}
	return requireAffected(res)
}

// LoadCandidates returns the bounded search universe.
// Text is cut in SQL; fields are cut after validation so truncation
// never turns valid JSON into "{}".
func (s *operationStore) LoadCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.CandidateOperation, error) {
	q = q.WithDefaults()

	ops, err := s.recentOperations(ctx, q.OperationID, q.MaxOperations, q.MaxSummaryChars)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return []domain.CandidateOperation{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, operation_id, file_name, mime_type, storage_url, thumbnail_url,
			substr(extracted_text, 1, ?), extracted_fields, created_at
		FROM documents
		WHERE operation_id IN (`+placeholders(len(ops))+`)
		ORDER BY created_at DESC, id
	`, append([]any{q.MaxTextChars}, idArgs(operationIDs(ops))...)...)
	if err != nil {
		return nil, fmt.Errorf("querying candidate documents: %w", err)
	}
	defer rows.Close()

	byOperation := make(map[string][]domain.CandidateDocument, len(ops))
	for rows.Next() {
		doc, fieldsJSON, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		byOperation[doc.OperationID] = append(byOperation[doc.OperationID],
			domain.NewCandidateDocument(*doc, fieldsJSON, q))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidate documents: %w", err)
	}

	candidates := make([]domain.CandidateOperation, 0, len(ops))
	for i := range ops {
		candidates = append(candidates, domain.CandidateOperation{
			ID:         ops[i].ID,
			ClientName: ops[i].ClientName,
			ClientID:   ops[i].ClientID,
			Summary:    ops[i].AISummary,
			CreatedAt:  ops[i].CreatedAt,
			Documents:  byOperation[ops[i].ID],
		})
	}
	return candidates, nil
}

// recentOperations loads operations newest first. A non-empty id loads only
// that operation; summaryChars > 0 truncates the summary in SQL.
func (s *operationStore) recentOperations(ctx context.Context, id string, limit, summaryChars int) ([]domain.Operation, error) {
	summary := "ai_summary"
	args := []any{}
	if summaryChars > 0 {
		summary = "substr(ai_summary, 1, ?)"
		args = append(args, summaryChars)
	}

	query := "SELECT id, client_name, client_id, " + summary + ", created_at FROM operations"
	if id != "" {
		query += " WHERE id = ?"
		args = append(args, id)
	}
	query += " ORDER BY created_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	ops := []domain.Operation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}
	return ops, nil
}

// documentsOf loads the documents of the given operations, newest first.
func (s *operationStore) documentsOf(ctx context.Context, ids []string) (map[string][]domain.Document, error) {
	out := make(map[string][]domain.Document, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE operation_id IN (`+placeholders(len(ids))+`)
		ORDER BY created_at DESC, id
	`, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, _, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out[doc.OperationID] = append(out[doc.OperationID], *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return out, nil
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanOperation scans an operation without its documents.
func scanOperation(row scanner) (*domain.Operation, error) {
	var op domain.Operation
	var createdAt time.Time
	if err := row.Scan(&op.ID, &op.ClientName, &op.ClientID, &op.AISummary, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning operation: %w", err)
	}
	op.CreatedAt = createdAt.UTC()
	return &op, nil
}

// scanDocument scans a document and returns its raw fields JSON alongside.
// sql.ErrNoRows is returned unwrapped.
func scanDocument(row scanner) (*domain.Document, string, error) {
	var doc domain.Document
	var text, fields sql.NullString
	var createdAt time.Time

	if err := row.Scan(&doc.ID, &doc.OperationID, &doc.FileName, &doc.MIMEType,
		&doc.StorageURL, &doc.ThumbnailURL, &text, &fields, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("scanning document: %w", err)
	}
	doc.CreatedAt = createdAt.UTC()

	if text.Valid {
		doc.ExtractedText = &text.String
	}
	if fields.Valid {
		doc.ExtractedFields = map[string]any{}
		// Malformed fields degrade to an empty object.
		_ = json.Unmarshal([]byte(fields.String), &doc.ExtractedFields)
		if doc.ExtractedFields == nil {
			doc.ExtractedFields = map[string]any{}
		}
	}

	return &doc, fields.String, nil
}

func textColumn(text *string) sql.NullString {
	if text == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *text, Valid: true}
}

func fieldsColumn(fields map[string]any) (sql.NullString, error) {
	if fields == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshalling extracted fields: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func operationIDs(ops []domain.Operation) []string {
	ids := make([]string, len(ops))
	for i := range ops {
		ids[i] = ops[i].ID
	}
	return ids
}
