package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/custodia-labs/megafile/internal/adapters/driving/view"
	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/services"
)

const defaultListLimit = 50

// searchRequest is the body of /api/search and /api/ask.
type searchRequest struct {
	Question    string `json:"question"`
	OperationID string `json:"operationId"`
	Mode        string `json:"mode"`
}

func (r searchRequest) toDomain() (domain.SearchRequest, error) {
	if err := services.ValidateQuestion(r.Question); err != nil {
		return domain.SearchRequest{}, err
	}
	req := domain.SearchRequest{Question: r.Question, OperationID: strings.TrimSpace(r.OperationID)}
	if r.Mode != "" {
		mode, err := domain.ParseSearchMode(r.Mode)
		if err != nil {
			return domain.SearchRequest{}, err
		}
		req.Mode = mode
	}
	return req, nil
}

func bindSearch(c *gin.Context) (domain.SearchRequest, bool) {
	var body searchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return domain.SearchRequest{}, false
	}
	req, err := body.toDomain()
	if err != nil {
		writeError(c, err)
		return domain.SearchRequest{}, false
	}
	return req, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSearch(c *gin.Context) {
	req, ok := bindSearch(c)
	if !ok {
		return
	}

	result, err := s.ports.Search.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	matches := domain.PublicMatches(result.Matches)
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

func (s *Server) handleAsk(c *gin.Context) {
	if s.ports.Assistant == nil {
		c.AbortWithStatusJSON(http.StatusNotImplemented, errorResponse{Error: "assistant not configured"})
		return
	}
	req, ok := bindSearch(c)
	if !ok {
		return
	}

	answer, err := s.ports.Assistant.Ask(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleListOperations(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(c, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	ops, err := s.ports.Operation.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewOperations(ops))
}

func (s *Server) handleCreateOperation(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, fmt.Errorf("%w: expected a multipart form: %v", domain.ErrInvalidInput, err))
		return
	}

	req := domain.CreateOperationRequest{
		ClientName: strings.TrimSpace(c.PostForm("clientName")),
		ClientID:   strings.TrimSpace(firstNonEmpty(c.PostForm("clientId"), c.PostForm("clientRut"))),
	}

	thumbnails := parseThumbnails(c.PostForm("thumbnails"))
	for i, fh := range form.File["documents"] {
		upload, err := readUpload(fh)
		if err != nil {
			writeError(c, err)
			return
		}
		if i < len(thumbnails) {
			upload.Thumbnail = thumbnails[i]
		}
		req.Uploads = append(req.Uploads, upload)
	}

	if err := req.Validate(); err != nil {
		writeError(c, fmt.Errorf("%w: client name, client id and at least one document are required", err))
		return
	}

	op, err := s.ports.Operation.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view.NewOperation(op, true))
}

func (s *Server) handleGetOperation(c *gin.Context) {
	op, err := s.ports.Operation.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewOperation(op, true))
}

func (s *Server) handleDeleteOperation(c *gin.Context) {
	if err := s.ports.Operation.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleProcessOperation(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false")) //nolint:errcheck // invalid means false

	job, err := s.ports.Operation.Reprocess(c.Request.Context(), c.Param("id"), force)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (s *Server) handleOperationJobs(c *gin.Context) {
	jobs, err := s.ports.Operation.Jobs(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if jobs == nil {
		jobs = []domain.ExtractionJob{}
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) handleGetDocument(c *gin.Context) {
	doc, err := s.ports.Operation.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewDocument(doc))
}

func (s *Server) handleDocumentContent(c *gin.Context) {
	ctx := c.Request.Context()
	doc, err := s.ports.Operation.GetDocument(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if isRemote(doc.StorageURL) {
		c.Redirect(http.StatusFound, doc.StorageURL)
		return
	}

	doc, data, err := s.ports.Operation.DocumentContent(ctx, doc.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	mimeType := doc.MIMEType
	if mimeType == "" {
		mimeType = domain.DefaultMIMEType
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.FileName))
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, mimeType, data)
}

func (s *Server) handleDocumentHighlights(c *gin.Context) {
	if s.ports.Evidence == nil {
		c.AbortWithStatusJSON(http.StatusNotImplemented, errorResponse{Error: "evidence not configured"})
		return
	}
	question := c.Query("q")
	if err := services.ValidateQuestion(question); err != nil {
		writeError(c, err)
		return
	}

	highlights, err := s.ports.Evidence.Highlights(c.Request.Context(), c.Param("id"), question)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, highlights)
}

// readUpload loads one multipart file. The part's Content-Type wins; sniffing
// is the fallback.
func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == domain.DefaultMIMEType {
		mimeType = http.DetectContentType(data)
		if i := strings.IndexByte(mimeType, ';'); i >= 0 {
			mimeType = mimeType[:i]
		}
	}

	return domain.Upload{FileName: fh.Filename, MIMEType: mimeType, Data: data}, nil
}

// parseThumbnails reads the optional JSON array of client-rendered thumbnails.
// Non-string entries keep their position as empty strings.
func parseThumbnails(raw string) []string {
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil
	}
	items := parsed.Array()
	out := make([]string, len(items))
	for i, item := range items {
		if item.Type == gjson.String {
			out[i] = item.Str
		}
	}
	return out
}

func isRemote(storageURL string) bool {
	return strings.HasPrefix(storageURL, "http://") || strings.HasPrefix(storageURL, "https://")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
