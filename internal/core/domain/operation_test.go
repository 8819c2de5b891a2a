package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_IsPending(t *testing.T) {
	text := ""
	assert.True(t, (&Document{}).IsPending())
	assert.False(t, (&Document{ExtractedText: &text}).IsPending())
	assert.False(t, (&Document{ExtractedFields: map[string]any{}}).IsPending())
}

func TestDocument_Kinds(t *testing.T) {
	pdf := Document{MIMEType: "Application/PDF"}
	img := Document{MIMEType: "image/png"}

	assert.True(t, pdf.IsPDF())
	assert.False(t, pdf.IsImage())
	assert.True(t, img.IsImage())
	assert.Empty(t, img.Text())
}

func TestThumbnailFor(t *testing.T) {
	assert.Equal(t, "file:///a.png", ThumbnailFor("image/png", "file:///a.png"))
	assert.Equal(t, PDFPlaceholderThumbnail, ThumbnailFor(PDFMIMEType, "file:///a.pdf"))
}

func TestCreateOperationRequest_Validate(t *testing.T) {
	upload := Upload{FileName: "a.pdf", MIMEType: PDFMIMEType, Data: []byte("%PDF")}
	many := make([]Upload, MaxDocumentsPerCall+1)
	for i := range many {
		many[i] = upload
	}

	tests := []struct {
		name    string
		req     CreateOperationRequest
		wantErr bool
	}{
		{"valid", CreateOperationRequest{ClientName: "Acme", ClientID: "76.123.456-7", Uploads: []Upload{upload}}, false},
		{"missing name", CreateOperationRequest{ClientID: "1", Uploads: []Upload{upload}}, true},
		{"blank id", CreateOperationRequest{ClientName: "Acme", ClientID: "  ", Uploads: []Upload{upload}}, true},
		{"no uploads", CreateOperationRequest{ClientName: "Acme", ClientID: "1"}, true},
		{"too many uploads", CreateOperationRequest{ClientName: "Acme", ClientID: "1", Uploads: many}, true},
		{"unnamed upload", CreateOperationRequest{ClientName: "Acme", ClientID: "1", Uploads: []Upload{{}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewCandidateDocument(t *testing.T) {
	text := strings.Repeat("á", 30)
	doc := Document{ID: "d", ExtractedText: &text}
	q := CandidateQuery{MaxTextChars: 10, MaxFieldsChars: 5}.WithDefaults()

	c := NewCandidateDocument(doc, `{"a":1}`, q)
	assert.Equal(t, strings.Repeat("á", 10), c.Text)
	assert.Equal(t, `{"a":1`, c.FieldsJSON)

	bad := NewCandidateDocument(doc, `{not json`, q)
	assert.Equal(t, "{}", bad.FieldsJSON)

	empty := NewCandidateDocument(Document{}, "", q)
	assert.Equal(t, "{}", empty.FieldsJSON)
	assert.Empty(t, empty.Text)
}

func TestFieldsJSON(t *testing.T) {
	assert.Equal(t, "{}", FieldsJSON(nil))
	assert.Equal(t, `{"rut":"1-9"}`, FieldsJSON(map[string]any{"rut": "1-9"}))
	assert.Equal(t, "{}", FieldsJSON(map[string]any{"bad": func() {}}))
}

func TestChatMessage_Variants(t *testing.T) {
	u := UserMessage("1", "hola")
	assert.False(t, u.IsAssistant())
	assert.Nil(t, u.Matches)

	a := AssistantMessage("2", Answer{Text: "ok", Source: AnswerSourceLLM, Matches: []PublicMatch{{DocumentID: "d"}}})
	assert.True(t, a.IsAssistant())
	assert.Equal(t, AnswerSourceLLM, a.Source)
	assert.Len(t, a.Matches, 1)
}

func TestJobState_IsTerminal(t *testing.T) {
	assert.False(t, JobStateQueued.IsTerminal())
	assert.False(t, JobStateRunning.IsTerminal())
	assert.True(t, JobStateDone.IsTerminal())
	assert.True(t, JobStateFailed.IsTerminal())
}
