package ranking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

func TestBuildContext_NoMatches(t *testing.T) {
	assert.Equal(t, domain.NoDocumentsContext, BuildContext(nil, 4))
}

func TestBuildContext_TopK(t *testing.T) {
	var matches []domain.SearchMatch
	for _, c := range []string{"c1", "c2", "c3", "c4", "c5"} {
		matches = append(matches, domain.SearchMatch{Context: c})
	}

	got := BuildContext(matches, 4)

	assert.Equal(t, "c1\n\n---\n\nc2\n\n---\n\nc3\n\n---\n\nc4", got)
	assert.Equal(t, 4, len(strings.Split(got, contextSeparator)))
}

func TestContextBlock(t *testing.T) {
	op := juanPerez()

	block := ContextBlock(&op, &op.Documents[0])

	assert.Equal(t,
		"OPERATION=op-juan\nCLIENT=Juan Pérez\nCLIENT_ID=12.345.678-9\n"+
			"DOCUMENT=op-juan-doc:Factura_2026_018.pdf\nFIELDS={\"monto\": 45000}\n"+
			"TEXT=Factura emitida a RUT 12.345.678-9 por servicios",
		block)
}
