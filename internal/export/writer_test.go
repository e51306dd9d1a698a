package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gasdoc/internal/domain"
	"gasdoc/internal/service"
)

func sampleResults() []service.BatchResult {
	return []service.BatchResult{
		{
			Name: "arthit.pdf",
			Result: &service.ProcessResult{
				DocumentType:   domain.DocTypeSinglePlatformStatement,
				Classification: &domain.ClassificationResult{DocumentType: domain.DocTypeSinglePlatformStatement, Confidence: 92},
				Output: domain.OutputRecord{
					"statements": []any{
						map[string]any{"statement_number": "08-18/2025", "total_sale_volume": json.Number("9580877"), "confidence_score": 97.0},
					},
					"overall_confidence_score": 88.0,
				},
				OverallConfidence: 88,
				ModelUsed:         "gemini-2.0-flash",
				RowIssues:         []domain.SchemaValidationError{{Field: "total_sale_volume", Row: 1}},
			},
		},
		{
			Name:   "blank.pdf",
			Result: &service.ProcessResult{DocumentType: domain.DocTypeUnknown, Classification: &domain.ClassificationResult{}},
			Err:    &domain.UnsupportedTypeError{DocumentType: domain.DocTypeUnknown},
		},
		{Name: "broken.pdf", Err: errors.New("extractor unavailable")},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Len(t, row, 10)
	assert.Equal(t, "Document Name", row[0])
	assert.Equal(t, "Output", row[9])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults()))

	require.True(t, bytes.HasPrefix(buf.Bytes(), BOM))
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	ok := records[1]
	assert.Equal(t, []string{"arthit.pdf", "ok", "single_platform_statement", "92", "88", "gemini-2.0-flash", "1", "1", ""}, ok[:9])
	assert.JSONEq(t, `{"statements":[{"statement_number":"08-18/2025","total_sale_volume":9580877,"confidence_score":97}],
		"overall_confidence_score":88}`, ok[9])

	unknown := records[2]
	assert.Equal(t, "failed", unknown[1])
	assert.Equal(t, "unknown", unknown[2])
	assert.Equal(t, "0", unknown[3])
	assert.Equal(t, "DocumentType=unknown cannot be processed", unknown[8])
	assert.Empty(t, unknown[9])

	broken := records[3]
	assert.Equal(t, "failed", broken[1])
	assert.Empty(t, broken[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Summary", "Rows"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, "Document Name", summary[0][0])
	assert.Equal(t, "arthit.pdf", summary[1][0])

	rows, err := f.GetRows("Rows")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"arthit.pdf", "single_platform_statement", "statements", "1", "confidence_score", "97"}, rows[1])
	assert.Equal(t, []string{"arthit.pdf", "single_platform_statement", "statements", "1", "statement_number", "08-18/2025"}, rows[2])
	assert.Equal(t, "9580877", rows[3][5])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("json")
	assert.Error(t, err)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "Aug_2025_batch_2025-08-31.csv", BuildFilename("Aug 2025 / batch", FormatCSV, now))
	assert.Equal(t, "a-b_c", SanitizeFilename("__a-b   c__"))
}
