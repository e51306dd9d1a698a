package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gasdoc/internal/service"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentTypes maps each Format to its MIME type.
var ContentTypes = map[Format]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ParseFormat resolves a format from a name or file extension.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if _, ok := ContentTypes[f]; !ok {
		return "", fmt.Errorf("unsupported export format %q; allowed: csv, xlsx", s)
	}
	return f, nil
}

// columns defines the summary header row.
var columns = []string{
	"Document Name",
	"Status",
	"Document Type",
	"Classification Confidence",
	"Overall Confidence",
	"Model",
	"Row Count",
	"Dropped Rows",
	"Error",
	"Output",
}

// rowColumns defines the header of the long-format row listing.
var rowColumns = []string{
	"Document Name",
	"Document Type",
	"Collection",
	"Row",
	"Field",
	"Value",
}

// Writer wraps csv.Writer for exporting batch results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the summary header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResults converts batch results to CSV rows and writes them.
func (w *Writer) WriteResults(results []service.BatchResult) error {
	for i := range results {
		if err := w.csv.Write(summaryRow(&results[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes the BOM, header and one summary row per result.
func WriteCSV(out io.Writer, results []service.BatchResult) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResults(results); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// summaryRow converts a single result to a row matching columns. Failed documents keep
// their name, status and error; whatever classification is known is still filled in.
func summaryRow(r *service.BatchResult) []string {
	row := make([]string, len(columns))
	row[0] = r.Name
	row[1] = "ok"
	if r.Err != nil {
		row[1] = "failed"
		row[8] = r.Err.Error()
	}

	res := r.Result
	if res == nil {
		return row
	}
	row[2] = string(res.DocumentType)
	if res.Classification != nil {
		row[3] = strconv.Itoa(res.Classification.Confidence)
	}
	if r.Err != nil {
		return row
	}
	row[4] = strconv.FormatFloat(res.OverallConfidence, 'f', -1, 64)
	row[5] = res.ModelUsed
	row[6] = strconv.Itoa(countRows(res.Output))
	row[7] = strconv.Itoa(len(res.RowIssues))
	if b, err := json.Marshal(res.Output); err == nil {
		row[9] = string(b)
	}
	return row
}

// countRows returns the number of items in the output's row collection, if it has one.
func countRows(out map[string]any) int {
	n := 0
	for _, v := range out {
		if items, ok := v.([]any); ok {
			n += len(items)
		}
	}
	return n
}

// flattenRows lists every row field of a successful result in a stable order:
// collection name, row index, then field name.
func flattenRows(r *service.BatchResult) [][]string {
	if r.Err != nil || r.Result == nil {
		return nil
	}
	var collections []string
	for k, v := range r.Result.Output {
		if _, ok := v.([]any); ok {
			collections = append(collections, k)
		}
	}
	sort.Strings(collections)

	var lines [][]string
	for _, name := range collections {
		for i, item := range r.Result.Output[name].([]any) {
			fields, ok := item.(map[string]any)
			if !ok {
				continue
			}
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				lines = append(lines, []string{
					r.Name, string(r.Result.DocumentType), name, strconv.Itoa(i + 1), k, formatValue(fields[k]),
				})
			}
		}
	}
	return lines
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case json.Number:
		return t.String()
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _, collapses
// consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{format}.
func BuildFilename(name string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), format)
}
