package extractor

import (
	"encoding/json"
	"fmt"
)

// BuildSignalPrompt returns the prompt that asks a model for classification evidence only.
// The document type itself is decided by the rule engine, never by the model.
func BuildSignalPrompt() string {
	return `You are a document analyst for Thai gas industry billing documents (PTT supply statements, operator statements, field purchase invoices, platform service invoices). Read the provided document and report ONLY what is observably present in it.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, in exactly this shape:
{
  "platforms": [],
  "vendors": [],
  "flags": {
    "hasMultiplePlatforms": false,
    "hasMultipleVendors": false,
    "hasOperatorStatement": false,
    "hasSingleFieldFocus": false,
    "hasStatementOfAccount": false,
    "hasStatementNumber": false,
    "hasTotalSaleVolume": false,
    "hasCTEPSaleVolume": false,
    "hasHeatQuantitySection": false,
    "hasVendorInvoiceTable": false,
    "hasAccountingData": false
  },
  "language": "english",
  "keyTermsFound": []
}

RULES:
- "platforms": gas field or platform identifiers exactly as printed (e.g. G1, G2, G12, Arthit, C5, G4/48, B8/32, Benchamas, Pailin, or their Thai spellings). Do not infer platforms that are not printed.
- "vendors": distinct company names that issue invoices or statements in the document.
- "hasOperatorStatement": the document contains an "Operator's Statement" heading.
- "hasStatementOfAccount": the document contains a "Statement of Account" heading.
- "hasStatementNumber": the document contains a statement number such as "Statement No. 08-18/2025".
- "hasTotalSaleVolume" / "hasCTEPSaleVolume": the terms "Total Sale Volume" / "CTEP Sale Volume" appear.
- "hasHeatQuantitySection": a heat quantity section (MMBTU, ปริมาณความร้อน) appears.
- "hasVendorInvoiceTable": a table lists several vendors with their invoice numbers and amounts.
- "hasAccountingData": amounts, GL accounts or VAT breakdowns appear.
- "language": "thai", "english" or "mixed".
- "keyTermsFound": identifying terms you actually saw, in the order they appear.
- If a value is not visible, use an empty array or false. Never guess.`
}

// BuildExtractionPrompt combines the per-type directive with the response schema the
// output must satisfy.
func BuildExtractionPrompt(directive string, schema map[string]any) (string, error) {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling response schema: %w", err)
	}
	return directive + `

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. The JSON object must validate against this JSON Schema:
` + string(schemaJSON), nil
}
