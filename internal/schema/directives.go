package schema

const numberRules = `
NUMBER NORMALIZATION:
- Remove thousand separators (commas) and keep the decimal point.
- Do not round; keep every decimal place shown in the document.
- Remove currency symbols and codes ($, USD, THB, ฿) and unit labels (MMBTU, MMSCF).
- Return numbers as JSON numbers. If a value is absent, return null for optional fields.`

const confidenceRules = `
CONFIDENCE:
- overall_confidence_score (0-100) is your certainty that the whole output is complete and accurate.
  100 means absolute certainty, 0 means none.`

const rowConfidenceRules = `
- Each item carries its own confidence_score (0-100):
  90-100 labels clear and values aligned, 70-89 minor uncertainty, 30-69 one value inferred,
  0-29 the item could not be read confidently.
- If no item can be extracted, return an empty array and a low overall_confidence_score.`

const outputRules = `
OUTPUT:
- Output ONLY the raw JSON object that matches the response schema.
- Do not wrap it in markdown and do not add explanations.`

const supplyMultiPlatformDirective = `You are an expert at extracting structured data from gas supply statements and invoices covering several platforms (G1, G2, G12, Arthit) and from Export Gas Sale Agreement seller-split reports.

EXTRACT:
- moge_quantity_mmbtu: in the table titled "SPLIT BETWEEN THE SELLERS", the Quantities MMBTU value on the MOGE row.
- pttepi_quantity_mmbtu: in the same table, the Quantities MMBTU value on the PTTEPI row.
  Operator's statements for G1, G2 or G12 have no seller split: return null for both quantities.
- overall_payment_due_usd: the value labeled "OVERALL PAYMENT DUE BY PTT TO THE SELLERS (I+II)" in USD.
- invoices: one item per distinct invoice or operator's statement, for every platform:
  * invoice_number: invoice or statement number ("1631100234", "OPERATOR'S STATEMENT NUMBER 41").
  * quantity: total MMBTU. It may be labeled Total Sale Volume, Net Sales (MMBTU), Energy (MMBTU) or Sales Volume.
    Use "Total Sale Volume" NOT "CTEP Sale Volume" when both are present.
  * amount_before_vat: total amount in THB before VAT. Skip an invoice that has no THB amount.
- Do not sum quantities or amounts across invoices.
- A pre-invoice operational statement (MMBTU present, no THB amount) yields an empty invoices array.
` + numberRules + confidenceRules + rowConfidenceRules + outputRules

const singlePlatformStatementDirective = `You are an expert at extracting structured data from Statement of Account documents for the Arthit gas platform.

EXTRACT from the page titled "Statement of Account":
- statements: one item per statement:
  * statement_number: the statement identifier, e.g. "Statement No. 08-18/2025".
  * total_sale_volume: the value labeled "Total Sale Volume" in MMBTU.
    Critical: use "Total Sale Volume" NOT "CTEP Sale Volume".
  * total_amount_thb: the Thai Baht amount on the total sale volume line.
- Do not sum values across statements.
- If the Statement of Account page is not found, return an empty statements array.
` + numberRules + confidenceRules + rowConfidenceRules + outputRules

const multiVendorPlatformInvoiceDirective = `You are an expert at extracting structured data from single-platform gas invoices that list several vendors, for platforms such as B8/32, Benchamas (เบญจมาศ) and Pailin (ไพลิน).

EXTRACT:
- platform: the platform identifier exactly as printed.
- period_label: the billing period if clearly present (e.g. "Aug-25", "September 2025"), otherwise null.
- heat_quantity_mmbtu: the heat quantity in MMBTU from the heat quantity section.
- total_amount_excl_vat: the invoice total excluding VAT, or null if absent.
- adjustment_excl_vat: any adjustment excluding VAT (negative for credits), or null if absent.
- vendor_invoices: one item per vendor row in the vendor invoice table:
  * vendor: the vendor name as printed.
  * invoice_number: the vendor's invoice number.
  * amount_excl_vat: the vendor amount excluding VAT.
- Ignore approval stamps, bank details and payment terms.
` + numberRules + confidenceRules + rowConfidenceRules + outputRules

const fieldPurchaseInvoiceDirective = `You are an expert at extracting structured data from gas purchase memos and invoice registers for the C5 and G4/48 fields.

EXTRACT:
- field_code: the field identifier as printed (C5, G4/48).
- heat_quantity_mmbtu: energy quantity in MMBTU (columns labeled MMBTU, MMBtu, Heat Quantity).
- amountUSD: the amount in USD (columns labeled Amount (USD), USD, Total). Example: "$52,417,002.59" -> 52417002.59.
- mmscf: gas quantity in MMSCF if present, otherwise null.
- vendor: the selling party if printed, otherwise null.
- invoice_number: the memo or invoice reference if printed, otherwise null.
- period_label: the reporting period if clearly present (e.g. "Aug-25"), otherwise null.
- Ignore grand totals not tied to the field, signatures and workflow stamps.
- If the document does not concern C5 or G4/48, set overall_confidence_score to 0.
` + numberRules + confidenceRules + outputRules
