package schema

import (
	"github.com/shopspring/decimal"

	"gasdoc/internal/domain"
)

func builtinEntries() []Entry {
	return []Entry{
		supplyMultiPlatform(),
		singlePlatformStatement(),
		multiVendorPlatformInvoice(),
		fieldPurchaseInvoice(),
	}
}

func supplyMultiPlatform() Entry {
	return Entry{
		DocumentType: domain.DocTypeSupplyMultiPlatform,
		Header: FieldContract{
			withDefault(num("moge_quantity_mmbtu", "Quantity of gas in MMBTU attributable to MOGE in the SPLIT BETWEEN THE SELLERS table.", false), decimal.Zero),
			withDefault(num("pttepi_quantity_mmbtu", "Quantity of gas in MMBTU attributable to PTTEPI in the SPLIT BETWEEN THE SELLERS table.", false), decimal.Zero),
			num("overall_payment_due_usd", "OVERALL PAYMENT DUE BY PTT TO THE SELLERS (I+II) in USD.", false),
		},
		Rows: &RowSet{
			Name:        "invoices",
			Description: "Every invoice or operator's statement found in the document, for any platform (G1, G2, G12, Arthit).",
			Fields: FieldContract{
				str("invoice_number", `Invoice or statement number, e.g. "1631100234" or "OPERATOR'S STATEMENT NUMBER 41".`, true),
				num("quantity", "Total quantity in MMBTU. Use Total Sale Volume, not CTEP Sale Volume.", true),
				num("amount_before_vat", "Total amount in THB before VAT.", true),
			},
		},
		Directive: supplyMultiPlatformDirective,
		Transform: Mapping{
			Sums: []SumCombine{
				{Output: "occurred_quantities_mmbtu", Inputs: []string{"moge_quantity_mmbtu", "pttepi_quantity_mmbtu"}},
			},
			Renames: []Rename{
				{From: "overall_payment_due_usd", To: "overall_payment"},
			},
		},
	}
}

func singlePlatformStatement() Entry {
	return Entry{
		DocumentType: domain.DocTypeSinglePlatformStatement,
		Rows: &RowSet{
			Name:        "statements",
			Description: "Every statement extracted from the Arthit Statement of Account page.",
			Fields: FieldContract{
				str("statement_number", `Statement number, e.g. "Statement No. 08-18/2025".`, true),
				num("total_sale_volume", "Total Sale Volume in MMBTU, not CTEP Sale Volume.", true),
				num("total_amount_thb", "Thai Baht amount for the total sale volume.", true),
			},
		},
		Directive: singlePlatformStatementDirective,
		Transform: Identity{},
	}
}

func multiVendorPlatformInvoice() Entry {
	return Entry{
		DocumentType: domain.DocTypeMultiVendorPlatformInvoice,
		Header: FieldContract{
			str("platform", "Platform identifier as printed, e.g. B8/32, Benchamas or Pailin.", true),
			str("period_label", "Billing period label if clearly present, e.g. Aug-25.", false),
			num("heat_quantity_mmbtu", "Heat quantity in MMBTU for the platform.", true),
			withDefault(num("total_amount_excl_vat", "Invoice total excluding VAT.", false), decimal.Zero),
			withDefault(num("adjustment_excl_vat", "Adjustment amount excluding VAT, negative for credits.", false), decimal.Zero),
		},
		Rows: &RowSet{
			Name:        "vendor_invoices",
			Description: "One entry per vendor line in the vendor invoice table.",
			Fields: FieldContract{
				str("vendor", "Vendor or seller name as printed.", true),
				str("invoice_number", "Vendor invoice number.", true),
				num("amount_excl_vat", "Vendor amount excluding VAT.", true),
			},
		},
		Directive: multiVendorPlatformInvoiceDirective,
		Transform: Mapping{
			Sums: []SumCombine{
				{Output: "billed_amount_excl_vat", Inputs: []string{"total_amount_excl_vat", "adjustment_excl_vat"}},
			},
			Renames: []Rename{
				{From: "platform", To: "platform"},
				{From: "period_label", To: "period"},
				{From: "heat_quantity_mmbtu", To: "heat_quantity"},
			},
			RowRenames: []Rename{
				{From: "amount_excl_vat", To: "amount"},
			},
		},
	}
}

func fieldPurchaseInvoice() Entry {
	return Entry{
		DocumentType: domain.DocTypeFieldPurchaseInvoice,
		Header: FieldContract{
			str("field_code", "Gas field identifier, e.g. C5 or G4/48.", true),
			num("heat_quantity_mmbtu", "Energy quantity in MMBTU.", true),
			num("amountUSD", "Amount in USD.", true),
			num("mmscf", "Gas quantity in MMSCF if present.", false),
			str("vendor", "Selling party if printed.", false),
			str("invoice_number", "Invoice or memo reference number.", false),
			str("period_label", "Billing period label if clearly present.", false),
		},
		Directive: fieldPurchaseInvoiceDirective,
		Transform: Mapping{
			Renames: []Rename{
				{From: "field_code", To: "field"},
				{From: "heat_quantity_mmbtu", To: "mmbtu"},
				{From: "amountUSD", To: "amount_usd"},
				{From: "mmscf", To: "mmscf"},
				{From: "vendor", To: "vendor"},
				{From: "invoice_number", To: "invoice_number"},
				{From: "period_label", To: "period"},
			},
		},
	}
}
