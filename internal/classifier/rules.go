package classifier

import (
	"fmt"
	"strings"

	"gasdoc/internal/domain"
)

// evidence is the canonicalized signal bundle the rules are evaluated against.
type evidence struct {
	signals   domain.Signals
	platforms map[string]bool
	vendors   int
}

func newEvidence(sig domain.Signals) *evidence {
	sig.Platforms = canonicalPlatforms(sig.Platforms)
	if sig.Language == "" {
		sig.Language = domain.LanguageEnglish
	}
	e := &evidence{
		signals:   sig,
		platforms: make(map[string]bool, len(sig.Platforms)),
		vendors:   distinctVendors(sig.Vendors),
	}
	for _, p := range sig.Platforms {
		e.platforms[p] = true
	}
	return e
}

func (e *evidence) present(group []string) []string {
	var out []string
	for _, p := range group {
		if e.platforms[p] {
			out = append(out, p)
		}
	}
	return out
}

func (e *evidence) only(code string) bool {
	return len(e.signals.Platforms) == 1 && e.platforms[code]
}

// signal is one corroborating indicator counted towards a branch's confidence.
type signal struct {
	name  string
	fired func(e *evidence) bool
}

func flag(name string, get func(f domain.StructuralFlags) bool) signal {
	return signal{name: name, fired: func(e *evidence) bool { return get(e.signals.Flags) }}
}

var (
	sigStatementNumber = flag("statement number", func(f domain.StructuralFlags) bool { return f.HasStatementNumber })
	sigTotalSale       = flag("Total Sale Volume", func(f domain.StructuralFlags) bool { return f.HasTotalSaleVolume })
	sigCTEPSale        = flag("CTEP Sale Volume", func(f domain.StructuralFlags) bool { return f.HasCTEPSaleVolume })
	sigOperatorStmt    = flag("Operator's Statement", func(f domain.StructuralFlags) bool { return f.HasOperatorStatement })
	sigAccounting      = flag("accounting data", func(f domain.StructuralFlags) bool { return f.HasAccountingData })
	sigHeatQuantity    = flag("heat quantity section", func(f domain.StructuralFlags) bool { return f.HasHeatQuantitySection })
	sigVendorTable     = flag("vendor invoice table", func(f domain.StructuralFlags) bool { return f.HasVendorInvoiceTable })
	sigStatementOfAcct = flag("Statement of Account header", func(f domain.StructuralFlags) bool { return f.HasStatementOfAccount })
)

// rule is one guarded branch of the ordered decision procedure.
type rule struct {
	docType domain.DocumentType
	lo, hi  int
	// match reports whether the guard holds and, if so, the decisive signals.
	match func(e *evidence) ([]string, bool)
	// reject explains why the guard did not hold.
	reject        func(e *evidence) string
	corroborating []signal
}

// confidence interpolates linearly inside [lo, hi] by the share of corroborating
// signals that fired.
func (r rule) confidence(e *evidence) (int, []string) {
	var fired []string
	for _, s := range r.corroborating {
		if s.fired(e) {
			fired = append(fired, s.name)
		}
	}
	if len(r.corroborating) == 0 {
		return r.hi, nil
	}
	return r.lo + (r.hi-r.lo)*len(fired)/len(r.corroborating), fired
}

var rules = []rule{
	{
		docType: domain.DocTypeSinglePlatformStatement,
		lo:      90, hi: 100,
		match: func(e *evidence) ([]string, bool) {
			if e.signals.Flags.HasStatementOfAccount && e.platforms[PlatformArthit] {
				return []string{"Statement of Account header", "Arthit platform"}, true
			}
			return nil, false
		},
		reject: func(e *evidence) string {
			switch {
			case !e.signals.Flags.HasStatementOfAccount && !e.platforms[PlatformArthit]:
				return "no Statement of Account header and no Arthit platform"
			case !e.signals.Flags.HasStatementOfAccount:
				return "Arthit found but no Statement of Account header"
			default:
				return "Statement of Account header found but no Arthit platform"
			}
		},
		corroborating: []signal{
			sigStatementNumber,
			sigTotalSale,
			sigCTEPSale,
			{name: "Arthit is the only platform", fired: func(e *evidence) bool { return e.only(PlatformArthit) }},
			{name: "THB accounting data", fired: func(e *evidence) bool { return e.signals.Flags.HasAccountingData }},
		},
	},
	{
		docType: domain.DocTypeFieldPurchaseInvoice,
		lo:      85, hi: 100,
		match: func(e *evidence) ([]string, bool) {
			found := e.present(fieldPurchaseGroup)
			if len(found) == 0 {
				return nil, false
			}
			return []string{"field code " + strings.Join(found, " and ")}, true
		},
		reject: func(*evidence) string { return "no C5 or G4/48 field code" },
		corroborating: []signal{
			{name: "both C5 and G4/48", fired: func(e *evidence) bool { return len(e.present(fieldPurchaseGroup)) == 2 }},
			sigHeatQuantity,
			sigAccounting,
			{name: "purchase vendor named", fired: func(e *evidence) bool { return e.vendors > 0 }},
			{name: "no other platforms", fired: func(e *evidence) bool {
				return len(e.signals.Platforms) == len(e.present(fieldPurchaseGroup))
			}},
		},
	},
	{
		docType: domain.DocTypeSupplyMultiPlatform,
		lo:      80, hi: 100,
		match: func(e *evidence) ([]string, bool) {
			primary := e.present(primarySupplyGroup)
			if len(primary) == 0 {
				return nil, false
			}
			group := append([]string{}, primary...)
			if e.platforms[PlatformArthit] {
				group = append(group, PlatformArthit)
			}
			if len(group) >= 2 {
				return []string{"multiple supply platforms " + strings.Join(group, ", ")}, true
			}
			if e.signals.Flags.HasOperatorStatement {
				return []string{"supply platform " + primary[0], "Operator's Statement"}, true
			}
			return nil, false
		},
		reject: func(e *evidence) string {
			primary := e.present(primarySupplyGroup)
			if len(primary) == 0 {
				return "no G1, G2 or G12 platform"
			}
			return fmt.Sprintf("only %s found without other platforms or an Operator's Statement", primary[0])
		},
		corroborating: []signal{
			sigOperatorStmt,
			sigTotalSale,
			sigCTEPSale,
			{name: "all of G1, G2, G12", fired: func(e *evidence) bool { return len(e.present(primarySupplyGroup)) == 3 }},
			sigAccounting,
		},
	},
	{
		docType: domain.DocTypeSupplyMultiPlatform,
		lo:      70, hi: 90,
		match: func(e *evidence) ([]string, bool) {
			if e.platforms[PlatformArthit] {
				return []string{"Arthit platform without Statement of Account header"}, true
			}
			return nil, false
		},
		reject: func(*evidence) string { return "no Arthit platform" },
		corroborating: []signal{
			sigOperatorStmt,
			sigTotalSale,
			sigCTEPSale,
			sigAccounting,
		},
	},
	{
		docType: domain.DocTypeMultiVendorPlatformInvoice,
		lo:      75, hi: 100,
		match: func(e *evidence) ([]string, bool) {
			found := e.present(singlePlatformGroup)
			if len(found) == 0 || e.vendors < 3 {
				return nil, false
			}
			return []string{
				"platform " + strings.Join(found, ", "),
				fmt.Sprintf("%d distinct vendors", e.vendors),
			}, true
		},
		reject: func(e *evidence) string {
			if len(e.present(singlePlatformGroup)) == 0 {
				return "no B8/32, Benchamas or Pailin platform"
			}
			return fmt.Sprintf("only %d distinct vendors, need 3", e.vendors)
		},
		corroborating: []signal{
			sigVendorTable,
			sigHeatQuantity,
			sigAccounting,
			{name: "single platform focus", fired: func(e *evidence) bool { return len(e.signals.Platforms) == 1 }},
			{name: "Thai terminology", fired: func(e *evidence) bool { return e.signals.Language != domain.LanguageEnglish }},
		},
	},
}

// unknownRule scores leftover evidence inside the unknown band. Every reported indicator
// counts, so a document with real but inconclusive evidence never scores zero.
var unknownRule = rule{
	docType: domain.DocTypeUnknown,
	lo:      0, hi: 29,
	corroborating: []signal{
		{name: "platform codes", fired: func(e *evidence) bool { return len(e.signals.Platforms) > 0 }},
		{name: "vendor names", fired: func(e *evidence) bool { return e.vendors > 0 }},
		{name: "key terms", fired: func(e *evidence) bool { return len(e.signals.KeyTermsFound) > 0 }},
		flag("multiple platforms", func(f domain.StructuralFlags) bool { return f.HasMultiplePlatforms }),
		flag("multiple vendors", func(f domain.StructuralFlags) bool { return f.HasMultipleVendors }),
		flag("single field focus", func(f domain.StructuralFlags) bool { return f.HasSingleFieldFocus }),
		sigStatementOfAcct,
		sigStatementNumber,
		sigOperatorStmt,
		sigTotalSale,
		sigCTEPSale,
		sigHeatQuantity,
		sigVendorTable,
		sigAccounting,
	},
}

// hasEvidence reports whether the source reported anything at all.
func (e *evidence) hasEvidence() bool {
	return len(e.signals.Platforms) > 0 ||
		len(e.signals.Vendors) > 0 ||
		len(e.signals.KeyTermsFound) > 0 ||
		e.signals.Flags != (domain.StructuralFlags{})
}
