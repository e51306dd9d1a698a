package classifier

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
)

// KeywordScanner is a deterministic SignalSource that scans the textual content of a
// document for platform codes, terminology markers and vendor names. It needs no network
// and is used offline, in tests, and for documents that carry a text layer.
type KeywordScanner struct{}

// NewKeywordScanner creates a KeywordScanner.
func NewKeywordScanner() *KeywordScanner {
	return &KeywordScanner{}
}

var _ port.SignalSource = (*KeywordScanner)(nil)

type platformPattern struct {
	code string
	re   *regexp.Regexp
}

// shortCode matches a letter+digits code written together ("G12"). The spaced form ("G 12")
// only counts right after a platform or field keyword, since "Section C 5" is not a field.
func shortCode(letter, digits string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + letter + digits + `\b|(?i:\bplatforms?|\bfields?|แหล่ง|แท่น)[ \t]*` + letter + `[ \t]` + digits + `\b`)
}

var platformPatterns = []platformPattern{
	{PlatformG12, shortCode("G", "12")},
	{PlatformG1, shortCode("G", "1")},
	{PlatformG2, shortCode("G", "2")},
	{PlatformArthit, regexp.MustCompile(`(?i)\barthit\b`)},
	{PlatformC5, shortCode("C", "5")},
	{PlatformG448, regexp.MustCompile(`\bG\s?4\s?[/-]\s?48\b`)},
	{PlatformB832, regexp.MustCompile(`\bB\s?8\s?[/-]\s?32\b`)},
	{PlatformBenchamas, regexp.MustCompile(`(?i)\bbenchamas\b|เบญจมาศ`)},
	{PlatformPailin, regexp.MustCompile(`(?i)\bpailin\b|ไพลิน`)},
}

type termPattern struct {
	term string
	re   *regexp.Regexp
	set  func(f *domain.StructuralFlags)
}

var termPatterns = []termPattern{
	{"Statement of Account", regexp.MustCompile(`(?i)statement\s+of\s+account`),
		func(f *domain.StructuralFlags) { f.HasStatementOfAccount = true }},
	{"Operator's Statement", regexp.MustCompile(`(?i)operator['’]?s\s+statement`),
		func(f *domain.StructuralFlags) { f.HasOperatorStatement = true }},
	{"Statement No.", regexp.MustCompile(`(?i)statement\s+no\.?\s*\d`),
		func(f *domain.StructuralFlags) { f.HasStatementNumber = true }},
	{"Total Sale Volume", regexp.MustCompile(`(?i)total\s+sales?\s+volume`),
		func(f *domain.StructuralFlags) { f.HasTotalSaleVolume = true }},
	{"CTEP Sale Volume", regexp.MustCompile(`(?i)ctep\s+sales?\s+volume`),
		func(f *domain.StructuralFlags) { f.HasCTEPSaleVolume = true }},
	{"Heat Quantity", regexp.MustCompile(`(?i)heat\s+quantity|ปริมาณความร้อน`),
		func(f *domain.StructuralFlags) { f.HasHeatQuantitySection = true }},
	{"Amount Excl VAT", regexp.MustCompile(`(?i)(excl\.?|excluding)\s+vat|ใบแจ้งหนี้`), nil},
	{"Vendor", regexp.MustCompile(`(?i)\bvendors?\b|ผู้ขาย`), nil},
	{"Amount (USD)", regexp.MustCompile(`(?i)amount\s*\(\s*usd\s*\)|จำนวนเงินรวม|gl\s+account|amount\s+before\s+vat`),
		func(f *domain.StructuralFlags) { f.HasAccountingData = true }},
	{"SPLIT BETWEEN THE SELLERS", regexp.MustCompile(`(?i)split\s+between\s+the\s+sellers`), nil},
	{"ค่าก๊าซฯแหล่ง", regexp.MustCompile(`ค่าก๊าซ\S*แหล่ง`), nil},
}

var (
	knownVendorRe = regexp.MustCompile(`(?i)\b(chevron|mitsui|pttep|moge|kris\s+energy|mubadala|shell)\b`)
	companyRe     = regexp.MustCompile(`\b([A-Z][A-Za-z&.\-]*(?:[ \t]+[A-Z][A-Za-z&.\-]*){0,4})[ \t]+(?:Co\.,?[ \t]*Ltd\.?|Company[ \t]+Limited|Limited|Ltd\.?|Inc\.?|Corporation|Corp\.?)`)
	thaiCompanyRe = regexp.MustCompile(`บริษัท\s*([^\s]+)`)

	vendorHeaderRe = regexp.MustCompile(`(?i)^\s*(?:vendors?\b|ผู้ขาย)`)
	cellSplitRe    = regexp.MustCompile(`\s*\|\s*|\t+|\s{2,}`)
	tableEndRe     = regexp.MustCompile(`(?i)^\s*(?:grand\s+)?total\b|^\s*รวม`)
)

type hit struct {
	at    int
	label string
}

// ClassifyDocument implements port.SignalSource.
func (s *KeywordScanner) ClassifyDocument(ctx context.Context, input port.DocumentInput) (*domain.Signals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.ToValidUTF8(string(input.Content), " ")
	return Scan(text), nil
}

// Scan extracts signals from plain text.
func Scan(text string) *domain.Signals {
	sig := &domain.Signals{
		Platforms:     []string{},
		Vendors:       []string{},
		KeyTermsFound: []string{},
		Language:      DetectLanguage(text),
	}

	var platformHits, termHits []hit
	for _, p := range platformPatterns {
		if loc := p.re.FindStringIndex(text); loc != nil {
			platformHits = append(platformHits, hit{at: loc[0], label: p.code})
		}
	}
	for _, t := range termPatterns {
		if loc := t.re.FindStringIndex(text); loc != nil {
			termHits = append(termHits, hit{at: loc[0], label: t.term})
			if t.set != nil {
				t.set(&sig.Flags)
			}
		}
	}
	byPosition(platformHits)
	for _, h := range platformHits {
		sig.Platforms = append(sig.Platforms, h.label)
	}

	sig.Vendors = scanVendors(text)

	all := append(append([]hit{}, platformHits...), termHits...)
	byPosition(all)
	for _, h := range all {
		sig.KeyTermsFound = append(sig.KeyTermsFound, h.label)
	}

	sig.Flags.HasMultiplePlatforms = len(sig.Platforms) > 1
	sig.Flags.HasSingleFieldFocus = len(sig.Platforms) == 1
	sig.Flags.HasMultipleVendors = distinctVendors(sig.Vendors) > 1
	sig.Flags.HasVendorInvoiceTable = sig.Flags.HasMultipleVendors &&
		(containsTerm(sig.KeyTermsFound, "Vendor") || containsTerm(sig.KeyTermsFound, "Amount Excl VAT"))
	return sig
}

func scanVendors(text string) []string {
	var hits []hit
	for _, loc := range knownVendorRe.FindAllStringSubmatchIndex(text, -1) {
		hits = append(hits, hit{at: loc[0], label: text[loc[2]:loc[3]]})
	}
	for _, loc := range companyRe.FindAllStringSubmatchIndex(text, -1) {
		hits = append(hits, hit{at: loc[0], label: text[loc[2]:loc[3]]})
	}
	for _, loc := range thaiCompanyRe.FindAllStringSubmatchIndex(text, -1) {
		hits = append(hits, hit{at: loc[0], label: text[loc[2]:loc[3]]})
	}
	hits = append(hits, vendorTableRows(text)...)
	byPosition(hits)

	out := []string{}
	seen := map[string]bool{}
	for _, h := range hits {
		name := strings.TrimSpace(h.label)
		key := squash(name)
		if key == "" || seen[key] {
			continue
		}
		// Company names that merely embed a known vendor ("Chevron Thailand") count once.
		dup := false
		for k := range seen {
			if strings.Contains(key, k) || strings.Contains(k, key) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// vendorTableRows returns the first cell of every row below a vendor column header, up to
// the first blank line or totals row.
func vendorTableRows(text string) []hit {
	var hits []hit
	inTable := false
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		at := offset
		offset += len(line)
		line = strings.TrimRight(line, "\r\n")

		if !inTable {
			inTable = vendorHeaderRe.MatchString(line) && len(cells(line)) > 1
			continue
		}
		if strings.TrimSpace(line) == "" || tableEndRe.MatchString(line) {
			inTable = false
			continue
		}
		row := cells(line)
		if len(row) == 0 || !hasLetter(row[0]) {
			continue
		}
		hits = append(hits, hit{at: at, label: row[0]})
	}
	return hits
}

func cells(line string) []string {
	var out []string
	for _, c := range cellSplitRe.Split(strings.TrimSpace(line), -1) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func byPosition(hits []hit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })
}

func containsTerm(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

// DetectLanguage reports the dominant script from the ratio of Thai to Latin letters.
// Text without letters is treated as English.
func DetectLanguage(text string) domain.Language {
	var thai, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Thai, r):
			thai++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	total := thai + latin
	if total == 0 {
		return domain.LanguageEnglish
	}
	ratio := float64(thai) / float64(total)
	switch {
	case ratio >= 0.6:
		return domain.LanguageThai
	case ratio <= 0.1:
		return domain.LanguageEnglish
	default:
		return domain.LanguageMixed
	}
}
