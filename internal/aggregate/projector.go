package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gasdoc/internal/domain"
	"gasdoc/internal/schema"
)

// Projector maps validated extraction records onto the public output contract of their
// document type. The transform is chosen by type alone, never by record content.
type Projector struct {
	registry *schema.Registry
}

// NewProjector creates a Projector over registry.
func NewProjector(registry *schema.Registry) *Projector {
	return &Projector{registry: registry}
}

// Project applies the transform registered for dt to rec. It is pure: the same record and
// type always produce an identical OutputRecord.
func (p *Projector) Project(rec *domain.ExtractionRecord, dt domain.DocumentType) (domain.OutputRecord, error) {
	if dt == domain.DocTypeUnknown {
		return nil, &domain.UnsupportedTypeError{DocumentType: dt}
	}
	entry, err := p.registry.Lookup(dt)
	if err != nil {
		return nil, err
	}

	switch t := entry.Transform.(type) {
	case schema.Identity:
		return identity(entry, rec), nil
	case schema.Mapping:
		return mapping(entry, t, rec)
	default:
		return nil, fmt.Errorf("document type %s: unsupported transform %T", dt, t)
	}
}

func identity(entry *schema.Entry, rec *domain.ExtractionRecord) domain.OutputRecord {
	out := domain.OutputRecord{}
	for _, f := range entry.Header {
		out[f.Name] = rec.Fields.Get(f.Name).JSON()
	}
	if entry.MultiRow() {
		out[entry.Rows.Name] = rows(entry.Rows, nil, rec.Rows)
	}
	out[schema.OverallConfidenceKey] = rec.OverallConfidence
	return out
}

func mapping(entry *schema.Entry, m schema.Mapping, rec *domain.ExtractionRecord) (domain.OutputRecord, error) {
	out := domain.OutputRecord{}
	for _, s := range m.Sums {
		total, err := sum(entry, s, rec.Fields)
		if err != nil {
			return nil, err
		}
		out[s.Output] = domain.NumberValue(total).JSON()
	}
	for _, r := range m.Renames {
		out[r.To] = rec.Fields.Get(r.From).JSON()
	}
	if entry.MultiRow() {
		out[entry.Rows.Name] = rows(entry.Rows, m.RowRenames, rec.Rows)
	}
	return out, nil
}

// sum adds the inputs of s exactly. An absent addend resolves to its declared default;
// without one the aggregation is incomplete.
func sum(entry *schema.Entry, s schema.SumCombine, fields domain.Fields) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, name := range s.Inputs {
		v := fields.Get(name)
		switch {
		case v.Kind == domain.ValueNumber:
			total = total.Add(v.Number)
		case v.IsNull():
			field, _ := entry.Header.Field(name)
			if !field.HasDefault() {
				return decimal.Decimal{}, &domain.IncompleteAggregationError{
					DocumentType: entry.DocumentType,
					Output:       s.Output,
					Missing:      name,
				}
			}
			total = total.Add(*field.Default)
		default:
			return decimal.Decimal{}, fmt.Errorf("document type %s: sum %s: input %s is not a number",
				entry.DocumentType, s.Output, name)
		}
	}
	return total, nil
}

func rows(set *schema.RowSet, renames []schema.Rename, in []domain.Row) []any {
	to := make(map[string]string, len(renames))
	for _, r := range renames {
		to[r.From] = r.To
	}
	out := make([]any, 0, len(in))
	for _, row := range in {
		item := map[string]any{}
		for _, f := range set.Fields {
			name := f.Name
			if public, ok := to[name]; ok {
				name = public
			}
			item[name] = row.Fields.Get(f.Name).JSON()
		}
		item[schema.RowConfidenceKey] = row.Confidence
		out = append(out, item)
	}
	return out
}
