package migration

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"festadmin/internal/content"
	"festadmin/internal/media"
	"festadmin/internal/mediadoc"
)

// Finding describes one document that is not already canonical and valid.
type Finding struct {
	Collection string         `json:"collection" yaml:"collection"`
	ID         string         `json:"id" yaml:"id"`
	Shape      mediadoc.Shape `json:"shape" yaml:"shape"`
	Issues     []string       `json:"issues,omitempty" yaml:"issues,omitempty"`
	Skips      []string       `json:"skips,omitempty" yaml:"skips,omitempty"`
}

// ShapeCounts tallies the stored encodings found in one collection.
type ShapeCounts struct {
	Collection string `json:"collection" yaml:"collection"`
	Total      int    `json:"total" yaml:"total"`
	Canonical  int    `json:"canonical" yaml:"canonical"`
	Tagged     int    `json:"tagged" yaml:"tagged"`
	Mixed      int    `json:"mixed" yaml:"mixed"`
	Malformed  int    `json:"malformed" yaml:"malformed"`
	Invalid    int    `json:"invalid" yaml:"invalid"`
}

// AuditReport is the read-only counterpart of Report.
type AuditReport struct {
	Collections []ShapeCounts `json:"collections" yaml:"collections"`
	Findings    []Finding     `json:"findings" yaml:"findings"`
}

// Clean reports whether every audited document is canonical and valid.
func (r *AuditReport) Clean() bool {
	return r != nil && len(r.Findings) == 0
}

// Audit classifies every document of collections without modifying anything.
// Enumeration failures are wrapped with ErrEnumerate.
func Audit(ctx context.Context, src Source, collections []string) (*AuditReport, error) {
	report := &AuditReport{}
	for _, collection := range collections {
		counts := ShapeCounts{Collection: collection}
		err := src.Each(ctx, collection, func(doc content.Document) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			counts.Total++
			shape := mediadoc.Classify(doc.Fields)
			switch shape {
			case mediadoc.ShapeCanonical:
				counts.Canonical++
			case mediadoc.ShapeTagged:
				counts.Tagged++
			case mediadoc.ShapeMixed:
				counts.Mixed++
			default:
				counts.Malformed++
			}

			rec, skips := mediadoc.Normalize(doc.ID, doc.Fields)
			result := media.Validate(rec)
			if !result.Valid {
				counts.Invalid++
			}
			if shape == mediadoc.ShapeCanonical && result.Valid {
				return nil
			}
			finding := Finding{Collection: collection, ID: doc.ID, Shape: shape, Issues: result.Issues}
			for _, skip := range skips {
				finding.Skips = append(finding.Skips, skip.String())
			}
			report.Findings = append(report.Findings, finding)
			return nil
		})
		report.Collections = append(report.Collections, counts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			return report, fmt.Errorf("%w: collection %s: %w", ErrEnumerate, collection, err)
		}
	}
	slices.SortFunc(report.Findings, func(x, y Finding) int {
		return cmp.Or(cmp.Compare(x.Collection, y.Collection), cmp.Compare(x.ID, y.ID))
	})
	return report, nil
}
