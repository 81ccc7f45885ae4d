package registrar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/render"
	"gorm.io/gorm"
)

type ReportKind string

const (
	ReportTotal  ReportKind = "total"
	ReportStrand ReportKind = "strand"
	ReportRecent ReportKind = "recent"
)

type DateRange string

const (
	RangeToday      DateRange = "Today"
	RangeLast7Days  DateRange = "Last 7 Days"
	RangeLast30Days DateRange = "Last 30 Days"
	RangeAllTime    DateRange = "All Time"
)

// since resolves the range against now. All Time has no lower bound.
func (r DateRange) since(now time.Time) (*time.Time, error) {
	var start time.Time
	switch r {
	case RangeToday:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case RangeLast7Days:
		start = now.AddDate(0, 0, -7)
	case RangeLast30Days:
		start = now.AddDate(0, 0, -30)
	case RangeAllTime, "":
		return nil, nil
	default:
		return nil, models.NewValidationError(models.FieldError{Field: "range", Message: fmt.Sprintf("unknown date range %q", r)})
	}
	return &start, nil
}

// StrandRow is one line of the strand table of a report.
type StrandRow struct {
	StrandStats
	Available int64   `json:"available" example:"2"`
	FillRate  float64 `json:"fillRate" example:"97.5"` // Percentage of slots taken
}

func strandRow(name models.Strand, enrolled, slots int64) StrandRow {
	row := StrandRow{
		StrandStats: StrandStats{Name: name, Enrolled: enrolled, TotalSlots: slots},
		Available:   slots - enrolled,
	}
	if slots > 0 {
		row.FillRate = float64(enrolled) / float64(slots) * 100
	}
	return row
}

// Report is a generated enrollment report.
type Report struct {
	Kind        ReportKind              `json:"kind" example:"total"`
	Range       DateRange               `json:"range" example:"All Time"`
	GeneratedAt time.Time               `json:"generatedAt" example:"2024-08-01T09:12:00Z"`
	Stats       *EnrollmentStats        `json:"stats,omitempty"`
	Strands     []StrandRow             `json:"strands,omitempty"`
	Total       *StrandRow              `json:"total,omitempty"` // Strand reports only
	Enrollments []models.StudentSummary `json:"enrollments,omitempty"`
}

// Filename is the base name reports are exported under.
func (r Report) Filename() string {
	return fmt.Sprintf("SmartEnroll_%s_%s_%s", r.Kind, strings.ReplaceAll(string(r.Range), " ", "_"), r.GeneratedAt.Format("20060102_150405"))
}

// ReportBuilder aggregates enrollment data for reports.
type ReportBuilder struct {
	db         *gorm.DB
	enrollment *EnrollmentLedger
	clock      Clock
}

func NewReportBuilder(db *gorm.DB, enrollment *EnrollmentLedger, clock Clock) *ReportBuilder {
	return &ReportBuilder{db: db, enrollment: enrollment, clock: clock}
}

func (b *ReportBuilder) Build(ctx context.Context, kind ReportKind, dateRange DateRange) (Report, error) {
	if dateRange == "" {
		dateRange = RangeAllTime
	}

	now := b.clock()
	since, err := dateRange.since(now)
	if err != nil {
		return Report{}, err
	}

	report := Report{Kind: kind, Range: dateRange, GeneratedAt: now}

	switch kind {
	case ReportTotal, ReportStrand:
		stats, err := b.enrollment.Stats(ctx, since)
		if err != nil {
			return Report{}, err
		}

		for _, s := range stats.ByStrand {
			report.Strands = append(report.Strands, strandRow(s.Name, s.Enrolled, s.TotalSlots))
		}

		if kind == ReportTotal {
			report.Stats = &stats
		} else {
			total := strandRow("TOTAL", stats.TotalEnrolled, stats.TotalSlots)
			report.Total = &total
		}

	case ReportRecent:
		report.Enrollments, err = b.enrollment.ByDateRange(ctx, since, nil, byDateLimit)
		if err != nil {
			return Report{}, err
		}

	default:
		return Report{}, models.NewValidationError(models.FieldError{Field: "kind", Message: fmt.Sprintf("unknown report kind %q", kind)})
	}

	return report, nil
}

var strandColumns = []string{"Strand", "Enrolled", "Total Slots", "Available", "Fill Rate"}

func (r StrandRow) cells() []string {
	return []string{
		string(r.Name),
		strconv.FormatInt(r.Enrolled, 10),
		strconv.FormatInt(r.TotalSlots, 10),
		strconv.FormatInt(r.Available, 10),
		fmt.Sprintf("%.1f%%", r.FillRate),
	}
}

// Document converts the report into renderable data.
func (r Report) Document() render.ReportData {
	doc := render.ReportData{
		Name:        r.Filename(),
		Subtitle:    "Date Range: " + string(r.Range),
		GeneratedAt: r.GeneratedAt,
	}

	switch r.Kind {
	case ReportTotal:
		doc.Title = "Total Enrollment Report"
		if r.Stats != nil {
			doc.Summary = []render.Field{
				{Label: "Total Enrolled", Value: strconv.FormatInt(r.Stats.TotalEnrolled, 10)},
				{Label: "Total Slots", Value: strconv.FormatInt(r.Stats.TotalSlots, 10)},
				{Label: "Available Slots", Value: strconv.FormatInt(r.Stats.AvailableSlots, 10)},
			}
		}
		doc.Columns = strandColumns
		for _, row := range r.Strands {
			doc.Rows = append(doc.Rows, row.cells())
		}

	case ReportStrand:
		doc.Title = "Detailed Strand Analysis"
		doc.Columns = strandColumns
		for _, row := range r.Strands {
			doc.Rows = append(doc.Rows, row.cells())
		}
		if r.Total != nil {
			doc.Rows = append(doc.Rows, r.Total.cells())
		}

	case ReportRecent:
		doc.Title = fmt.Sprintf("Last %d Enrollments", len(r.Enrollments))
		doc.Columns = []string{"LRN", "Name", "Strand", "Section", "Enrolled On"}
		for _, s := range r.Enrollments {
			section := "-"
			if s.SectionName != nil {
				section = *s.SectionName
			}
			doc.Rows = append(doc.Rows, []string{s.LRN, s.FullName, string(s.Strand), section, s.EnrollmentDate.Format("Jan 02, 2006")})
		}
	}

	return doc
}

// Export builds the report and writes it with the renderer.
func (b *ReportBuilder) Export(ctx context.Context, kind ReportKind, dateRange DateRange, renderer render.DocumentRenderer) (string, error) {
	report, err := b.Build(ctx, kind, dateRange)
	if err != nil {
		return "", err
	}

	return renderer.Report(report.Document())
}
