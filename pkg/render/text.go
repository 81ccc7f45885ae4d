package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultLinesPerPage = 60
	pageWidth           = 78
	schoolName          = "SmartEnroll System"
	schoolSubtitle      = "Student Enrollment Management System"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// TextRenderer writes documents as plain text pages separated by form feeds.
type TextRenderer struct {
	dir          string
	linesPerPage int
	printer      *message.Printer
	unit         currency.Unit
}

type TextOption func(*TextRenderer)

// WithLinesPerPage sets the page length. Values below 10 are ignored.
func WithLinesPerPage(n int) TextOption {
	return func(r *TextRenderer) {
		if n >= 10 {
			r.linesPerPage = n
		}
	}
}

// NewTextRenderer returns a renderer writing to dir, which is created if needed.
func NewTextRenderer(dir string, opts ...TextOption) (*TextRenderer, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}

	r := &TextRenderer{
		dir:          dir,
		linesPerPage: defaultLinesPerPage,
		printer:      message.NewPrinter(language.English),
		unit:         currency.MustParseISO("PHP"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Money formats an amount with thousands separators, e.g. "PHP 10,000.00".
func (r *TextRenderer) Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return r.printer.Sprintf("%s %.2f", r.unit, f)
}

func centered(s string) string {
	pad := (pageWidth - utf8.RuneCountInString(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func rule(c string) string {
	return strings.Repeat(c, pageWidth)
}

func header(title, subtitle string) []string {
	lines := []string{centered(schoolName), centered(schoolSubtitle), rule("="), centered(title)}
	if subtitle != "" {
		lines = append(lines, centered(subtitle))
	}
	return append(lines, rule("="), "")
}

func (r *TextRenderer) Receipt(d ReceiptData) (string, error) {
	field := func(label, value string) string {
		return fmt.Sprintf("%-20s %s", label+":", value)
	}

	lines := header("OFFICIAL RECEIPT", d.ReceiptNumber)
	lines = append(lines,
		field("Date", d.PaymentDate.Time().Format("January 02, 2006")),
		field("Student", d.StudentName),
		field("LRN", d.LRN),
		field("Strand", fmt.Sprintf("%s, Grade %s", d.Strand, d.GradeLevel)),
		"",
		field("Amount Paid", r.Money(d.Amount)),
		field("Payment Method", d.PaymentMethod),
		field("Payment Type", d.PaymentType),
	)
	if d.ReferenceNumber != "" {
		lines = append(lines, field("Reference Number", d.ReferenceNumber))
	}
	lines = append(lines,
		"",
		rule("-"),
		field("Total Fees", r.Money(d.TotalFees)),
		field("Total Paid", r.Money(d.AmountPaid)),
		field("Balance", r.Money(d.Balance)),
		field("Status", d.PaymentStatus),
		rule("-"),
		"",
		field("Received by", d.RecordedBy),
		field("Issued", d.IssuedAt.Format("January 02, 2006 at 03:04:05 PM")),
	)

	return r.write("Receipt_"+d.ReceiptNumber, lines)
}

func (r *TextRenderer) Report(d ReportData) (string, error) {
	lines := header(d.Title, d.Subtitle)

	for _, f := range d.Summary {
		lines = append(lines, fmt.Sprintf("%-20s %s", f.Label+":", f.Value))
	}
	if len(d.Summary) > 0 {
		lines = append(lines, "")
	}

	if len(d.Rows) == 0 {
		lines = append(lines, "No data for this report.")
	} else {
		lines = append(lines, table(d.Columns, d.Rows)...)
	}

	lines = append(lines, "", "Generated on "+d.GeneratedAt.Format("January 02, 2006 at 03:04:05 PM"))

	return r.write(d.Name, lines)
}

func table(columns []string, rows [][]string) []string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := utf8.RuneCountInString(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = cell + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	lines := []string{format(columns)}
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	lines = append(lines, strings.Join(sep, "  "))

	for _, row := range rows {
		lines = append(lines, format(row))
	}
	return lines
}

// paginate splits lines into pages, reserving two lines per page for the footer.
func (r *TextRenderer) paginate(lines []string) []string {
	body := r.linesPerPage - 2
	pages := (len(lines) + body - 1) / body
	if pages == 0 {
		pages = 1
	}

	out := make([]string, 0, len(lines)+pages*3)
	for p := 0; p < pages; p++ {
		end := (p + 1) * body
		if end > len(lines) {
			end = len(lines)
		}
		out = append(out, lines[p*body:end]...)
		out = append(out, "", centered(fmt.Sprintf("Page %d of %d", p+1, pages)))
		if p < pages-1 {
			out = append(out, "\f")
		}
	}
	return out
}

func (r *TextRenderer) write(name string, lines []string) (string, error) {
	path := filepath.Join(r.dir, unsafeName.ReplaceAllString(name, "_")+".txt")

	content := strings.Join(r.paginate(lines), "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	log.Debug().Str("path", path).Msg("document written")
	return path, nil
}
