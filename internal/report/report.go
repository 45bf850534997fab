// Package report lays out an analysis result as a paginated A4 document.
//
// Blocks are placed with a page-break-before policy: each block checks a
// fixed lookahead against the bottom margin before its heading is drawn.
// Body lines are then written one at a time and break to a new page on
// overflow, so a long paragraph may straddle pages. This is an
// approximation; it makes no orphan or widow guarantees.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
)

const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 20.0
	ContentWidth = PageWidth - 2*Margin

	startY    = 25.0
	topOffset = Margin + 10

	sectionLookahead     = 25.0
	translationLookahead = 30.0

	titleLineHeight = 7.0
	bodyLineHeight  = 5.0
	headingAdvance  = 7.0
	blockSpacing    = 10.0
)

const (
	DefaultHeading     = "Document Intelligence Report"
	TranslationHeading = "Bilingual Translation Packet"
)

var (
	inkColor         = Color{15, 23, 42}
	mutedColor       = Color{148, 163, 184}
	ruleColor        = Color{226, 232, 240}
	sectionColor     = Color{14, 165, 233}
	bodyColor        = Color{51, 65, 85}
	translationColor = Color{192, 38, 211}
	packetColor      = Color{71, 85, 105}
)

// Meta is the header band content
type Meta struct {
	Author      string
	GeneratedAt time.Time
	Heading     string
}

// Options tunes PDF output
type Options struct {
	// FontPath is a TTF font used for every style. Without it only Latin-1 text renders.
	FontPath string
}

// Render writes result as a PDF to w
func Render(w io.Writer, result models.StructuredResult, meta Meta, opts Options) error {
	canvas := newPDFCanvas(opts.FontPath)
	Layout(canvas, result, meta)
	if err := canvas.Output(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// RenderBytes renders into memory
func RenderBytes(result models.StructuredResult, meta Meta, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, result, meta, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Layout draws result on c and returns the number of pages used
func Layout(c Canvas, result models.StructuredResult, meta Meta) int {
	l := &layout{c: c}
	l.c.AddPage()
	l.pages = 1
	l.y = startY

	l.header(meta)

	if result.Title != "" {
		l.title(result.Title)
	}
	for _, sec := range result.Sections {
		if sec.Heading == "" && sec.Content == "" {
			continue
		}
		l.section(sec)
	}
	if result.TranslatedText != "" {
		l.translation(result.TranslatedText)
	}
	return l.pages
}

type layout struct {
	c     Canvas
	y     float64
	pages int
}

func (l *layout) bottom() float64 {
	return PageHeight - Margin
}

func (l *layout) newPage() {
	l.c.AddPage()
	l.pages++
	l.y = topOffset
}

// ensure starts a new page when needed mm would cross the bottom margin
func (l *layout) ensure(needed float64) {
	if l.y+needed > l.bottom() {
		l.newPage()
	}
}

func (l *layout) header(meta Meta) {
	heading := meta.Heading
	if heading == "" {
		heading = DefaultHeading
	}
	author := meta.Author
	if author == "" {
		author = "Unknown"
	}
	generatedAt := meta.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	l.c.SetFont("B", 22)
	l.c.SetTextColor(inkColor)
	l.c.Text(Margin, l.y, heading)
	l.y += 10

	l.c.SetFont("", 8)
	l.c.SetTextColor(mutedColor)
	l.c.Text(Margin, l.y, "Prepared by: "+author)
	l.c.Text(Margin+100, l.y, "Generated: "+generatedAt.Format("02 Jan 2006 15:04 MST"))
	l.y += 12

	l.c.SetDrawColor(ruleColor)
	l.c.Line(Margin, l.y, PageWidth-Margin, l.y)
	l.y += 15
}

func (l *layout) title(title string) {
	l.c.SetFont("B", 16)
	l.c.SetTextColor(inkColor)
	lines := l.c.SplitText(title, ContentWidth)
	l.ensure(float64(len(lines)) * titleLineHeight)
	for _, line := range lines {
		l.c.Text(Margin, l.y, line)
		l.y += titleLineHeight
	}
	l.y += blockSpacing
}

func (l *layout) section(sec models.Section) {
	l.ensure(sectionLookahead)

	l.c.SetFont("B", 12)
	l.c.SetTextColor(sectionColor)
	l.c.Text(Margin, l.y, strings.ToUpper(sec.Heading))
	l.y += headingAdvance

	l.c.SetFont("", 10)
	l.c.SetTextColor(bodyColor)
	l.body(sec.Content)
	l.y += blockSpacing
}

func (l *layout) translation(text string) {
	l.ensure(translationLookahead)

	l.c.SetFont("B", 12)
	l.c.SetTextColor(translationColor)
	l.c.Text(Margin, l.y, TranslationHeading)
	l.y += headingAdvance

	l.c.SetFont("I", 10)
	l.c.SetTextColor(packetColor)
	l.body(text)
}

// body writes wrapped lines, breaking to a new page per line on overflow
func (l *layout) body(text string) {
	if text == "" {
		return
	}
	for _, line := range l.c.SplitText(text, ContentWidth) {
		if l.y > l.bottom() {
			l.newPage()
		}
		l.c.Text(Margin, l.y, line)
		l.y += bodyLineHeight
	}
}
