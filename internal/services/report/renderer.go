package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// markdownToPDF renders markdown content to a PDF byte slice
func (s *Service) markdownToPDF(markdown string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	renderer := &markdownRenderer{
		pdf:    pdf,
		source: source,
		logger: s.logger,
		font:   "Arial",
		size:   9,
	}

	if err := renderer.render(doc); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	return buf.Bytes(), nil
}

// markdownRenderer walks the goldmark AST and draws each node onto the PDF
type markdownRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	logger    arbor.ILogger
	font      string
	size      float64
	bold      bool
	italic    bool
	inList    bool
	listLevel int
}

func (r *markdownRenderer) render(node ast.Node) error {
	return ast.Walk(node, r.walk)
}

func (r *markdownRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *markdownRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		return r.handleParagraph(entering)
	case ast.KindText:
		return r.handleText(n.(*ast.Text), entering)
	case ast.KindEmphasis:
		return r.handleEmphasis(n.(*ast.Emphasis), entering)
	case ast.KindCodeSpan:
		return r.handleCodeSpan(n.(*ast.CodeSpan), entering)
	case ast.KindFencedCodeBlock:
		if entering {
			r.renderCodeBlock(n.(*ast.FencedCodeBlock).Lines())
			return ast.WalkSkipChildren, nil
		}
	case ast.KindCodeBlock:
		if entering {
			r.renderCodeBlock(n.(*ast.CodeBlock).Lines())
			return ast.WalkSkipChildren, nil
		}
	case ast.KindList:
		return r.handleList(entering)
	case ast.KindListItem:
		return r.handleListItem(entering)
	case ast.KindThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case extast.KindTable:
		return r.handleTable(n.(*extast.Table), entering)
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.Ln(6)
		size := 14.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		default:
			size = 10
		}
		r.pdf.SetFont(r.font, "B", size)
	} else {
		r.pdf.Ln(6)
		r.updateFont()
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) handleParagraph(entering bool) (ast.WalkStatus, error) {
	if !entering {
		r.pdf.Ln(7)
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) handleText(n *ast.Text, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.Write(5, string(n.Text(r.source)))
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) handleEmphasis(n *ast.Emphasis, entering bool) (ast.WalkStatus, error) {
	if n.Level == 2 {
		r.bold = entering
	} else {
		r.italic = entering
	}
	r.updateFont()
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) handleCodeSpan(n *ast.CodeSpan, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.SetFont("Courier", "", 10)
		// CodeSpan is inline, so pull text from its children directly
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if textNode, ok := c.(*ast.Text); ok {
				r.pdf.Write(5, string(textNode.Segment.Value(r.source)))
			}
		}
	} else {
		r.updateFont()
	}
	return ast.WalkSkipChildren, nil
}

func (r *markdownRenderer) renderCodeBlock(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", 9)
	r.pdf.SetFillColor(245, 245, 245)

	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.pdf.MultiCell(0, 5, string(line.Value(r.source)), "", "L", true)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(2)
}

func (r *markdownRenderer) handleList(entering bool) (ast.WalkStatus, error) {
	if entering {
		r.inList = true
		r.listLevel++
	} else {
		r.listLevel--
		if r.listLevel == 0 {
			r.inList = false
			r.pdf.Ln(2)
		}
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) handleListItem(entering bool) (ast.WalkStatus, error) {
	if entering {
		// Start each bullet on its own line so items never overlap
		r.pdf.Ln(5)
		indent := float64(r.listLevel) * 5.0
		r.pdf.SetX(15 + indent)
		r.pdf.Write(5, "- ")
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) handleTable(n *extast.Table, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var rows [][]string
	var findRows func(node ast.Node)
	findRows = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if tr, ok := child.(*extast.TableRow); ok {
				rows = append(rows, r.extractRow(tr))
			} else if _, ok := child.(*extast.TableHeader); ok {
				findRows(child)
			}
		}
	}
	findRows(n)

	r.renderTable(rows)
	return ast.WalkSkipChildren, nil
}

func (r *markdownRenderer) extractRow(n *extast.TableRow) []string {
	var row []string
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			row = append(row, string(cell.Text(r.source)))
		}
	}
	return row
}

func (r *markdownRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 {
		return
	}

	r.pdf.Ln(2)

	pageWidth := 180.0
	numCols := len(rows[0])
	if numCols == 0 {
		return
	}

	fontSize := 8.0
	lineHeight := 4.0

	colWidths := r.tableColumnWidths(rows, numCols, pageWidth, fontSize)

	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont(r.font, "B", fontSize)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont(r.font, "", fontSize)
			r.pdf.SetFillColor(255, 255, 255)
		}

		// Row height follows the tallest wrapped cell, capped at 8 lines
		maxLines := 1
		for j, cell := range row {
			if j < numCols {
				lines := r.linesNeeded(cell, colWidths[j]-2)
				if lines > maxLines {
					maxLines = lines
				}
			}
		}
		if maxLines > 8 {
			maxLines = 8
		}

		rowHeight := float64(maxLines)*lineHeight + 2
		startY := r.pdf.GetY()
		startX := r.pdf.GetX()

		pageHeight := 297.0 - 15.0 // A4 height minus margin
		if startY+rowHeight > pageHeight {
			r.pdf.AddPage()
			startY = r.pdf.GetY()
		}

		for j, cell := range row {
			if j < numCols {
				x := startX
				for k := 0; k < j; k++ {
					x += colWidths[k]
				}

				if i == 0 {
					r.pdf.SetFillColor(230, 230, 230)
					r.pdf.Rect(x, startY, colWidths[j], rowHeight, "FD")
				} else {
					r.pdf.Rect(x, startY, colWidths[j], rowHeight, "D")
				}

				r.pdf.SetXY(x+1, startY+1)
				r.renderCellText(cell, colWidths[j]-2, lineHeight, maxLines)
			}
		}

		r.pdf.SetXY(startX, startY+rowHeight)
	}

	r.pdf.Ln(3)
	r.updateFont()
}

// tableColumnWidths sizes columns from measured string widths, then clamps
// and scales them to the page
func (r *markdownRenderer) tableColumnWidths(rows [][]string, numCols int, pageWidth, fontSize float64) []float64 {
	colWidths := make([]float64, numCols)

	r.pdf.SetFont(r.font, "", fontSize)
	for _, row := range rows {
		for i, cell := range row {
			if i < numCols {
				cellWidth := r.pdf.GetStringWidth(cell) + 4
				if cellWidth > colWidths[i] {
					colWidths[i] = cellWidth
				}
			}
		}
	}

	// Header row renders bold, so measure it bold
	if len(rows) > 0 {
		r.pdf.SetFont(r.font, "B", fontSize)
		for i, cell := range rows[0] {
			if i < numCols {
				cellWidth := r.pdf.GetStringWidth(cell) + 4
				if cellWidth > colWidths[i] {
					colWidths[i] = cellWidth
				}
			}
		}
		r.pdf.SetFont(r.font, "", fontSize)
	}

	minWidth := 12.0
	maxWidth := pageWidth / 3.0

	for i := range colWidths {
		if colWidths[i] < minWidth {
			colWidths[i] = minWidth
		}
		if colWidths[i] > maxWidth {
			colWidths[i] = maxWidth
		}
	}

	totalWidth := 0.0
	for _, w := range colWidths {
		totalWidth += w
	}

	if totalWidth > pageWidth {
		scale := pageWidth / totalWidth
		for i := range colWidths {
			colWidths[i] *= scale
			if colWidths[i] < minWidth*0.8 {
				colWidths[i] = minWidth * 0.8
			}
		}
	} else if totalWidth < pageWidth*0.9 {
		scale := (pageWidth * 0.95) / totalWidth
		if scale > 1.5 {
			scale = 1.5
		}
		for i := range colWidths {
			colWidths[i] *= scale
		}
	}

	return colWidths
}

// linesNeeded counts wrapped lines for a cell using measured string widths
func (r *markdownRenderer) linesNeeded(text string, width float64) int {
	if text == "" || width <= 0 {
		return 1
	}

	words := splitWords(text)
	if len(words) == 0 {
		return 1
	}

	lines := 1
	currentLineWidth := 0.0
	spaceWidth := r.pdf.GetStringWidth(" ")

	for _, word := range words {
		wordWidth := r.pdf.GetStringWidth(word)

		switch {
		case currentLineWidth == 0:
			currentLineWidth = wordWidth
		case currentLineWidth+spaceWidth+wordWidth <= width:
			currentLineWidth += spaceWidth + wordWidth
		default:
			lines++
			currentLineWidth = wordWidth
		}
	}

	return lines
}

// renderCellText draws word-wrapped cell text, truncating with an ellipsis
// past maxLines
func (r *markdownRenderer) renderCellText(text string, width, lineHeight float64, maxLines int) {
	if text == "" {
		return
	}

	words := splitWords(text)
	if len(words) == 0 {
		return
	}

	var lines []string
	currentLine := ""
	currentWidth := 0.0
	spaceWidth := r.pdf.GetStringWidth(" ")

	for _, word := range words {
		wordWidth := r.pdf.GetStringWidth(word)

		switch {
		case currentLine == "":
			currentLine = word
			currentWidth = wordWidth
		case currentWidth+spaceWidth+wordWidth <= width:
			currentLine += " " + word
			currentWidth += spaceWidth + wordWidth
		default:
			lines = append(lines, currentLine)
			currentLine = word
			currentWidth = wordWidth
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	for i := 0; i < len(lines) && i < maxLines; i++ {
		line := lines[i]
		if i == maxLines-1 && len(lines) > maxLines {
			for r.pdf.GetStringWidth(line+"...") > width && len(line) > 3 {
				line = line[:len(line)-1]
			}
			line += "..."
		}
		r.pdf.CellFormat(width, lineHeight, line, "", 2, "L", false, 0, "")
	}
}

func splitWords(text string) []string {
	var words []string
	current := ""
	for _, c := range text {
		if c == ' ' || c == '\t' || c == '\n' {
			if current != "" {
				words = append(words, current)
				current = ""
			}
		} else {
			current += string(c)
		}
	}
	if current != "" {
		words = append(words, current)
	}
	return words
}
