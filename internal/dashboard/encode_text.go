package dashboard

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
)

// ColorMode 终端颜色
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

var ansi = map[CellClass]string{
	ClassNormal:    "\033[32m",
	ClassFail:      "\033[31m",
	ClassTriggered: "\033[33m",
	ClassError:     "\033[35m",
	ClassBox:       "\033[1m",
}

const ansiReset = "\033[0m"

// TextEncoder 终端输出; 颜色模式为 auto 时只在 w 是终端时着色
type TextEncoder struct {
	w     io.Writer
	color bool
	clear bool
}

// NewTextEncoder 创建终端输出
func NewTextEncoder(w io.Writer, mode ColorMode) *TextEncoder {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	color := mode == ColorAlways || (mode != ColorNever && tty)
	return &TextEncoder{w: w, color: color, clear: tty}
}

// Render 实现 Renderer
func (e *TextEncoder) Render(p Page) error {
	bw := bufio.NewWriter(e.w)
	if e.clear {
		bw.WriteString("\033[H\033[2J")
	}

	bw.WriteString(e.paint(ClassBox, p.Title))
	for _, c := range p.Status {
		bw.WriteString("  ")
		bw.WriteString(e.paint(c.Class, c.Text))
	}
	bw.WriteString("\n")
	if p.Banner != "" {
		bw.WriteString(e.paint(ClassFail, "! "+p.Banner))
		bw.WriteString("\n")
	}

	for _, t := range p.Tables {
		bw.WriteString("\n")
		e.writeTable(bw, t)
	}
	return bw.Flush()
}

func (e *TextEncoder) paint(class CellClass, text string) string {
	code, ok := ansi[class]
	if !e.color || !ok {
		return text
	}
	return code + text + ansiReset
}

// writeTable 手动补空格对齐; 颜色转义码不计入宽度
func (e *TextEncoder) writeTable(bw *bufio.Writer, t Table) {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, r := range t.Rows {
		for i, c := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(c.Text))
			}
		}
	}

	bw.WriteString(e.paint(ClassBox, t.Title))
	bw.WriteString("\n")

	header := make([]Cell, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = Cell{Text: c}
	}
	e.writeRow(bw, header, widths)
	if len(t.Rows) == 0 {
		bw.WriteString("  (none)\n")
		return
	}
	for _, r := range t.Rows {
		e.writeRow(bw, r, widths)
	}
}

func (e *TextEncoder) writeRow(bw *bufio.Writer, r Row, widths []int) {
	var sb strings.Builder
	for i, c := range r {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(e.paint(c.Class, c.Text))
		if i < len(r)-1 && i < len(widths) {
			sb.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c.Text)))
		}
	}
	bw.WriteString(strings.TrimRight(sb.String(), " "))
	bw.WriteString("\n")
}
