package cmd

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/anoixa/comic-tracker/internal/status"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
	alignCenter
)

// 状态格子符号
const (
	markFetched    = "●"
	markMissing    = "○"
	markExtra      = "+"
	markUnschedule = "·"
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) {
			switch aligns[i] {
			case alignRight:
				align = text.AlignRight
			case alignCenter:
				align = text.AlignCenter
			}
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: align,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderStatusGrid 把时间线渲染成每行一个漫画、每列一天的表格
func renderStatusGrid(tl *status.Timeline, colorize bool) string {
	headers := make([]string, 0, len(tl.Days)+2)
	aligns := make([]columnAlignment, 0, len(tl.Days)+2)
	headers = append(headers, "Comic", "Schedule")
	aligns = append(aligns, alignLeft, alignLeft)
	for _, day := range tl.Days {
		headers = append(headers, dayHeader(day, tl.Today))
		aligns = append(aligns, alignCenter)
	}

	rows := make([][]string, 0, tl.Len())
	for _, row := range tl.Rows() {
		r := make([]string, 0, len(headers))
		r = append(r, row.Comic.Slug, row.Schedule.String())
		for _, cell := range row.Cells {
			r = append(r, cellMark(cell, tl.Today, colorize))
		}
		rows = append(rows, r)
	}

	return renderTable(headers, rows, aligns)
}

func dayHeader(day, today time.Time) string {
	label := strconv.Itoa(day.Day())
	if day.Equal(today) {
		return "*" + label
	}
	return label
}

// cellMark 单元格符号，多个 release 时显示数量
func cellMark(cell status.Cell, today time.Time, colorize bool) string {
	var mark string
	var color text.Colors

	switch {
	case cell.Tags.Has(status.TagFetched):
		mark = markFetched
		if !cell.Tags.Has(status.TagScheduled) {
			mark = markExtra
		}
		if n := len(cell.Releases); n > 1 {
			mark = strconv.Itoa(n)
		}
		color = text.Colors{text.FgGreen}
	case cell.Tags.Has(status.TagScheduled):
		mark = markMissing
		// 未来的计划日还不算缺失
		if cell.Date.After(today) {
			color = text.Colors{text.FgYellow}
		} else {
			color = text.Colors{text.FgRed}
		}
	case cell.Tags.Has(status.TagUnscheduled):
		mark = markUnschedule
		color = text.Colors{text.Faint}
	default:
		return ""
	}

	if colorize {
		return color.Sprint(mark)
	}
	return mark
}

func statusLegend() string {
	return markFetched + " fetched  " + markMissing + " scheduled, not fetched  " +
		markExtra + " fetched off schedule  " + markUnschedule + " no schedule  * today"
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
