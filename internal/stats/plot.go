package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/lingua-health/lingua/internal/model"
)

// Series is one named metric line of the trend chart.
type Series struct {
	Name   string
	Values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	scaleMin           = 0.0
	scaleMax           = 100.0
	axisSeparator      = " │ "
	colorReset         = "\x1b[0m"
	fallbackWidth      = 80
)

var axisLabels = [3]string{"100", "50", "0"}

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
}

// Redness, moisture, cracks.
var seriesColors = []string{"\x1b[31m", "\x1b[36m", "\x1b[33m"}

// TrendSeries splits trend points into the three charted metrics.
func TrendSeries(points []model.TrendPoint) []Series {
	redness := make([]float64, len(points))
	moisture := make([]float64, len(points))
	cracks := make([]float64, len(points))
	for i, p := range points {
		redness[i] = p.Redness
		moisture[i] = p.Moisture
		cracks[i] = p.Cracks
	}
	return []Series{
		{Name: "Redness", Values: redness},
		{Name: "Moisture", Values: moisture},
		{Name: "Cracks", Values: cracks},
	}
}

// RenderTrendChart draws a braille line chart of the trend points on a fixed
// 0-100 scale. A width of zero sizes the chart to the terminal.
func RenderTrendChart(w io.Writer, title string, points []model.TrendPoint, width, height int, forceColor bool) error {
	if len(points) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	if width <= 0 {
		width = ChartWidthFor(terminalWidth())
	}
	if width < minChartWidth {
		width = minChartWidth
	}

	series := TrendSeries(points)
	cells := make([][][]uint8, len(series))
	for si, s := range series {
		cells[si] = makeCells(height, width)
		plotLine(cells[si], resampleSeries(s.Values, width), height, lineStyles[si%len(lineStyles)])
	}

	useColor := shouldUseColor(w, forceColor)
	labelWidth := len(axisLabels[0])
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", labelWidth, axisLabelFor(y, height), axisSeparator)
		for x := 0; x < width; x++ {
			mask, idx := composeCell(cells, x, y)
			ch := brailleFromMask(mask)
			if useColor && idx >= 0 {
				row.WriteString(seriesColors[idx%len(seriesColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
				continue
			}
			row.WriteRune(ch)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	gutter := strings.Repeat(" ", labelWidth+runewidth.StringWidth(axisSeparator))
	if _, err := fmt.Fprintln(w, gutter+dateAxis(points, width)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	return nil
}

func plotLine(cells [][]uint8, values []float64, height int, style lineStyle) {
	dots := height * 4
	prevX, prevY := -1, -1
	for x, v := range values {
		px, py := x*2, valueToRow(v, dots)
		if prevX >= 0 {
			drawLine(prevX, prevY, px, py, func(dx, dy int) {
				if style.shouldPlot(dx) {
					setBrailleDot(cells, dx, dy)
				}
			})
		} else if style.shouldPlot(px) {
			setBrailleDot(cells, px, py)
		}
		prevX, prevY = px, py
	}
}

// ChartWidthFor computes the plot area width that fits in totalWidth columns.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	plotWidth := totalWidth - len(axisLabels[0]) - runewidth.StringWidth(axisSeparator)
	if plotWidth < minChartWidth {
		plotWidth = minChartWidth
	}
	return plotWidth
}

func axisLabelFor(y, height int) string {
	switch {
	case y == 0:
		return axisLabels[0]
	case y == height-1:
		return axisLabels[2]
	case height > 2 && y == height/2:
		return axisLabels[1]
	default:
		return ""
	}
}

// dateAxis places the first and last dates under the plot area.
func dateAxis(points []model.TrendPoint, width int) string {
	first := points[0].Date
	if len(points) == 1 {
		return runewidth.Truncate(first, width, "")
	}
	last := points[len(points)-1].Date
	gap := width - runewidth.StringWidth(first) - runewidth.StringWidth(last)
	if gap < 1 {
		return runewidth.Truncate(first, width, "")
	}
	return first + strings.Repeat(" ", gap) + last
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges the dots of every series at one cell. The returned index
// names the first series with a dot there, or -1.
func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	idx := -1
	for i, cells := range seriesCells {
		if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
			continue
		}
		if cells[y][x] == 0 {
			continue
		}
		if idx == -1 {
			idx = i
		}
		mask |= cells[y][x]
	}
	return mask, idx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// resampleSeries stretches or averages values to exactly width samples.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(width-1)
			idx := int(math.Floor(pos))
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

// valueToRow maps a score onto a dot row, 0 being the top.
func valueToRow(v float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	v = math.Max(scaleMin, math.Min(scaleMax, v))
	pos := (v - scaleMin) / (scaleMax - scaleMin)
	return int(math.Round((1 - pos) * float64(dots-1)))
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := brailleFromMask(0x01)
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, lineStyles[i%len(lineStyles)].name)
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

// drawLine walks the Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cy, cx := y/4, x/2
	if cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleDotMask(x%2, y%4)
}

var brailleDots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func brailleDotMask(x, y int) uint8 {
	if x < 0 || x > 1 || y < 0 || y > 3 {
		return 0
	}
	return brailleDots[x][y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
