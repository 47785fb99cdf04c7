package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

type series struct {
	name   string
	values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	sparkChars          = " .:-=+*#%@"
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dotted", period: 4, on: 1},
}

var colorPalette = []string{
	"\x1b[36m",
	"\x1b[33m",
}

// PlotLaps draws lap durations in lap order as a braille line chart with the
// running lap average overlaid. Both lines share one time axis. Fewer than two
// laps draw nothing.
func PlotLaps(w io.Writer, laps []stopwatch.Lap, width, height int, forceColor bool) error {
	if len(laps) < 2 {
		return nil
	}
	durations := lapSeconds(laps)
	lines := []series{
		{name: "lap", values: durations},
		{name: "running avg", values: runningAverage(durations)},
	}

	if height <= 0 {
		height = defaultPlotHeight
	}
	labels := axisLabels(lines, height)
	labelWidth := 0
	for _, l := range labels {
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}
	if width <= 0 {
		width = terminalWidth() - labelWidth - len([]rune(axisSeparator))
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	minVal, maxVal := axisRange(lines)
	cells := make([][][]uint8, len(lines))
	for si, s := range lines {
		cells[si] = makeCells(height, width)
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for x, v := range resample(s.values, width) {
			px := x * 2
			py := valueToRow(v, minVal, maxVal, height*4)
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(cells[si], dx, dy)
					}
				})
			} else if style.shouldPlot(px) {
				setBrailleDot(cells[si], px, py)
			}
			prevX, prevY = px, py
		}
	}

	useColor := shouldUseColor(w, forceColor)
	if _, err := fmt.Fprintf(w, "Lap times (%d laps)\n", len(laps)); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", labelWidth, labels[y], axisSeparator))
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(cells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, legend(lines, useColor))
	return err
}

// Sparkline renders lap durations, oldest first, as a one-line ASCII trend.
func Sparkline(laps []stopwatch.Lap) string {
	values := lapSeconds(laps)
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[clampInt(idx, 0, len(sparkChars)-1)])
	}
	return b.String()
}

// lapSeconds returns lap durations in seconds, oldest lap first.
func lapSeconds(laps []stopwatch.Lap) []float64 {
	out := make([]float64, len(laps))
	for i, lap := range laps {
		out[len(laps)-1-i] = lap.Duration.Seconds()
	}
	return out
}

func runningAverage(values []float64) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		out[i] = sum / float64(i+1)
	}
	return out
}

func axisRange(lines []series) (float64, float64) {
	var all []float64
	for _, s := range lines {
		all = append(all, s.values...)
	}
	minVal, maxVal := minMax(all)
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal = math.Max(0, minVal-1)
		maxVal++
	}
	return minVal, maxVal
}

func axisLabels(lines []series, height int) []string {
	labels := make([]string, height)
	minVal, maxVal := axisRange(lines)
	labels[0] = formatSeconds(maxVal)
	if height > 2 {
		labels[height/2] = formatSeconds((minVal + maxVal) / 2)
	}
	if height > 1 {
		labels[height-1] = formatSeconds(minVal)
	}
	return labels
}

func formatSeconds(v float64) string {
	return stopwatch.FormatTime(time.Duration(v * float64(time.Second)))
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	if len(values) > width {
		for i := 0; i < width; i++ {
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
		return out
	}
	if width == 1 {
		out[0] = values[0]
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
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

func legend(lines []series, useColor bool) string {
	parts := make([]string, 0, len(lines))
	marker := brailleFromMask(0x01)
	for i, s := range lines {
		label := fmt.Sprintf("%c %s (%s)", marker, s.name, lineStyles[i%len(lineStyles)].name)
		if useColor {
			label = colorPalette[i%len(colorPalette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
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

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	return clampInt(int(math.Round((1-pos)*float64(height-1))), 0, height-1)
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(lines [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range lines {
		if cells[y][x] == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cells[y][x]
	}
	return mask, colorIdx
}

// drawLine walks a Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
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

func setBrailleDot(cells [][]uint8, x, y int) {
	cellY, cellX := y/4, x/2
	if y < 0 || x < 0 || cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// brailleDotMask maps a dot within a 2x4 cell to its Unicode braille bit.
func brailleDotMask(x, y int) uint8 {
	masks := [2][4]uint8{
		{0x01, 0x02, 0x04, 0x40},
		{0x08, 0x10, 0x20, 0x80},
	}
	return masks[x][y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

func clampInt(v, low, high int) int {
	return min(max(v, low), high)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
