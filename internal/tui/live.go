package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/soilsim/internal/sim"
)

const (
	width       = 70
	height      = 18
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws the moisture trajectory while a run is stepping. It is
// attached to the engine as a step listener and throttles itself to the
// requested frame rate.
type LiveRenderer struct {
	target    float64
	low       float64
	high      float64
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	history   []sim.Sample
}

func NewLiveRenderer(target, low, high float64, frameRate int) *LiveRenderer {
	if high <= low {
		high = low + 1
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		target:    target,
		low:       low,
		high:      high,
		frameRate: frameRate,
		canvas:    canvas,
		history:   make([]sim.Sample, 0, width),
	}
}

func (r *LiveRenderer) OnStep(s sim.Sample) {
	r.history = append(r.history, s)
	if len(r.history) > width {
		r.history = r.history[1:]
	}

	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.clear()
	r.drawTargetLine()
	r.drawHistory()
	r.render(s)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

// row maps a moisture value to a canvas row, clamped to the plot area.
func (r *LiveRenderer) row(v float64) int {
	frac := (v - r.low) / (r.high - r.low)
	y := height - 1 - int(frac*float64(height-1))
	if y < 0 {
		y = 0
	}
	if y >= height {
		y = height - 1
	}
	return y
}

func (r *LiveRenderer) drawTargetLine() {
	y := r.row(r.target)
	for x := 0; x < width; x++ {
		r.canvas[y][x] = '-'
	}
}

func (r *LiveRenderer) drawHistory() {
	for i, s := range r.history {
		r.set(i, r.row(s.Estimated), '+')
		r.set(i, r.row(s.Moisture), '*')
	}
}

func (r *LiveRenderer) render(s sim.Sample) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  soil moisture  t=%.2fs\n", s.T))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  theta=%.2f est=%.2f u=%.3f  (* true, + estimate, - target)\n",
		s.Moisture, s.Estimated, s.Control))

	fmt.Print(b.String())
}

func (r *LiveRenderer) Start() { fmt.Print(hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Print(showCursor) }
