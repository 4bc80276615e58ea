package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
)

const (
	chartWidth  = 1400
	chartHeight = 700
)

type rgb struct {
	R, G, B float64
}

var (
	green  = rgb{0.17, 0.63, 0.17}
	blue   = rgb{0.12, 0.47, 0.71}
	red    = rgb{0.84, 0.15, 0.16}
	orange = rgb{1.0, 0.5, 0.05}
)

type timedValue struct {
	T time.Time
	V float64
}

type legendEntry struct {
	Label  string
	Color  rgb
	Dashed bool
}

// chartFrame maps dates and index values onto a gg canvas with fixed margins.
type chartFrame struct {
	dc                       *gg.Context
	minT, maxT               time.Time
	minV, maxV               float64
	left, right, top, bottom float64
}

func newChartFrame(minT, maxT time.Time, minV, maxV float64) *chartFrame {
	if !maxT.After(minT) {
		maxT = minT.AddDate(0, 0, 1)
	}
	if maxV <= minV {
		minV, maxV = minV-0.1, maxV+0.1
	}
	pad := (maxV - minV) * 0.1
	minV, maxV = minV-pad, maxV+pad

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetRGB(1, 1, 1) // White background
	dc.Clear()

	return &chartFrame{
		dc:     dc,
		minT:   minT,
		maxT:   maxT,
		minV:   minV,
		maxV:   maxV,
		left:   80,
		right:  chartWidth - 40,
		top:    60,
		bottom: chartHeight - 70,
	}
}

func (f *chartFrame) x(t time.Time) float64 {
	span := f.maxT.Sub(f.minT).Seconds()
	return f.left + (f.right-f.left)*t.Sub(f.minT).Seconds()/span
}

func (f *chartFrame) y(v float64) float64 {
	return f.bottom - (f.bottom-f.top)*(v-f.minV)/(f.maxV-f.minV)
}

func (f *chartFrame) drawAxes(title, xLabel, yLabel string) {
	dc := f.dc

	// dotted grid with tick labels
	dc.SetRGBA(0, 0, 0, 0.25)
	dc.SetLineWidth(1)
	dc.SetDash(2, 4)
	for i := 0; i <= 5; i++ {
		v := f.minV + (f.maxV-f.minV)*float64(i)/5
		dc.DrawLine(f.left, f.y(v), f.right, f.y(v))
		dc.Stroke()
	}
	for i := 0; i <= 6; i++ {
		t := f.minT.Add(time.Duration(float64(f.maxT.Sub(f.minT)) * float64(i) / 6))
		dc.DrawLine(f.x(t), f.top, f.x(t), f.bottom)
		dc.Stroke()
	}
	dc.SetDash()

	dc.SetRGB(0, 0, 0)
	for i := 0; i <= 5; i++ {
		v := f.minV + (f.maxV-f.minV)*float64(i)/5
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", v), f.left-8, f.y(v), 1, 0.5)
	}
	for i := 0; i <= 6; i++ {
		t := f.minT.Add(time.Duration(float64(f.maxT.Sub(f.minT)) * float64(i) / 6))
		dc.DrawStringAnchored(t.Format("2006-01"), f.x(t), f.bottom+16, 0.5, 0.5)
	}

	dc.DrawRectangle(f.left, f.top, f.right-f.left, f.bottom-f.top)
	dc.SetLineWidth(1)
	dc.Stroke()

	dc.DrawStringAnchored(title, chartWidth/2, 30, 0.5, 0.5)
	dc.DrawStringAnchored(xLabel, (f.left+f.right)/2, chartHeight-25, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 20, (f.top+f.bottom)/2)
	dc.DrawStringAnchored(yLabel, 20, (f.top+f.bottom)/2, 0.5, 0.5)
	dc.Pop()
}

func (f *chartFrame) horizontal(v float64, alpha float64) {
	if v < f.minV || v > f.maxV {
		return
	}
	f.dc.SetRGBA(0, 0, 0, alpha)
	f.dc.SetLineWidth(0.8)
	f.dc.DrawLine(f.left, f.y(v), f.right, f.y(v))
	f.dc.Stroke()
}

func (f *chartFrame) line(points []timedValue, c rgb, width float64, dashed bool) {
	if len(points) == 0 {
		return
	}
	dc := f.dc
	dc.SetRGB(c.R, c.G, c.B)
	dc.SetLineWidth(width)
	if dashed {
		dc.SetDash(8, 5)
	}
	dc.MoveTo(f.x(points[0].T), f.y(points[0].V))
	for _, p := range points[1:] {
		dc.LineTo(f.x(p.T), f.y(p.V))
	}
	dc.Stroke()
	dc.SetDash()
}

func (f *chartFrame) markers(points []timedValue, c rgb, radius float64) {
	f.dc.SetRGB(c.R, c.G, c.B)
	for _, p := range points {
		f.dc.DrawCircle(f.x(p.T), f.y(p.V), radius)
		f.dc.Fill()
	}
}

// band shades the area between lower and upper, which share their dates.
func (f *chartFrame) band(lower, upper []timedValue, c rgb, alpha float64) {
	if len(lower) == 0 || len(lower) != len(upper) {
		return
	}
	dc := f.dc
	dc.SetRGBA(c.R, c.G, c.B, alpha)
	dc.MoveTo(f.x(upper[0].T), f.y(upper[0].V))
	for _, p := range upper[1:] {
		dc.LineTo(f.x(p.T), f.y(p.V))
	}
	for i := len(lower) - 1; i >= 0; i-- {
		dc.LineTo(f.x(lower[i].T), f.y(lower[i].V))
	}
	dc.ClosePath()
	dc.Fill()
}

func (f *chartFrame) zone(from, to time.Time, c rgb, alpha float64) {
	f.dc.SetRGBA(c.R, c.G, c.B, alpha)
	f.dc.DrawRectangle(f.x(from), f.top, f.x(to)-f.x(from), f.bottom-f.top)
	f.dc.Fill()
}

func (f *chartFrame) legend(entries []legendEntry) {
	dc := f.dc
	legendX := f.left + 15
	legendY := f.top + 15
	legendSpacing := 20.0

	for i, entry := range entries {
		y := legendY + float64(i)*legendSpacing

		dc.SetRGB(entry.Color.R, entry.Color.G, entry.Color.B)
		dc.SetLineWidth(3)
		if entry.Dashed {
			dc.SetDash(5, 3)
		}
		dc.DrawLine(legendX, y, legendX+25, y)
		dc.Stroke()
		dc.SetDash()

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(entry.Label, legendX+32, y, 0, 0.5)
	}
}

func (f *chartFrame) save(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := f.dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// bounds returns the date and value extent of every non-empty group.
func bounds(groups ...[]timedValue) (time.Time, time.Time, float64, float64, bool) {
	var minT, maxT time.Time
	minV, maxV := math.Inf(1), math.Inf(-1)
	found := false
	for _, group := range groups {
		for _, p := range group {
			if math.IsNaN(p.V) {
				continue
			}
			if !found || p.T.Before(minT) {
				minT = p.T
			}
			if !found || p.T.After(maxT) {
				maxT = p.T
			}
			minV = math.Min(minV, p.V)
			maxV = math.Max(maxV, p.V)
			found = true
		}
	}
	return minT, maxT, minV, maxV, found
}
