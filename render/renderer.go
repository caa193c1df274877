package render

import (
	"image/color"
	"strconv"

	"gateseq/core"
)

// Theme holds the grid colors
type Theme struct {
	Grid          color.RGBA
	Background    color.RGBA
	Beat          color.RGBA // Background of every fourth step
	Disabled      color.RGBA // Steps past the track length
	Playhead      color.RGBA
	ActiveText    color.RGBA
	InactiveText  color.RGBA
	Selected      color.RGBA
	SelectedText  color.RGBA
	BPM           color.RGBA
	Label         color.RGBA
	LabelSelected color.RGBA
}

func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

// DefaultTheme is green grid lines on black with a grey playhead
func DefaultTheme() Theme {
	return Theme{
		Grid:          rgb(0x134213),
		Background:    rgb(0x000000),
		Beat:          rgb(0x121212),
		Disabled:      rgb(0x050505),
		Playhead:      rgb(0x444444),
		ActiveText:    rgb(0x949494),
		InactiveText:  rgb(0x333333),
		Selected:      rgb(0xFFFFFF),
		SelectedText:  rgb(0x000000),
		BPM:           rgb(0xF07826),
		Label:         rgb(0x333333),
		LabelSelected: rgb(0xFFFFFF),
	}
}

// Layout is the pixel geometry of the grid
type Layout struct {
	Width, Height int16
	Header        int16 // Status line height
	Label         int16 // Track label column width
	CellW, CellH  int16
	Scale         int16 // Text scale inside cells
}

// NewLayout fits the header, the label column and a 16x8 grid into
// width x height
func NewLayout(width, height int16) Layout {
	l := Layout{
		Width:  width,
		Height: height,
		Header: 16,
		Label:  12,
	}
	l.CellW = (width - l.Label) / core.NumSteps
	l.CellH = (height - l.Header) / core.NumTracks
	l.Scale = (l.CellW - 2) / TextWidth("C#4", 1)
	if s := (l.CellH - 2) / GlyphHeight; s < l.Scale {
		l.Scale = s
	}
	if l.Scale < 1 {
		l.Scale = 1
	}
	if l.Scale > 2 {
		l.Scale = 2
	}
	return l
}

// CellOrigin returns the top left pixel of a grid cell
func (l Layout) CellOrigin(track, step uint8) (x, y int16) {
	return l.Label + int16(step)*l.CellW, l.Header + int16(track)*l.CellH
}

// Header regions
const (
	patternX   = 2
	playX      = 60
	bpmX       = 150
	transportX = 220
	regionW    = 60
)

// Source is what the renderer reads; *core.Sequencer implements it
type Source interface {
	View() core.StateView
	BPM() uint16
}

// Renderer draws frames incrementally. Main loop only.
type Renderer struct {
	canvas Canvas
	src    Source
	view   core.StateView
	theme  Theme
	layout Layout

	playhead int8 // Column drawn with the playhead, -1 for none
	drawn    bool
}

// New creates a renderer sized to the canvas
func New(c Canvas, src Source, theme Theme) *Renderer {
	w, h := c.Size()
	return &Renderer{
		canvas:   c,
		src:      src,
		view:     src.View(),
		theme:    theme,
		layout:   NewLayout(w, h),
		playhead: -1,
	}
}

// Layout returns the geometry in use
func (r *Renderer) Layout() Layout {
	return r.layout
}

// Invalidate forces the next Render to redraw everything
func (r *Renderer) Invalidate() {
	r.drawn = false
}

// Render draws what f reports as changed and pushes it to the display.
// An idle frame draws nothing.
func (r *Renderer) Render(f core.Frame) error {
	if !r.drawn {
		r.drawn = true
		if f.StepChanged {
			r.playhead = int8(f.Step)
		}
		return r.full(f)
	}
	if f.Idle() {
		return nil
	}

	var cols uint16
	sel, hasSel := r.view.SelectedStep()
	selCol := uint16(0)
	if hasSel {
		selCol = 1 << sel
	}

	if f.Dirty.Has(core.DirtyPattern) {
		cols = 0xFFFF
		if err := r.drawPatternInfo(); err != nil {
			return err
		}
	}
	if f.Dirty.Has(core.DirtyNoteData) {
		if hasSel {
			cols |= selCol
		} else {
			cols = 0xFFFF
		}
	}
	if f.Dirty.Has(core.DirtyStepSelection) {
		cols |= selCol
		if prev, ok := r.view.PrevSelectedStep(); ok {
			cols |= 1 << prev
		}
	}
	if f.Dirty.Has(core.DirtyTrackSelection) {
		cols |= selCol
		if err := r.drawLabels(); err != nil {
			return err
		}
	}
	if f.StepChanged {
		if r.playhead >= 0 {
			cols |= 1 << uint8(r.playhead)
		}
		r.playhead = int8(f.Step)
		cols |= 1 << f.Step
	}
	if f.Dirty.Has(core.DirtyBPM) {
		if err := r.drawBPM(); err != nil {
			return err
		}
	}
	if f.Dirty.Has(core.DirtyTransport) {
		if err := r.drawTransport(f.Playing); err != nil {
			return err
		}
	}

	for step := uint8(0); step < core.NumSteps; step++ {
		if cols&(1<<step) == 0 {
			continue
		}
		if err := r.drawColumn(step); err != nil {
			return err
		}
	}
	return r.canvas.Display()
}

func (r *Renderer) full(f core.Frame) error {
	l := r.layout
	if err := r.canvas.FillRectangle(0, 0, l.Width, l.Height, r.theme.Background); err != nil {
		return err
	}
	if err := r.drawPatternInfo(); err != nil {
		return err
	}
	if err := r.drawBPM(); err != nil {
		return err
	}
	if err := r.drawTransport(f.Playing); err != nil {
		return err
	}
	if err := r.drawLabels(); err != nil {
		return err
	}
	for step := uint8(0); step < core.NumSteps; step++ {
		if err := r.drawColumn(step); err != nil {
			return err
		}
	}
	return r.canvas.Display()
}

func (r *Renderer) drawColumn(step uint8) error {
	for track := uint8(0); track < core.NumTracks; track++ {
		if err := r.drawCell(track, step); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawCell(track, step uint8) error {
	l := r.layout
	x, y := l.CellOrigin(track, step)
	if err := r.canvas.FillRectangle(x, y, l.CellW, l.CellH, r.theme.Grid); err != nil {
		return err
	}

	visible, _ := r.view.VisiblePattern()
	st := r.view.Step(visible, track, step)
	tracks, _ := r.view.SelectedTracks()
	sel, hasSel := r.view.SelectedStep()

	bg, fg := r.theme.Background, r.theme.InactiveText
	switch {
	case step >= r.view.TrackLength(visible, track):
		return r.canvas.FillRectangle(x+1, y+1, l.CellW-1, l.CellH-1, r.theme.Disabled)
	case hasSel && sel == step && tracks&(1<<track) != 0:
		bg, fg = r.theme.Selected, r.theme.SelectedText
	case r.playhead == int8(step):
		bg = r.theme.Playhead
	case step%4 == 0:
		bg = r.theme.Beat
	}
	if st.Active && bg != r.theme.Selected {
		fg = r.theme.ActiveText
	}
	if err := r.canvas.FillRectangle(x+1, y+1, l.CellW-1, l.CellH-1, bg); err != nil {
		return err
	}

	text := "--"
	if st.Active || st.Pitch != 0 {
		text = core.NoteName(st.Pitch)
	}
	tx := x + 1 + (l.CellW-1-TextWidth(text, l.Scale))/2
	ty := y + 1 + (l.CellH-1-GlyphHeight*l.Scale)/2
	return DrawText(r.canvas, tx, ty, text, l.Scale, fg)
}

func (r *Renderer) clearRegion(x int16) error {
	return r.canvas.FillRectangle(x, 0, regionW, r.layout.Header, r.theme.Background)
}

func (r *Renderer) textY() int16 {
	return (r.layout.Header - GlyphHeight*2) / 2
}

func (r *Renderer) drawPatternInfo() error {
	if err := r.clearRegion(patternX); err != nil {
		return err
	}
	visible, _ := r.view.VisiblePattern()
	if err := DrawText(r.canvas, patternX, r.textY(), "E"+twoDigits(visible+1), 2, r.theme.ActiveText); err != nil {
		return err
	}

	if err := r.clearRegion(playX); err != nil {
		return err
	}
	text := "P" + twoDigits(r.view.PlayingPattern()+1)
	if r.view.Mode() == core.PlaySong {
		text = "S" + twoDigits(r.view.SongPosition()+1)
	}
	return DrawText(r.canvas, playX, r.textY(), text, 2, r.theme.ActiveText)
}

func (r *Renderer) drawBPM() error {
	if err := r.clearRegion(bpmX); err != nil {
		return err
	}
	bpm := strconv.Itoa(int(r.src.BPM()))
	return DrawText(r.canvas, bpmX, r.textY(), bpm, 2, r.theme.BPM)
}

func (r *Renderer) drawTransport(playing bool) error {
	if err := r.clearRegion(transportX); err != nil {
		return err
	}
	text := "||"
	if playing {
		text = ">"
	}
	return DrawText(r.canvas, transportX, r.textY(), text, 2, r.theme.ActiveText)
}

func (r *Renderer) drawLabels() error {
	l := r.layout
	cur, _ := r.view.SelectedTracks()
	for track := uint8(0); track < core.NumTracks; track++ {
		_, y := l.CellOrigin(track, 0)
		if err := r.canvas.FillRectangle(0, y, l.Label, l.CellH, r.theme.Background); err != nil {
			return err
		}
		fg := r.theme.Label
		if cur&(1<<track) != 0 {
			fg = r.theme.LabelSelected
		}
		ty := y + (l.CellH-GlyphHeight)/2
		if err := DrawText(r.canvas, 2, ty, string(rune('1'+track)), 1, fg); err != nil {
			return err
		}
	}
	return nil
}

func twoDigits(n uint8) string {
	return string([]byte{'0' + n/10%10, '0' + n%10})
}
