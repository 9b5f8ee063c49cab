package runner

import (
	"fmt"
	"math"

	"github.com/vovakirdan/lanerunner/internal/core"
	"github.com/vovakirdan/lanerunner/internal/engine"
)

// Visual characters for rendering
const (
	EdgeLeftChar  = '/'
	EdgeRightChar = '\\'
	DividerChar   = ':'
	BlockChar     = '█'
	BarrierChar   = '▄'
	OverheadChar  = '▀'
	CoinChar      = 'o'
	HeadChar      = 'O'
	BodyChar      = '▓'
	ProneChar     = '━'
	DustChar      = '·'
)

const (
	viewDepth    = 90.0 // Track units visible ahead of the avatar
	horizonRow   = 2
	farScale     = 0.35 // Lane width at the horizon relative to the near edge
	rowsPerUnit  = 1.2  // Screen rows per unit of height
	dividerPitch = 4.0  // Track units between divider dashes
)

// view maps track coordinates onto the screen.
type view struct {
	w, h     int
	near     int // Row of the avatar's feet
	laneCols float64
	centre   int
}

func newView(w, h int) view {
	near := h - 3
	if near <= horizonRow+1 {
		near = horizonRow + 2
	}
	return view{
		w:        w,
		h:        h,
		near:     near,
		laneCols: math.Max(float64(w)/5, 3),
		centre:   w / 2,
	}
}

// depth returns z's distance ahead as a fraction of the visible depth.
func (v view) depth(z float64) float64 {
	return -z / viewDepth
}

// row maps a depth fraction to a screen row with perspective compression
// toward the horizon.
func (v view) row(f float64) int {
	p := 1 / (1 + 3*f) // 1 at the near edge, 1/4 at the horizon
	span := float64(v.near - horizonRow)
	return horizonRow + int(math.Round(span*(p-0.25)/0.75))
}

// scale returns the lane width multiplier at depth f.
func (v view) scale(f float64) float64 {
	return 1 - (1-farScale)*core.ClampF(f, 0, 1)
}

// project converts lateral x (in lanes) and z into a screen cell. ok is false
// outside the visible depth.
func (v view) project(lanes, z float64) (col, row int, ok bool) {
	f := v.depth(z)
	if f < -0.05 || f > 1 {
		return 0, 0, false
	}
	col = v.centre + int(math.Round(lanes*v.laneCols*v.scale(f)))
	row = v.row(math.Max(f, 0))
	return col, row, true
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.eng == nil {
		return
	}

	snap := g.eng.Snapshot()
	v := newView(dst.Width(), dst.Height())
	if snap.Shake && g.frame%2 == 0 {
		v.centre++
	}
	laneWidth := g.cfg.Track.LaneWidth

	g.drawTrack(dst, v, snap.Distance)

	for i, o := range snap.Obstacles {
		if i != snap.HitSlot {
			drawObstacle(dst, v, o, false)
		}
	}
	if snap.HitSlot >= 0 && snap.HitSlot < len(snap.Obstacles) {
		drawObstacle(dst, v, snap.Obstacles[snap.HitSlot], true)
	}
	for _, c := range snap.CoinSlots {
		if !c.Active {
			continue
		}
		if col, row, ok := v.project(c.X/laneWidth, c.Z); ok {
			dst.SetColored(col, row, CoinChar, core.ColorBrightYellow)
		}
	}
	for _, p := range snap.PowerUps {
		if !p.Active {
			continue
		}
		if col, row, ok := v.project(float64(p.Lane), p.Z); ok {
			r, c := powerUpGlyph(p.Kind)
			dst.SetColored(col, row, r, c)
		}
	}

	g.drawAvatar(dst, v, snap)
	g.drawHUD(dst, snap)
	g.drawOverlay(dst, snap)
}

func (g *Game) drawTrack(dst *core.Screen, v view, distance float64) {
	for row := horizonRow; row <= v.near; row++ {
		// Invert row() to recover the depth of this row.
		span := float64(v.near - horizonRow)
		p := 0.25 + 0.75*float64(row-horizonRow)/span
		f := (1/p - 1) / 3
		half := v.laneCols * v.scale(f)

		left := v.centre - int(math.Round(1.5*half))
		right := v.centre + int(math.Round(1.5*half))
		dst.SetColored(left, row, EdgeLeftChar, core.ColorGray)
		dst.SetColored(right, row, EdgeRightChar, core.ColorGray)

		// Dashes scroll with distance so the track feels like it moves.
		trackZ := f*viewDepth + distance
		if math.Mod(trackZ, dividerPitch) < dividerPitch/2 {
			dst.SetColored(v.centre-int(math.Round(0.5*half)), row, DividerChar, core.ColorGray)
			dst.SetColored(v.centre+int(math.Round(0.5*half)), row, DividerChar, core.ColorGray)
		}
	}
}

func drawObstacle(dst *core.Screen, v view, o engine.Obstacle, hit bool) {
	if !o.Active && !hit {
		return
	}
	col, row, ok := v.project(float64(o.Lane), o.Z)
	if !ok {
		return
	}
	f := math.Max(v.depth(o.Z), 0)
	width := int(math.Max(1, math.Round(v.laneCols*v.scale(f)*0.6)))

	glyph, color := obstacleGlyph(o.Kind)
	if hit {
		color = core.ColorBrightRed
	}
	height := 1
	if o.Kind == engine.ObstacleBlock && f < 0.3 {
		height = 2
	}

	top := row - height + 1
	if o.Kind == engine.ObstacleOverhead {
		// Overheads hang above head height.
		top = row - 2
	}
	for dy := 0; dy < height; dy++ {
		for dx := -width / 2; dx <= width/2; dx++ {
			dst.SetColored(col+dx, top+dy, glyph, color)
		}
	}
}

func obstacleGlyph(kind engine.ObstacleKind) (rune, core.Color) {
	switch kind {
	case engine.ObstacleBarrier:
		return BarrierChar, core.ColorYellow
	case engine.ObstacleOverhead:
		return OverheadChar, core.ColorMagenta
	default:
		return BlockChar, core.ColorRed
	}
}

func powerUpGlyph(kind engine.PowerUpKind) (rune, core.Color) {
	if kind == engine.PowerUpMagnet {
		return 'M', core.ColorMagenta
	}
	return 'S', core.ColorBrightCyan
}

func (g *Game) drawAvatar(dst *core.Screen, v view, snap engine.Snapshot) {
	laneWidth := g.cfg.Track.LaneWidth
	col, feet, ok := v.project(snap.Lateral/laneWidth, snap.AvatarZ)
	if !ok {
		col, feet = v.centre, v.near
	}
	lift := int(math.Round(math.Max(snap.Vertical, 0) * rowsPerUnit))
	feet -= lift
	if feet < horizonRow {
		feet = horizonRow
	}

	color := core.ColorWhite
	g.mu.Lock()
	flashing := g.flash > 0
	g.mu.Unlock()
	switch {
	case snap.ShieldActive:
		color = core.ColorBrightCyan
	case flashing:
		color = core.ColorOrange
	}

	switch {
	case snap.Pitch > math.Pi/4:
		for dx := -1; dx <= 1; dx++ {
			dst.SetColored(col+dx, feet, ProneChar, color)
		}
		dst.SetColored(col+2, feet, HeadChar, color)
	case snap.Sliding || snap.Crouch > 0.5:
		dst.SetColored(col, feet, BodyChar, color)
		dst.SetColored(col+1, feet, HeadChar, color)
	default:
		dst.SetColored(col, feet, BodyChar, color)
		dst.SetColored(col, feet-1, HeadChar, color)
	}

	if snap.Jumping && lift > 0 {
		dst.SetColored(col, v.near, DustChar, core.ColorGray)
	}
}

func (g *Game) drawHUD(dst *core.Screen, snap engine.Snapshot) {
	left := fmt.Sprintf(" Score: %d  Coins: %d  Lvl: %d ", snap.Score(), snap.RunState.Coins, snap.Level)
	dst.DrawText(1, 0, left)

	right := fmt.Sprintf(" Spd: %.1f ", snap.Speed)
	if snap.Combo > 1 {
		right = fmt.Sprintf(" x%.1f%s", snap.Combo, right)
	}
	dst.DrawText(dst.Width()-len(right)-1, 0, right)

	status := ""
	if snap.ShieldActive {
		status += fmt.Sprintf(" [shield %.0fs]", math.Ceil(snap.ShieldRemaining))
	}
	if snap.MagnetActive {
		status += fmt.Sprintf(" [magnet %.0fs]", math.Ceil(snap.MagnetRemaining))
	}
	g.mu.Lock()
	if g.toast != "" {
		status += "  " + g.toast
	}
	g.mu.Unlock()
	if status != "" {
		dst.DrawTextColored(1, 1, status, core.ColorCyan)
	}
}

func (g *Game) drawOverlay(dst *core.Screen, snap engine.Snapshot) {
	switch {
	case g.paused:
		drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	case snap.Phase == engine.PhaseIntro:
		dst.DrawTextCentered(dst.Height()/2, "Incoming...")
	case snap.Phase == engine.PhaseGameOver:
		drawCenteredMessage(dst, "GAME OVER",
			fmt.Sprintf("Score: %d  Coins: %d  |  Press R to restart", snap.Score(), snap.RunState.Coins))
	}
}

// drawCenteredMessage draws a boxed two-line message in the middle of dst.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	boxW := max(len(title), len(subtitle)) + 6
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := (dst.Height() - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))
	dst.DrawText(boxX+(boxW-len(title))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}
