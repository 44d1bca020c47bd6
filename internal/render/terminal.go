// Package render draws game frames onto an ANSI terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomz197/asteroidfield/internal/draw"
	"github.com/tomz197/asteroidfield/internal/game"
	"github.com/tomz197/asteroidfield/internal/loop/config"
	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
)

// Terminal is a game.Renderer that draws into a terminal. The camera is
// centred on Frame.Camera and shows halfW×halfH world units either side.
// Write errors are sticky: after the first one Render does nothing and Err
// reports it.
type Terminal struct {
	w      io.Writer
	cw     *draw.ChunkWriter
	canvas *draw.Canvas
	size   draw.TermSizeFunc
	now    func() time.Time

	halfW, halfH float64
	cols, rows   int // full terminal size
	started      bool
	err          error
}

var _ game.Renderer = (*Terminal)(nil)

// NewTerminal creates a terminal renderer. A nil size func reads os.Stdout.
func NewTerminal(w io.Writer, size draw.TermSizeFunc, halfW, halfH float64) *Terminal {
	if size == nil {
		size = draw.DefaultTermSizeFunc
	}
	return &Terminal{
		w:      w,
		cw:     draw.NewChunkWriter(w, 0, 0),
		canvas: draw.NewScaledCanvas(1, 1, 2*halfW, 2*halfH),
		size:   size,
		now:    time.Now,
		halfW:  halfW,
		halfH:  halfH,
	}
}

// Err returns the first write error, if any.
func (t *Terminal) Err() error {
	return t.err
}

// Close restores the cursor and clears the screen.
func (t *Terminal) Close() error {
	draw.ClearScreen(t.w)
	draw.ShowCursor(t.w)
	return nil
}

// Render draws one frame.
func (t *Terminal) Render(f game.Frame) {
	if t.err != nil {
		return
	}
	if !t.started {
		draw.HideCursor(t.w)
		t.started = true
	}
	t.resize()

	// Every frame is drawn from scratch; the clear travels in the same write
	// as the frame so the terminal never shows it empty.
	t.cw.SetOffset(0, 0)
	t.cw.WriteString("\033[H\033[2J")
	t.border()

	offCol, offRow := (t.cols-t.canvas.Cols())/2, (t.rows-t.canvas.Rows())/2
	t.cw.SetOffset(offCol, offRow)

	t.canvas.Clear()
	for _, e := range f.Entities {
		if e.Kind == object.KindShip && e.Invulnerable && !t.blinkOn() {
			continue
		}
		t.drawEntity(f.Camera, e)
	}
	if err := t.canvas.Render(t.cw); err != nil {
		t.err = err
		return
	}

	switch f.State {
	case game.AwaitingStart:
		t.drawTitle()
	case game.Playing:
		t.drawHUD(f)
		if f.Paused {
			t.drawPaused()
		}
	case game.GameOver:
		t.drawHUD(f)
		t.drawGameOver(f)
	}

	t.err = t.cw.Flush()
}

// resize clamps the render area to the max resolution and centres it.
func (t *Terminal) resize() {
	cols, rows, err := t.size()
	if err != nil || cols <= 0 || rows <= 0 {
		cols, rows = 80, 24
	}
	t.cols, t.rows = cols, rows
	t.canvas.Resize(min(cols, config.MaxTermWidth), min(rows, config.MaxTermHeight))
}

// border frames the render area when the terminal is larger than it.
func (t *Terminal) border() {
	w, h := t.canvas.Cols(), t.canvas.Rows()
	offCol, offRow := (t.cols-w)/2, (t.rows-h)/2
	if offCol < 1 || offRow < 1 {
		return
	}
	t.cw.WriteAt(offCol, offRow, "┌"+strings.Repeat("─", w)+"┐")
	for row := offRow + 1; row <= offRow+h; row++ {
		t.cw.WriteAt(offCol, row, "│")
		t.cw.WriteAt(offCol+w+1, row, "│")
	}
	t.cw.WriteAt(offCol, offRow+h+1, "└"+strings.Repeat("─", w)+"┘")
}

// project maps a world point into canvas space. World y grows upwards.
func (t *Terminal) project(camera, p physics.Vec2) draw.Point {
	return draw.Point{
		X: p.X - camera.X + t.halfW,
		Y: t.halfH - (p.Y - camera.Y),
	}
}

// visible reports whether a disc of radius r at p can touch the view.
func (t *Terminal) visible(camera, p physics.Vec2, r float64) bool {
	d := p.Sub(camera)
	return math.Abs(d.X) <= t.halfW+r && math.Abs(d.Y) <= t.halfH+r
}

func (t *Terminal) drawEntity(camera physics.Vec2, e game.EntityView) {
	radius := 0.0
	for _, v := range e.Outline {
		radius = max(radius, v.Len())
	}
	if !t.visible(camera, e.Position, radius) {
		return
	}
	points := make([]draw.Point, len(e.Outline))
	for i, v := range e.Outline {
		points[i] = t.project(camera, v.Rotate(e.Rotation).Add(e.Position))
	}
	if len(points) == 0 {
		points = append(points, t.project(camera, e.Position))
	}
	t.canvas.DrawPolygon(points)
}

func (t *Terminal) blinkOn() bool {
	phase := float64(t.now().UnixMilli()) / 1000 * config.InvulnerableBlinkHz * 2
	return int(phase)%2 == 0
}

func (t *Terminal) promptOn() bool {
	return t.now().UnixMilli()/config.PromptBlinkPeriod.Milliseconds()%2 == 0
}

func (t *Terminal) centre(row int, s string) {
	col := (t.canvas.Cols()-utf8.RuneCountInString(s))/2 + 1
	t.cw.WriteAt(col, row, s)
}

// scoreText formats the score zero-padded to four digits.
func scoreText(score int) string {
	return fmt.Sprintf("Score: %04d", score)
}

// hearts draws one glyph per health point.
func hearts(health int) string {
	if health <= 0 {
		return ""
	}
	return strings.Repeat(config.HeartGlyph, health)
}

func (t *Terminal) drawHUD(f game.Frame) {
	t.cw.WriteAt(2, 1, scoreText(f.Score))
	h := hearts(f.Health)
	if h == "" {
		return
	}
	col := t.canvas.Cols() - utf8.RuneCountInString(h)
	t.cw.WriteAt(col, 1, draw.ColorRed+h+draw.ColorReset)
}

var titleArt = []string{
	`    _   ___ _____ ___ ___  ___ ___ ___    ___ ___ ___ _    ___  `,
	`   /_\ / __|_   _| __| _ \/ _ \_ _|   \  | __|_ _| __| |  |   \ `,
	`  / _ \\__ \ | | | _||   / (_) | || |) | | _| | || _|| |__| |) |`,
	` /_/ \_\___/ |_| |___|_|_\\___/___|___/  |_| |___|___|____|___/ `,
}

var gameOverArt = []string{
	`   ___   _   __  __ ___    _____   _____ ___  `,
	`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
	` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
	`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
}

var controlLines = []string{
	"W / Up  . . . . Thrust",
	"A D / < >  . .  Rotate",
	"SPACE  . . . . . Shoot",
	"ESC / P  . . . . Pause",
	"Q  . . . . . . .  Quit",
}

func (t *Terminal) drawArt(top int, art []string) int {
	width := 0
	for _, line := range art {
		width = max(width, len(line))
	}
	col := (t.canvas.Cols()-width)/2 + 1
	for i, line := range art {
		t.cw.WriteAt(col, top+i, line)
	}
	return top + len(art)
}

func (t *Terminal) drawTitle() {
	mid := t.canvas.Rows() / 2
	row := t.drawArt(mid-7, titleArt) + 1
	t.centre(row, "~ survive the drift ~")

	row += 2
	t.centre(row, "Controls")
	for i, line := range controlLines {
		t.centre(row+1+i, line)
	}
	if t.promptOn() {
		t.centre(row+len(controlLines)+2, ">>  Press SPACE to Start  <<")
	}
}

func (t *Terminal) drawGameOver(f game.Frame) {
	mid := t.canvas.Rows() / 2
	row := t.drawArt(mid-5, gameOverArt) + 1
	t.centre(row, fmt.Sprintf("Final score: %d", f.Score))
	if f.AllowRestart && t.promptOn() {
		t.centre(row+2, ">>  Press SPACE to Restart  <<")
	}
}

func (t *Terminal) drawPaused() {
	mid := t.canvas.Rows() / 2
	t.centre(mid-1, "PAUSED")
	t.centre(mid+1, "Press ESC to resume")
}
