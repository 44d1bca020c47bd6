package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Canvas is a monochrome pixel buffer with two pixels per terminal cell
// (upper and lower half). Callers draw in a fixed logical coordinate space
// and the canvas scales it to whatever terminal size it currently has.
type Canvas struct {
	cols, rows int
	pixels     []bool // [y*cols + x], y in sub-pixel rows

	logicalW, logicalH float64
	scaleX, scaleY     float64

	offCol, offRow int

	out    strings.Builder
	numBuf [20]byte
}

// NewScaledCanvas creates a cols×rows terminal canvas addressed in a
// logicalW×logicalH coordinate space.
func NewScaledCanvas(cols, rows int, logicalW, logicalH float64) *Canvas {
	c := &Canvas{logicalW: logicalW, logicalH: logicalH}
	c.Resize(cols, rows)
	return c
}

// Resize changes the terminal size, keeping the logical space. It is a no-op
// when the size is unchanged.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == c.cols && rows == c.rows {
		return
	}
	c.cols, c.rows = cols, rows
	c.pixels = make([]bool, cols*rows*2)
	c.scaleX = float64(cols) / c.logicalW
	c.scaleY = float64(rows*2) / c.logicalH
}

// SetOffset shifts rendering by whole terminal cells.
func (c *Canvas) SetOffset(col, row int) {
	c.offCol, c.offRow = col, row
}

// Clear unsets every pixel.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows*2 {
		return
	}
	c.pixels[y*c.cols+x] = true
}

// Set lights the pixel under a logical coordinate.
func (c *Canvas) Set(p Point) {
	c.setPixel(int(math.Round(p.X*c.scaleX)), int(math.Round(p.Y*c.scaleY)))
}

// IsSet reports whether the pixel under a logical coordinate is lit.
func (c *Canvas) IsSet(p Point) bool {
	x := int(math.Round(p.X * c.scaleX))
	y := int(math.Round(p.Y * c.scaleY))
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows*2 {
		return false
	}
	return c.pixels[y*c.cols+x]
}

// DrawLine draws a line between two logical points (Bresenham).
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	// Lines far outside the canvas would walk millions of pixels.
	limit := 4 * (c.cols + c.rows*2)
	if abs(x2-x1) > limit || abs(y2-y1) > limit {
		return
	}

	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a closed outline. Two points draw a single segment.
func (c *Canvas) DrawPolygon(points []Point) {
	switch n := len(points); {
	case n == 1:
		c.Set(points[0])
	case n == 2:
		c.DrawLine(points[0], points[1])
	case n > 2:
		for i := range points {
			c.DrawLine(points[i], points[(i+1)%n])
		}
	}
}

// maxChunkSize keeps individual writes below a typical MTU.
const maxChunkSize = 1400

// Render writes the lit cells to w as positioned half-block characters.
func (c *Canvas) Render(w io.Writer) error {
	c.out.Reset()
	for row := 0; row < c.rows; row++ {
		top := row * 2 * c.cols
		bottom := top + c.cols
		for col := 0; col < c.cols; col++ {
			var ch rune
			switch t, b := c.pixels[top+col], c.pixels[bottom+col]; {
			case t && b:
				ch = BlockFull
			case t:
				ch = BlockUpperHalf
			case b:
				ch = BlockLowerHalf
			default:
				continue
			}
			c.moveCursor(col+1, row+1)
			c.out.WriteRune(ch)
		}
	}
	return writeChunked(w, c.out.String())
}

func (c *Canvas) moveCursor(col, row int) {
	c.out.WriteString("\033[")
	c.out.Write(strconv.AppendInt(c.numBuf[:0], int64(row+c.offRow), 10))
	c.out.WriteByte(';')
	c.out.Write(strconv.AppendInt(c.numBuf[:0], int64(col+c.offCol), 10))
	c.out.WriteByte('H')
}

// Cols returns the terminal column count.
func (c *Canvas) Cols() int {
	return c.cols
}

// Rows returns the terminal row count.
func (c *Canvas) Rows() int {
	return c.rows
}

// LogicalToTerminal converts a logical coordinate to a 1-based terminal
// cell, ignoring the offset.
func (c *Canvas) LogicalToTerminal(p Point) (col, row int) {
	x := int(math.Round(p.X * c.scaleX))
	y := int(math.Round(p.Y * c.scaleY))
	return x + 1, y/2 + 1
}

func writeChunked(w io.Writer, data string) error {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}
