// Package draw renders line art into a terminal using half-block characters
// and batches the resulting escape sequences for slow links such as SSH.
package draw

import (
	"fmt"
	"io"
)

// Point is a coordinate in a canvas' logical space.
type Point struct {
	X, Y float64
}

// Block characters used by the canvas.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// ANSI colour sequences.
const (
	ColorReset      = "\033[0m"
	ColorDim        = "\033[2m"
	ColorRed        = "\033[31m"
	ColorYellow     = "\033[33m"
	ColorBrightCyan = "\033[96m"
)

// ClearScreen clears the terminal and moves cursor to top-left.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25h")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
