package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CardWidth and CardHeight match the Open Graph image dimensions so cards
// preview cleanly when a result link is shared.
const (
	CardWidth  = 1200
	CardHeight = 630
)

// Text is drawn at half resolution and scaled up so the bitmap font stays
// legible.
const (
	textScale  = 2
	margin     = 30
	lineHeight = 18
)

var (
	white     = color.RGBA{255, 255, 255, 255}
	lightGray = color.RGBA{200, 200, 200, 255}
	amber     = color.RGBA{255, 183, 77, 255}
)

// AdvisoryCard is the content of a rendered advisory image.
type AdvisoryCard struct {
	Title string
	Lines []string
}

// NewAdvisoryCard splits advisory text into card lines, dropping blank lines
// and replacing characters the bitmap font cannot draw.
func NewAdvisoryCard(title, advisory string) AdvisoryCard {
	card := AdvisoryCard{Title: title}
	for _, line := range strings.Split(advisory, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		card.Lines = append(card.Lines, strings.ReplaceAll(line, "•", "-"))
	}
	return card
}

// RenderAdvisoryCard draws card as a PNG.
func RenderAdvisoryCard(card AdvisoryCard) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	drawBackground(dst)

	text := image.NewRGBA(image.Rect(0, 0, CardWidth/textScale, CardHeight/textScale))
	y := margin
	drawText(text, card.Title, margin, y, white)
	y += lineHeight * 2
	for _, line := range card.Lines {
		if y > CardHeight/textScale-margin/2 {
			break
		}
		col := lightGray
		if strings.HasPrefix(line, "WARNING") {
			col = amber
		}
		drawText(text, line, margin, y, col)
		y += lineHeight
	}

	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), text, text.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode advisory card: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBackground fills img with a dark blue vertical gradient.
func drawBackground(img *image.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		progress := float64(y) / float64(bounds.Dy())
		c := color.RGBA{
			R: uint8(20 + progress*10),
			G: uint8(20 + progress*15),
			B: uint8(40 + progress*20),
			A: 255,
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
