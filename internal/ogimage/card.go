package ogimage

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

// Card dimensions follow the Open Graph recommendation.
const (
	Width  = 1200
	Height = 630
)

const (
	marginX      = 80
	accentWidth  = 16
	titleScale   = 6
	bodyScale    = 3
	footerScale  = 2
	maxTitleRows = 3
	maxBodyRows  = 3
)

var face = basicfont.Face7x13

// Card is the content of one social preview image.
type Card struct {
	SiteName string
	Title    string
	Summary  string
	Route    string
	Method   string
}

// CardFor derives a card from a search record.
func CardFor(siteName string, r searchindex.Record) Card {
	title := r.Title
	method := r.HTTPMethod()
	if method != "" && r.Method == "" {
		// "POST /users" already shows the method on the badge.
		title = strings.TrimSpace(title[len(method):])
	}
	if title == "" {
		title = r.URL
	}
	return Card{
		SiteName: siteName,
		Title:    title,
		Summary:  r.Summary(160),
		Route:    r.URL,
		Method:   method,
	}
}

// Render draws the card. Text is folded to ASCII since the bitmap face only
// covers printable ASCII.
func Render(c Card, t Theme) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(t.Background), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, accentWidth, Height), image.NewUniform(t.Accent), image.Point{}, draw.Src)

	muted := blend(t.Foreground, t.Background, 0.65)
	lineH := func(scale int) int { return face.Metrics().Height.Ceil() * scale }
	charsPerLine := func(scale int) int { return (Width - 2*marginX) / (face.Advance * scale) }

	y := 70
	drawText(img, marginX, y, fold(c.SiteName), bodyScale, t.Accent)
	y += lineH(bodyScale) + 40

	if c.Method != "" {
		y = drawBadge(img, marginX, y, c.Method, t.Background) + 30
	}

	for _, line := range wrap(fold(c.Title), charsPerLine(titleScale), maxTitleRows) {
		drawText(img, marginX, y, line, titleScale, t.Foreground)
		y += lineH(titleScale) + 8
	}
	y += 20

	for _, line := range wrap(fold(c.Summary), charsPerLine(bodyScale), maxBodyRows) {
		if y+lineH(bodyScale) > Height-90 {
			break
		}
		drawText(img, marginX, y, line, bodyScale, muted)
		y += lineH(bodyScale) + 6
	}

	route := fold(c.Route)
	if maxChars := charsPerLine(footerScale); len(route) > maxChars {
		route = route[:maxChars-3] + "..."
	}
	drawText(img, marginX, Height-60, route, footerScale, muted)
	return img
}

// drawBadge draws a method pill at (x,y) and returns the y below it.
func drawBadge(dst *image.RGBA, x, y int, method string, bg color.RGBA) int {
	const scale, padX, padY, border = 3, 18, 10, 3
	col := methodColor(method)
	w := font.MeasureString(face, method).Ceil()*scale + 2*padX
	h := face.Metrics().Height.Ceil()*scale + 2*padY
	outer := image.Rect(x, y, x+w, y+h)
	draw.Draw(dst, outer, image.NewUniform(blend(col, bg, 0.5)), image.Point{}, draw.Src)
	draw.Draw(dst, outer.Inset(border), image.NewUniform(blend(col, bg, 0.2)), image.Point{}, draw.Src)
	drawText(dst, x+padX, y+padY, method, scale, col)
	return outer.Max.Y
}

// drawText renders s with the bitmap face at 1x, then scales the glyph mask
// with nearest-neighbour sampling so the pixels stay crisp.
func drawText(dst *image.RGBA, x, y int, s string, scale int, col color.Color) {
	if s == "" {
		return
	}
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	h := m.Height.Ceil()
	small := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  small,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(s)

	r := image.Rect(x, y, x+w*scale, y+h*scale)
	mask := image.NewAlpha(r)
	xdraw.NearestNeighbor.Scale(mask, r, small, small.Bounds(), xdraw.Src, nil)
	draw.DrawMask(dst, r, image.NewUniform(col), image.Point{}, mask, r.Min, draw.Over)
}

// wrap breaks s into at most maxRows lines of at most width characters,
// marking truncation with "...".
func wrap(s string, width, maxRows int) []string {
	words := strings.Fields(s)
	if len(words) == 0 || width <= 0 || maxRows <= 0 {
		return nil
	}
	var lines []string
	var cur string
	for i := 0; i < len(words); i++ {
		w := words[i]
		for len(w) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, w[:width])
			w = w[width:]
		}
		switch {
		case cur == "":
			cur = w
		case len(cur)+1+len(w) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	if len(lines) <= maxRows {
		return lines
	}
	lines = lines[:maxRows]
	last := lines[maxRows-1]
	if len(last)+3 > width {
		last = strings.TrimRight(last[:width-3], " ")
	}
	lines[maxRows-1] = last + "..."
	return lines
}

func fold(s string) string {
	return searchindex.ASCIIFold(s, '?')
}
