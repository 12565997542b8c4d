package ogimage

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#6366f1")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x63, G: 0x66, B: 0xf1, A: 0xff}, c)

	for _, bad := range []string{"", "#fff", "#zzzzzz", "6366f1ff"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestMethodColor(t *testing.T) {
	assert.Equal(t, badgeGreen, methodColor("GET"))
	assert.Equal(t, badgeRed, methodColor("DELETE"))
	for _, m := range []string{"POST", "PUT", "PATCH", "HEAD", "OPTIONS"} {
		assert.Equal(t, badgeYellow, methodColor(m), m)
	}
}

func TestCardFor(t *testing.T) {
	c := CardFor("Acme", searchindex.Record{Title: "DELETE /users/{id}", URL: "/docs/api/delete-user"})
	assert.Equal(t, "DELETE", c.Method)
	assert.Equal(t, "/users/{id}", c.Title)
	assert.Equal(t, "/docs/api/delete-user", c.Route)

	plain := CardFor("Acme", searchindex.Record{Title: "Getting started", URL: "/docs", Description: "First steps."})
	assert.Empty(t, plain.Method)
	assert.Equal(t, "Getting started", plain.Title)
	assert.Equal(t, "First steps.", plain.Summary)

	explicit := CardFor("Acme", searchindex.Record{Title: "Create user", Method: "POST", URL: "/u"})
	assert.Equal(t, "POST", explicit.Method)
	assert.Equal(t, "Create user", explicit.Title)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 7, 3))
	assert.Equal(t, []string{"abcde", "fgh"}, wrap("abcdefgh", 5, 3))
	assert.Equal(t, []string{"aaa bbb", "ccc..."}, wrap("aaa bbb ccc ddd eee", 7, 2))
	assert.Nil(t, wrap("   ", 10, 2))
}

func TestRenderDrawsBackgroundAndAccent(t *testing.T) {
	theme := Theme{
		Background: color.RGBA{A: 0xff},
		Foreground: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Accent:     color.RGBA{R: 0xff, A: 0xff},
	}
	img := Render(Card{SiteName: "Acme", Title: "Hello", Method: "GET", Route: "/hello"}, theme)

	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())
	assert.Equal(t, theme.Accent, img.RGBAAt(2, Height/2))
	assert.Equal(t, theme.Background, img.RGBAAt(Width-2, Height-2))
}
