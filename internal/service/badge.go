package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	badgeWidth   = 240
	badgeHeight  = 36
	badgePadding = 4
)

var (
	badgeBackground = color.RGBA{R: 0xEE, G: 0xF1, B: 0xF5, A: 0xFF}
	badgeTrack      = color.RGBA{R: 0xD0, G: 0xD7, B: 0xDE, A: 0xFF}
	badgeFill       = color.RGBA{R: 0x44, G: 0x72, B: 0xC4, A: 0xFF}
	badgeDone       = color.RGBA{R: 0x2E, G: 0xA0, B: 0x43, A: 0xFF}
	badgeText       = color.RGBA{R: 0x1F, G: 0x23, B: 0x28, A: 0xFF}
)

// RenderProgressBadge 绘制周进度条 PNG，percent 会被限制在 [0,100]
func RenderProgressBadge(label string, percent float64) ([]byte, error) {
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	img := image.NewRGBA(image.Rect(0, 0, badgeWidth, badgeHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(badgeBackground), image.Point{}, draw.Src)

	track := image.Rect(badgePadding, badgeHeight-badgePadding-10, badgeWidth-badgePadding, badgeHeight-badgePadding)
	draw.Draw(img, track, image.NewUniform(badgeTrack), image.Point{}, draw.Src)

	fill := badgeFill
	if percent >= 100 {
		fill = badgeDone
	}
	filled := track
	filled.Max.X = track.Min.X + int(math.Round(float64(track.Dx())*percent/100))
	draw.Draw(img, filled, image.NewUniform(fill), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(badgeText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(badgePadding, 14),
	}
	drawer.DrawString(fmt.Sprintf("%s %.0f%%", label, percent))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode badge: %w", err)
	}
	return buf.Bytes(), nil
}
