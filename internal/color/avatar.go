// Package color picks display colors for users and life-balance categories.
package color

import (
	"fmt"

	"github.com/habitoapp/habito-server/internal/progress"
)

var categoryColors = map[progress.Category]string{
	progress.CategoryPhysicalHealth: "#10B981",
	progress.CategoryMentalHealth:   "#3B82F6",
	progress.CategorySpirituality:   "#8B5CF6",
	progress.CategoryKnowledge:      "#F59E0B",
	progress.CategoryWork:           "#EF4444",
	progress.CategoryRelationships:  "#EC4899",
}

// ForCategory returns the chart color of c. Unknown categories get a
// stable hashed color.
func ForCategory(c progress.Category) string {
	if hex, ok := categoryColors[c]; ok {
		return hex
	}
	return hashed(string(c))
}

// ForUser returns the avatar color for a user ID. The same ID always
// maps to the same color.
func ForUser(userID string) string {
	return hashed(userID)
}

func hashed(s string) string {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}

	// Muted saturation and mid lightness keep white initials readable.
	r, g, b := hslToRGB(float64(h%360), 0.4, 0.65)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h in [0,360) and s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	return uint8(channel(p, q, h+1.0/3) * 255),
		uint8(channel(p, q, h) * 255),
		uint8(channel(p, q, h-1.0/3) * 255)
}

func channel(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}
