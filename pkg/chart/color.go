package chart

import (
	"strconv"
	"unicode/utf16"
)

// Fixed saturation and lightness of hash-derived colors.
const (
	hashSaturation = 65
	hashLightness  = 55
	hueRange       = 360
	hashBase       = 31
)

// Hue maps name to a hue in [0, 360) as
// (Σ charCode(name[i]) * 31^i) mod 360, where charCode is the i-th UTF-16
// code unit. The sum is evaluated exactly in modular arithmetic, so the
// result never depends on integer width or overflow behavior.
func Hue(name string) int {
	var hash, pow uint32 = 0, 1

	for _, unit := range utf16.Encode([]rune(name)) {
		hash = (hash + uint32(unit)%hueRange*pow) % hueRange
		pow = pow * hashBase % hueRange
	}

	return int(hash)
}

// ColorForName returns the deterministic HSL color of name.
func ColorForName(name string) string {
	return "hsl(" + strconv.Itoa(Hue(name)) + ", " +
		strconv.Itoa(hashSaturation) + "%, " + strconv.Itoa(hashLightness) + "%)"
}

// resolveColor prefers a declared color over the name hash.
func resolveColor(declared, name string) string {
	if declared != "" {
		return declared
	}

	return ColorForName(name)
}
