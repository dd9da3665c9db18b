// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Font selects a face for text drawing.
type Font struct {
	Name   string
	Size   float64
	Bold   bool
	Italic bool
}

// String renders the font in CSS shorthand, e.g. "italic bold 12px sans".
func (f Font) String() string {
	var b strings.Builder
	if f.Italic {
		b.WriteString("italic ")
	}
	if f.Bold {
		b.WriteString("bold ")
	}
	fmt.Fprintf(&b, "%gpx %s", f.Size, f.Name)
	return b.String()
}

// FontData returns the TrueType bytes backing f.
//
// Font names map onto the Go font family: "mono" and "monospace" select Go
// Mono, every other name selects the proportional Go font. Bold and Italic
// pick the matching style.
func FontData(f Font) []byte {
	switch strings.ToLower(f.Name) {
	case "mono", "monospace", "go mono":
		if f.Bold {
			return gomonobold.TTF
		}
		return gomono.TTF
	}
	switch {
	case f.Bold && f.Italic:
		return gobolditalic.TTF
	case f.Bold:
		return gobold.TTF
	case f.Italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}
