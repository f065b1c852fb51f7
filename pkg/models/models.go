package models

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is one of the fixed animal kinds shown by the gallery
type Category string

const (
	Cat  Category = "cat"
	Dog  Category = "dog"
	Fish Category = "fish"
)

// Categories lists every category in display order, left to right
var Categories = []Category{Cat, Dog, Fish}

// ErrUnknownCategory is returned when a string does not name a category
var ErrUnknownCategory = errors.New("unknown category")

// ParseCategory converts a name such as "Dog" into a Category
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case Cat, Dog, Fish:
		return true
	}
	return false
}

// Index returns the display position of c, or -1 when c is unknown
func (c Category) Index() int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return -1
}

// Title returns the display title for the card, e.g. "Cat"
func (c Category) Title() string {
	return cases.Title(language.English).String(string(c))
}

func (c Category) String() string {
	return string(c)
}

// Snapshot is a point-in-time copy of one page session's gallery state
type Snapshot struct {
	Images  map[Category]string `json:"images"`
	Loading map[Category]bool   `json:"loading"`
	Hover   *Category           `json:"hover,omitempty"`
}

// Hovered reports whether c is the current hover target
func (s Snapshot) Hovered(c Category) bool {
	return s.Hover != nil && *s.Hover == c
}

// ChangeKind names the slice of state touched by a mutation
type ChangeKind string

const (
	ChangeImage   ChangeKind = "image"
	ChangeLoading ChangeKind = "loading"
	ChangeHover   ChangeKind = "hover"
)

// Change describes a single state mutation. Category is empty for a cleared hover.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Category Category   `json:"category,omitempty"`
}

// Page is the full render of a gallery session
type Page struct {
	SessionID string `json:"sessionId"`
	Header    Header `json:"header"`
	Cards     []Card `json:"cards"`
	Footer    Footer `json:"footer"`
	Motion    Motion `json:"motion"`
}

// Motion holds the pointer and scroll effects the client applies
type Motion struct {
	PressScale  float64 `json:"pressScale"`
	HoverLift   float64 `json:"hoverLift"`
	MaxParallax float64 `json:"maxParallax"`
}

// Header represents the page header with its entry animation
type Header struct {
	Title     string    `json:"title"`
	Tagline   string    `json:"tagline"`
	Entry     Animation `json:"entry"`
	TaglineIn Animation `json:"taglineIn"`
}

// Footer represents the closing line of the page
type Footer struct {
	Text  string    `json:"text"`
	Entry Animation `json:"entry"`
}

// ImageState is the state of a card's image region
type ImageState string

const (
	ImageLoading ImageState = "loading"
	ImageLoaded  ImageState = "loaded"
)

// Card represents one category card
type Card struct {
	Category    Category   `json:"category"`
	Title       string     `json:"title"`
	State       ImageState `json:"state"`
	ImageURL    string     `json:"imageUrl"`
	ImageFilter string     `json:"imageFilter"`
	BlendMode   string     `json:"blendMode"`
	ActionLabel string     `json:"actionLabel"`
	Hovered     bool       `json:"hovered"`
	Entry       Animation  `json:"entry"`
	Glow        Glow       `json:"glow"`
}

// Loading reports whether the card shows its placeholder
func (c Card) Loading() bool {
	return c.State == ImageLoading
}

// Animation holds transition timing in seconds
type Animation struct {
	Delay    float64 `json:"delay"`
	Duration float64 `json:"duration"`
	Easing   string  `json:"easing"`
}

// Glow is the decorative halo behind a card
type Glow struct {
	Opacity float64 `json:"opacity"`
	Scale   float64 `json:"scale"`
}
