// Package render derives everything the page shows from a gallery snapshot.
// Nothing here touches state; each function maps its inputs to visual parameters.
package render

import (
	"math"

	"fauna-gallery/pkg/models"
)

const (
	PageTitle   = "Fauna.Gallery"
	Tagline     = "An immersive exploration of nature's most charming creatures"
	FooterText  = "Made with ♥ for animal lovers everywhere"
	ActionLabel = "Generate New"

	// ImageFilter and BlendMode apply to every loaded image regardless of content
	ImageFilter = "brightness(0.95) contrast(1.1) saturate(1.1)"
	BlendMode   = "luminosity"

	// CardEasing is the entry curve for cards
	CardEasing = "cubic-bezier(0.16, 0.77, 0.47, 0.97)"

	cardStagger  = 0.15
	cardDuration = 0.8

	glowOpacity     = 0.3
	glowScaleIdle   = 0.8
	glowScaleActive = 1.0

	// PressScale is how far the action button shrinks while pressed
	PressScale = 0.95
	// HoverLift is the card's vertical offset in pixels while hovered
	HoverLift = -10

	maxParallax = 50.0
)

// Page renders a full session
func Page(sessionID string, snap models.Snapshot) models.Page {
	cards := make([]models.Card, 0, len(models.Categories))
	for _, c := range models.Categories {
		cards = append(cards, Card(c, snap))
	}

	return models.Page{
		SessionID: sessionID,
		Header: models.Header{
			Title:     PageTitle,
			Tagline:   Tagline,
			Entry:     models.Animation{Duration: 0.8, Easing: "ease-out"},
			TaglineIn: models.Animation{Delay: 0.3, Duration: 0.8, Easing: "ease"},
		},
		Cards: cards,
		Footer: models.Footer{
			Text:  FooterText,
			Entry: models.Animation{Delay: 0.5, Duration: 0.8, Easing: "ease"},
		},
		Motion: models.Motion{
			PressScale:  PressScale,
			HoverLift:   HoverLift,
			MaxParallax: ParallaxOffset(1),
		},
	}
}

// Card renders the card for one category
func Card(c models.Category, snap models.Snapshot) models.Card {
	hovered := snap.Hovered(c)
	card := models.Card{
		Category:    c,
		Title:       c.Title(),
		State:       ImageStateFor(snap.Loading[c]),
		ActionLabel: ActionLabel,
		Hovered:     hovered,
		Entry:       CardEntry(c.Index()),
		Glow:        GlowFor(hovered),
	}
	if card.State == models.ImageLoaded {
		card.ImageURL = snap.Images[c]
		card.ImageFilter = ImageFilter
		card.BlendMode = BlendMode
	}
	return card
}

// ImageStateFor maps a loading flag onto the image region's state
func ImageStateFor(loading bool) models.ImageState {
	if loading {
		return models.ImageLoading
	}
	return models.ImageLoaded
}

// CardEntry staggers card entry by display position
func CardEntry(index int) models.Animation {
	if index < 0 {
		index = 0
	}
	return models.Animation{
		Delay:    float64(index) * cardStagger,
		Duration: cardDuration,
		Easing:   CardEasing,
	}
}

// GlowFor returns the halo for a card that is or is not under the pointer
func GlowFor(hovered bool) models.Glow {
	if hovered {
		return models.Glow{Opacity: glowOpacity, Scale: glowScaleActive}
	}
	return models.Glow{Opacity: 0, Scale: glowScaleIdle}
}

// ParallaxOffset translates the background as the page scrolls: 0% when the page's
// top edge is at the viewport top, 50% when its bottom edge is. progress is the
// scroll offset over the page height, clamped to [0, 1].
func ParallaxOffset(progress float64) float64 {
	switch {
	case progress < 0 || math.IsNaN(progress):
		progress = 0
	case progress > 1:
		progress = 1
	}
	return progress * maxParallax
}
