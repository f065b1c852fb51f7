package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fauna-gallery/pkg/models"
)

func snapshot(loading bool) models.Snapshot {
	snap := models.Snapshot{
		Images:  map[models.Category]string{},
		Loading: map[models.Category]bool{},
	}
	for _, c := range models.Categories {
		snap.Images[c] = "https://img.test/" + c.String() + ".jpg"
		snap.Loading[c] = loading
	}
	return snap
}

func TestPage_CardsInFixedOrder(t *testing.T) {
	page := Page("gal-1", snapshot(true))

	require.Len(t, page.Cards, 3)
	assert.Equal(t, "gal-1", page.SessionID)
	assert.Equal(t, PageTitle, page.Header.Title)
	assert.Equal(t, FooterText, page.Footer.Text)

	titles := []string{}
	for _, card := range page.Cards {
		titles = append(titles, card.Title)
		assert.Equal(t, ActionLabel, card.ActionLabel)
	}
	assert.Equal(t, []string{"Cat", "Dog", "Fish"}, titles)
}

func TestCard_LoadingHidesImage(t *testing.T) {
	card := Card(models.Dog, snapshot(true))

	assert.Equal(t, models.ImageLoading, card.State)
	assert.True(t, card.Loading())
	assert.Empty(t, card.ImageURL)
	assert.Empty(t, card.ImageFilter)
}

func TestCard_LoadedAppliesFilters(t *testing.T) {
	card := Card(models.Fish, snapshot(false))

	assert.Equal(t, models.ImageLoaded, card.State)
	assert.Equal(t, "https://img.test/fish.jpg", card.ImageURL)
	assert.Equal(t, ImageFilter, card.ImageFilter)
	assert.Equal(t, "luminosity", card.BlendMode)
}

func TestCard_LoadedWithEmptyURL(t *testing.T) {
	snap := snapshot(false)
	snap.Images[models.Cat] = ""

	card := Card(models.Cat, snap)

	assert.Equal(t, models.ImageLoaded, card.State)
	assert.Empty(t, card.ImageURL)
}

func TestCard_HoverGlowOnlyOnTarget(t *testing.T) {
	snap := snapshot(false)
	hover := models.Dog
	snap.Hover = &hover

	page := Page("gal-1", snap)

	for _, card := range page.Cards {
		if card.Category == models.Dog {
			assert.True(t, card.Hovered)
			assert.Equal(t, models.Glow{Opacity: 0.3, Scale: 1}, card.Glow)
		} else {
			assert.False(t, card.Hovered)
			assert.Equal(t, models.Glow{Opacity: 0, Scale: 0.8}, card.Glow)
		}
	}
}

func TestCardEntry_Staggered(t *testing.T) {
	tests := []struct {
		index int
		delay float64
	}{
		{0, 0},
		{1, 0.15},
		{2, 0.3},
		{-1, 0},
	}

	for _, tt := range tests {
		entry := CardEntry(tt.index)
		assert.InDelta(t, tt.delay, entry.Delay, 1e-9)
		assert.Equal(t, 0.8, entry.Duration)
		assert.Equal(t, CardEasing, entry.Easing)
	}
}

func TestParallaxOffset(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		want     float64
	}{
		{"top", 0, 0},
		{"middle", 0.5, 25},
		{"bottom", 1, 50},
		{"overscroll", 1.4, 50},
		{"negative", -0.2, 0},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParallaxOffset(tt.progress), 1e-9)
		})
	}
}

func TestPage_Motion(t *testing.T) {
	page := Page("gal-x", models.Snapshot{})

	assert.Equal(t, 0.95, page.Motion.PressScale)
	assert.Equal(t, -10.0, page.Motion.HoverLift)
	assert.Equal(t, 50.0, page.Motion.MaxParallax)
}
