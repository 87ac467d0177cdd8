package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// ---------------------------------------------------------------------------
// ScriptService — common interface for ad-copy providers
// OpenAI, Anthropic and Gemini all produce the same thing: a 70-80 word
// voiceover script for a 30-second spot. The chain tries providers in order
// and falls back to a canned template so a render never blocks on an LLM.
// ---------------------------------------------------------------------------

const scriptCTA = "Scan to reserve now. San Diego Harley-Davidson."

// ScriptService generates voiceover copy for a listing.
type ScriptService interface {
	GenerateScript(ctx context.Context, listing *models.MotorcycleListing, style models.ScriptStyle) (string, error)
	Name() string
}

// styleGuides shape the register of the generated copy.
var styleGuides = map[models.ScriptStyle]string{
	models.StyleAggressive:   "High energy, commanding, urgent. Short punchy sentences. Monster-truck-rally announcer energy, dialed back just enough to stay credible.",
	models.StyleSmooth:       "Laid back, confident, effortless. Longer flowing sentences. The voice of someone who has nothing to prove.",
	models.StyleProfessional: "Clear, trustworthy, informative. A dealership ad on local radio. Focus on value and facts.",
}

// buildScriptPrompt produces the user prompt shared by every provider.
func buildScriptPrompt(listing *models.MotorcycleListing, style models.ScriptStyle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a voiceover script for a 30-second promotional video for this motorcycle:\n\n")
	fmt.Fprintf(&b, "Bike: %s\n", listing.DisplayName())
	fmt.Fprintf(&b, "Condition: %s\n", listing.Condition)
	fmt.Fprintf(&b, "Price: $%s\n", models.FormatThousands(int(listing.Price)))
	if s := listing.Savings(); s > 0 {
		fmt.Fprintf(&b, "Savings off MSRP: $%s\n", models.FormatThousands(int(s)))
	}
	if listing.Odometer != nil {
		fmt.Fprintf(&b, "Mileage: %s miles\n", models.FormatThousands(*listing.Odometer))
		if listing.IsLowMileage() {
			fmt.Fprintf(&b, "Selling point: low mileage\n")
		}
	}
	if listing.Color != nil {
		fmt.Fprintf(&b, "Color: %s\n", *listing.Color)
	}
	if listing.EngineDisplacement != nil {
		fmt.Fprintf(&b, "Engine: %s\n", *listing.EngineDisplacement)
	}
	if listing.IsCustom() {
		fmt.Fprintf(&b, "Selling point: custom build\n")
	}
	if listing.Description != nil {
		fmt.Fprintf(&b, "Dealer notes: %s\n", truncateString(*listing.Description, 300))
	}

	fmt.Fprintf(&b, "\nStyle: %s\n", styleGuides[style])
	fmt.Fprintf(&b, `
Requirements:
- Exactly 70 to 80 words. The script is read aloud in about 27 seconds.
- Written to be LISTENED to: short sentences, contractions, natural speech rhythm.
- Mention the year, make, model and price.
- No stage directions, no quotes, no emoji. Output the script text only.
- End with exactly this call to action: "%s"`, scriptCTA)

	return b.String()
}

const scriptSystemPrompt = "You are a copywriter for motorcycle dealership video ads. You write tight, spoken-word voiceover scripts that sell."

// FallbackScript is the canned template used when every provider fails.
func FallbackScript(listing *models.MotorcycleListing, style models.ScriptStyle) string {
	price := models.FormatThousands(int(listing.Price))

	var opener string
	switch style {
	case models.StyleSmooth:
		opener = fmt.Sprintf("Picture yourself on a %s.", listing.DisplayName())
	case models.StyleProfessional:
		opener = fmt.Sprintf("Now available: a %s %s.", listing.Condition, listing.DisplayName())
	default:
		opener = fmt.Sprintf("Check out this %s.", listing.DisplayName())
	}

	parts := []string{opener}
	if listing.IsLowMileage() {
		parts = append(parts, fmt.Sprintf("Only %s miles on the clock.", models.FormatThousands(*listing.Odometer)))
	}
	if listing.Color != nil {
		parts = append(parts, fmt.Sprintf("Finished in %s.", *listing.Color))
	}
	if s := listing.Savings(); s > 0 {
		parts = append(parts, fmt.Sprintf("Priced at %s dollars. That's %s dollars off MSRP.", price, models.FormatThousands(int(s))))
	} else {
		parts = append(parts, fmt.Sprintf("Priced at %s dollars.", price))
	}
	parts = append(parts,
		"This one won't sit on the floor for long.",
		scriptCTA)

	return strings.Join(parts, " ")
}

// ScriptChain tries each provider in order, then the canned fallback.
type ScriptChain struct {
	providers []ScriptService
}

func NewScriptChain(providers ...ScriptService) *ScriptChain {
	return &ScriptChain{providers: providers}
}

// GenerateScript returns the first usable script. A provider result is usable
// when it is non-empty and roughly within the 30-second word budget.
func (c *ScriptChain) GenerateScript(ctx context.Context, listing *models.MotorcycleListing, style models.ScriptStyle) (string, error) {
	for _, p := range c.providers {
		script, err := p.GenerateScript(ctx, listing, style)
		if err != nil {
			log.Printf("[Script] %s failed for %s: %v", p.Name(), listing.StockNumber, err)
			continue
		}
		script = cleanScript(script)
		if n := wordCount(script); n < 40 || n > 110 {
			log.Printf("[Script] %s returned %d words for %s, rejecting", p.Name(), n, listing.StockNumber)
			continue
		}
		log.Printf("[Script] %s generated script for %s (%d words)", p.Name(), listing.StockNumber, wordCount(script))
		return script, nil
	}

	log.Printf("[Script] All providers failed for %s, using fallback template", listing.StockNumber)
	return FallbackScript(listing, style), nil
}

// cleanScript strips the quoting and markdown fences models sometimes add.
func cleanScript(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.Trim(s, "\"")
	return strings.TrimSpace(s)
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// truncateString truncates a string to maxLen and appends "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
