package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

func ptr[T any](v T) *T { return &v }

func testListing() *models.MotorcycleListing {
	return &models.MotorcycleListing{
		DealerID:    "4889",
		StockNumber: "HD612345",
		Condition:   "Used",
		Year:        2023,
		Make:        "Harley-Davidson",
		Model:       "Street Glide",
		Price:       24999,
		MSRP:        ptr(27990.0),
		Odometer:    ptr(3200),
		Color:       ptr("Vivid Black"),
	}
}

type fakeScriptProvider struct {
	name   string
	script string
	err    error
	calls  int
}

func (f *fakeScriptProvider) Name() string { return f.name }

func (f *fakeScriptProvider) GenerateScript(ctx context.Context, l *models.MotorcycleListing, s models.ScriptStyle) (string, error) {
	f.calls++
	return f.script, f.err
}

// seventyWords produces a script inside the accepted word range.
func seventyWords() string {
	return strings.TrimSpace(strings.Repeat("ride hard today ", 24)) + " " + scriptCTA
}

func TestBuildScriptPrompt(t *testing.T) {
	prompt := buildScriptPrompt(testListing(), models.StyleAggressive)

	for _, want := range []string{
		"2023 Harley-Davidson Street Glide",
		"$24,999",
		"Savings off MSRP: $2,991",
		"low mileage",
		"Vivid Black",
		scriptCTA,
		"70 to 80 words",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestScriptChainFirstProviderWins(t *testing.T) {
	first := &fakeScriptProvider{name: "first", script: seventyWords()}
	second := &fakeScriptProvider{name: "second", script: seventyWords()}

	chain := NewScriptChain(first, second)
	script, err := chain.GenerateScript(context.Background(), testListing(), models.StyleAggressive)
	if err != nil {
		t.Fatal(err)
	}
	if script == "" || second.calls != 0 {
		t.Errorf("expected first provider to serve (second called %d times)", second.calls)
	}
}

func TestScriptChainFallsThrough(t *testing.T) {
	failing := &fakeScriptProvider{name: "failing", err: fmt.Errorf("boom")}
	tooShort := &fakeScriptProvider{name: "short", script: "Buy this bike."}
	good := &fakeScriptProvider{name: "good", script: seventyWords()}

	chain := NewScriptChain(failing, tooShort, good)
	script, err := chain.GenerateScript(context.Background(), testListing(), models.StyleSmooth)
	if err != nil {
		t.Fatal(err)
	}
	if good.calls != 1 {
		t.Error("expected third provider to be reached")
	}
	if !strings.Contains(script, "ride hard") {
		t.Errorf("unexpected script: %q", script)
	}
}

func TestScriptChainFallbackTemplate(t *testing.T) {
	failing := &fakeScriptProvider{name: "failing", err: fmt.Errorf("boom")}

	chain := NewScriptChain(failing)
	script, err := chain.GenerateScript(context.Background(), testListing(), models.StyleAggressive)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(script, scriptCTA) {
		t.Errorf("fallback must end with the CTA: %q", script)
	}
	if !strings.Contains(script, "24,999") {
		t.Errorf("fallback must mention the price: %q", script)
	}
}

func TestFallbackScriptStyles(t *testing.T) {
	l := testListing()

	agg := FallbackScript(l, models.StyleAggressive)
	smooth := FallbackScript(l, models.StyleSmooth)
	pro := FallbackScript(l, models.StyleProfessional)

	if agg == smooth || smooth == pro {
		t.Error("styles should produce different openers")
	}
	for _, s := range []string{agg, smooth, pro} {
		if !strings.HasSuffix(s, scriptCTA) {
			t.Errorf("missing CTA: %q", s)
		}
		if !strings.Contains(s, "2,991") {
			t.Errorf("missing savings: %q", s)
		}
	}
}

func TestCleanScript(t *testing.T) {
	in := "```\n\"Ride the legend.\"\n```"
	if got := cleanScript(in); got != "Ride the legend." {
		t.Errorf("got %q", got)
	}
}
