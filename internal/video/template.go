package video

import (
	"fmt"
	"strings"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// ---------------------------------------------------------------------------
// Templates
// A template turns a listing plus its assets into the fixed 30-second
// timeline: intro, reveal, features, price, cta, outro. Overlay styling is
// where the templates differ.
// ---------------------------------------------------------------------------

// SpotDuration is the total length of every rendered video in seconds.
const SpotDuration = 30.0

// TextStyle controls one drawtext overlay's appearance.
type TextStyle struct {
	Font        string
	Size        int
	Color       string
	BorderColor string
	BorderWidth int
}

var (
	titleStyle = TextStyle{Font: "Impact", Size: 120, Color: "white", BorderColor: "black", BorderWidth: 6}
	priceStyle = TextStyle{Font: "Impact", Size: 150, Color: "red", BorderColor: "white", BorderWidth: 8}
	ctaStyle   = TextStyle{Font: "Impact", Size: 90, Color: "yellow", BorderColor: "black", BorderWidth: 4}
	bodyStyle  = TextStyle{Font: "Arial", Size: 60, Color: "white", BorderColor: "black", BorderWidth: 3}
	msrpStyle  = TextStyle{Font: "Impact", Size: 80, Color: "gray", BorderColor: "white", BorderWidth: 3}
)

// TextOverlay is one line of text on a segment. Y is a drawtext expression;
// X is always centered.
type TextOverlay struct {
	Text    string
	Style   TextStyle
	Y       string
	Strike  bool    // render the text struck through
	FadeIn  float64 // seconds, 0 disables
	FadeOut float64 // seconds before segment end, 0 disables
}

// drawtext renders the overlay as an ffmpeg drawtext filter. t is segment-local.
func (o TextOverlay) drawtext(segDuration float64) string {
	text := o.Text
	if o.Strike {
		text = strikethrough(text)
	}
	parts := []string{
		fmt.Sprintf("text='%s'", escapeDrawtext(text)),
		fmt.Sprintf("font='%s'", o.Style.Font),
		fmt.Sprintf("fontsize=%d", o.Style.Size),
		fmt.Sprintf("fontcolor=%s", o.Style.Color),
		fmt.Sprintf("borderw=%d", o.Style.BorderWidth),
		fmt.Sprintf("bordercolor=%s", o.Style.BorderColor),
		"x=(w-text_w)/2",
		fmt.Sprintf("y=%s", o.Y),
	}

	if o.FadeIn > 0 || o.FadeOut > 0 {
		parts = append(parts, fmt.Sprintf("alpha='%s'", fadeAlphaExpr(o.FadeIn, o.FadeOut, segDuration)))
	}

	return "drawtext=" + strings.Join(parts, ":")
}

// fadeAlphaExpr builds a piecewise alpha ramp: fade in over fadeIn seconds,
// hold, fade out over fadeOut seconds at the segment end.
func fadeAlphaExpr(fadeIn, fadeOut, segDuration float64) string {
	in := "1"
	if fadeIn > 0 {
		in = fmt.Sprintf("min(1\\,t/%.2f)", fadeIn)
	}
	if fadeOut <= 0 {
		return in
	}
	outStart := segDuration - fadeOut
	return fmt.Sprintf("if(lt(t\\,%.2f)\\,%s\\,max(0\\,(%.2f-t)/%.2f))", outStart, in, segDuration, fadeOut)
}

// strikethrough interleaves combining long-stroke marks so drawtext renders
// the text struck out without a second filter pass.
func strikethrough(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		b.WriteRune('̶')
	}
	return b.String()
}

// escapeDrawtext escapes characters drawtext treats specially.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\\\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	)
	return r.Replace(s)
}

// Segment is one clip of the timeline.
type Segment struct {
	Name      string
	Start     float64
	Duration  float64
	Effect    ClipEffect
	ImagePath string // empty renders the solid backdrop
	Overlays  []TextOverlay
}

// TimelineInput carries everything a template needs.
type TimelineInput struct {
	Listing    *models.MotorcycleListing
	Photos     []string // processed cutouts preferred, feed order
	QRCodePath string   // empty disables the cta QR frame
}

// Template maps a listing to its segment timeline.
type Template interface {
	Name() string
	Timeline(in *TimelineInput) []Segment
}

// ForName resolves a template, defaulting to dark.
func ForName(name string) Template {
	switch name {
	case "simple-dark":
		return &simpleDarkTemplate{}
	default:
		return &darkTemplate{}
	}
}

// photoAt cycles through the available photos so short photo sets still fill
// every segment.
func photoAt(photos []string, i int) string {
	if len(photos) == 0 {
		return ""
	}
	return photos[i%len(photos)]
}

// ---------------------------------------------------------------------------
// dark — the full treatment
// ---------------------------------------------------------------------------

type darkTemplate struct{}

func (t *darkTemplate) Name() string { return "dark" }

func (t *darkTemplate) Timeline(in *TimelineInput) []Segment {
	l := in.Listing
	price := "$" + models.FormatThousands(int(l.Price))

	segments := []Segment{
		{
			Name: "intro", Start: 0, Duration: 3,
			Effect: EffectZoomIn, ImagePath: photoAt(in.Photos, 0),
			Overlays: []TextOverlay{
				{Text: strings.ToUpper(l.Condition), Style: bodyStyle, Y: "h-380", FadeIn: 0.3},
				{Text: strings.ToUpper(l.DisplayName()), Style: titleStyle, Y: "h-280", FadeIn: 0.3, FadeOut: 0.5},
			},
		},
		{
			Name: "reveal", Start: 3, Duration: 5,
			Effect: EffectPanRight, ImagePath: photoAt(in.Photos, 1),
		},
		{
			Name: "features", Start: 8, Duration: 7,
			Effect: RandomEffect(), ImagePath: photoAt(in.Photos, 2),
			Overlays: featureOverlays(l),
		},
		{
			Name: "price", Start: 15, Duration: 7,
			Effect: EffectZoomOut, ImagePath: photoAt(in.Photos, 3),
			Overlays: priceOverlays(l, price),
		},
	}

	cta := Segment{
		Name: "cta", Start: 22, Duration: 5,
		Effect: EffectStatic, ImagePath: in.QRCodePath,
		Overlays: []TextOverlay{
			{Text: "SCAN TO RESERVE NOW", Style: ctaStyle, Y: "h-180", FadeIn: 0.5},
		},
	}
	if in.QRCodePath == "" {
		cta.ImagePath = photoAt(in.Photos, 4)
	}
	segments = append(segments, cta)

	segments = append(segments, Segment{
		Name: "outro", Start: 27, Duration: 3,
		Effect: EffectZoomIn, ImagePath: photoAt(in.Photos, 0),
		Overlays: []TextOverlay{
			{Text: "SAN DIEGO HARLEY-DAVIDSON", Style: titleStyle, Y: "(h-text_h)/2", FadeIn: 0.4},
		},
	})

	return segments
}

func featureOverlays(l *models.MotorcycleListing) []TextOverlay {
	overlays := []TextOverlay{
		{Text: l.ShortDescription(), Style: bodyStyle, Y: "h-260", FadeIn: 0.4},
	}

	var badge string
	switch {
	case l.IsCustom():
		badge = "ONE-OF-A-KIND CUSTOM"
	case l.IsLowMileage():
		badge = "LOW MILES"
	case l.Certified:
		badge = "CERTIFIED"
	}
	if badge != "" {
		overlays = append(overlays, TextOverlay{Text: badge, Style: ctaStyle, Y: "h-420", FadeIn: 0.8})
	}
	return overlays
}

func priceOverlays(l *models.MotorcycleListing, price string) []TextOverlay {
	overlays := []TextOverlay{
		{Text: "NOW ONLY", Style: ctaStyle, Y: "h*0.3", FadeIn: 0.5},
		{Text: price, Style: priceStyle, Y: "(h-text_h)/2", FadeIn: 0.3},
	}
	if s := l.Savings(); s > 0 {
		overlays = append(overlays,
			TextOverlay{
				Text:  "$" + models.FormatThousands(int(*l.MSRP)),
				Style: msrpStyle, Y: "(h-text_h)/2-220", Strike: true, FadeIn: 0.3,
			},
			TextOverlay{
				Text:  fmt.Sprintf("SAVE $%s OFF MSRP", models.FormatThousands(int(s))),
				Style: bodyStyle, Y: "(h-text_h)/2+200", FadeIn: 0.8,
			})
	}
	return overlays
}

// ---------------------------------------------------------------------------
// simple-dark — fewer overlays, same timeline
// ---------------------------------------------------------------------------

type simpleDarkTemplate struct{}

func (t *simpleDarkTemplate) Name() string { return "simple-dark" }

func (t *simpleDarkTemplate) Timeline(in *TimelineInput) []Segment {
	l := in.Listing
	price := "$" + models.FormatThousands(int(l.Price))

	segments := []Segment{
		{
			Name: "intro", Start: 0, Duration: 3,
			Effect: EffectZoomIn, ImagePath: photoAt(in.Photos, 0),
			Overlays: []TextOverlay{
				{Text: strings.ToUpper(l.DisplayName()), Style: titleStyle, Y: "h-280", FadeIn: 0.3},
			},
		},
		{Name: "reveal", Start: 3, Duration: 5, Effect: EffectPanLeft, ImagePath: photoAt(in.Photos, 1)},
		{Name: "features", Start: 8, Duration: 7, Effect: RandomEffect(), ImagePath: photoAt(in.Photos, 2)},
		{
			Name: "price", Start: 15, Duration: 7,
			Effect: EffectZoomOut, ImagePath: photoAt(in.Photos, 3),
			Overlays: []TextOverlay{
				{Text: "NOW ONLY", Style: ctaStyle, Y: "h*0.3", FadeIn: 0.5},
				{Text: price, Style: priceStyle, Y: "(h-text_h)/2", FadeIn: 0.3},
			},
		},
	}

	cta := Segment{
		Name: "cta", Start: 22, Duration: 5,
		Effect: EffectStatic, ImagePath: in.QRCodePath,
		Overlays: []TextOverlay{
			{Text: "SCAN TO RESERVE", Style: ctaStyle, Y: "h-180"},
		},
	}
	if in.QRCodePath == "" {
		cta.ImagePath = photoAt(in.Photos, 4)
	}

	return append(segments, cta, Segment{
		Name: "outro", Start: 27, Duration: 3,
		Effect: EffectStatic,
		Overlays: []TextOverlay{
			{Text: "SAN DIEGO HARLEY-DAVIDSON", Style: titleStyle, Y: "(h-text_h)/2", FadeIn: 0.4},
		},
	})
}
