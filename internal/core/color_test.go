package core

import "testing"

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#808080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.R != 128 || c.G != 128 || c.B != 128 {
		t.Fatalf("got %+v, want 128/128/128", c)
	}

	if _, err := ParseHexColor("#80808"); err == nil {
		t.Error("expected error for short hex")
	}
	if _, err := ParseHexColor("#gggggg"); err == nil {
		t.Error("expected error for non-hex digits")
	}
	// leading '#' optional
	if _, err := ParseHexColor("4a90d9"); err != nil {
		t.Errorf("bare hex rejected: %v", err)
	}
}

func TestAdjustBrightness(t *testing.T) {
	c := RGB{R: 128, G: 128, B: 128}

	lighter := c.AdjustBrightness(20)
	if lighter.R != 154 || lighter.G != 154 || lighter.B != 154 {
		t.Errorf("brighten 20%%: got %+v, want 154/154/154", lighter)
	}

	darker := c.AdjustBrightness(-20)
	if darker.R != 102 || darker.G != 102 || darker.B != 102 {
		t.Errorf("darken 20%%: got %+v, want 102/102/102", darker)
	}
}

func TestAdjustBrightnessClamps(t *testing.T) {
	white := RGB{R: 250, G: 250, B: 250}.AdjustBrightness(50)
	if white.R != 255 || white.G != 255 || white.B != 255 {
		t.Errorf("expected clamp to 255, got %+v", white)
	}

	black := RGB{R: 3, G: 3, B: 3}.AdjustBrightness(-150)
	if black.R != 0 || black.G != 0 || black.B != 0 {
		t.Errorf("expected clamp to 0, got %+v", black)
	}
}

func TestGradientStopsRoundTrip(t *testing.T) {
	lighter, darker, err := GradientStops("#808080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lc, err := ParseHexColor(lighter)
	if err != nil {
		t.Fatalf("lighter stop does not re-parse: %v", err)
	}
	if lc.R != 154 {
		t.Errorf("lighter channel = %d, want 154", lc.R)
	}

	dc, err := ParseHexColor(darker)
	if err != nil {
		t.Fatalf("darker stop does not re-parse: %v", err)
	}
	if dc.R != 102 {
		t.Errorf("darker channel = %d, want 102", dc.R)
	}
}
