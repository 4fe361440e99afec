package settings

import "testing"

func TestValidateNilInput(t *testing.T) {
	ok, errs := Validate(nil)
	if ok {
		t.Fatal("expected nil settings to be invalid")
	}
	if len(errs) != 1 {
		t.Fatalf("expected a single error, got %d: %v", len(errs), errs)
	}
}

func TestValidateAcceptsPartialAndUnknownFields(t *testing.T) {
	ok, errs := Validate(map[string]any{
		"paperSize": "Letter",
		"duplex":    true, // not a declared field, ignored
	})
	if !ok {
		t.Fatalf("expected valid, got errors: %v", errs)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []map[string]any{
		{"paperType": "Foo"},
		{"quality": 300},
		{"quality": "fast"},
		{"colorMode": "Sepia"},
		{"paperSize": "A5"},
		{"paperType": 12},
	}
	for _, raw := range cases {
		if ok, _ := Validate(raw); ok {
			t.Errorf("expected %v to be invalid", raw)
		}
	}
}

func TestValidateQualityEncodings(t *testing.T) {
	for _, v := range []any{600, float64(1200), "600"} {
		ok, errs := Validate(map[string]any{"quality": v})
		if !ok {
			t.Errorf("quality %v (%T): expected valid, got %v", v, v, errs)
		}
	}
}

func TestApplyDefaultsFillsEverything(t *testing.T) {
	s := ApplyDefaults(nil)
	want := Settings{
		PaperType: PaperTypePlain,
		Quality:   600,
		ColorMode: ColorModeGrayscale,
		PaperSize: PaperSizeA4,
	}
	if s != want {
		t.Fatalf("got %+v, want %+v", s, want)
	}
}

func TestApplyDefaultsPreservesPresentFields(t *testing.T) {
	s := ApplyDefaults(map[string]any{
		"paperType": "Glossy",
		"quality":   "1200",
	})
	if s.PaperType != PaperTypeGlossy {
		t.Errorf("paperType not preserved: %s", s.PaperType)
	}
	if s.Quality != 1200 {
		t.Errorf("quality not coerced to int: %d", s.Quality)
	}
	if s.ColorMode != ColorModeGrayscale || s.PaperSize != PaperSizeA4 {
		t.Errorf("missing fields not defaulted: %+v", s)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{"quality": "600"},
		{"paperType": "Glossy", "quality": float64(1200), "colorMode": "Color", "paperSize": "Legal"},
		{"paperSize": "letter"},
	}
	for _, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(once.Map())
		if once != twice {
			t.Errorf("normalize not idempotent for %v: %+v vs %+v", raw, once, twice)
		}
	}
}

func TestNormalizeCanonicalSpelling(t *testing.T) {
	s := Normalize(map[string]any{"paperSize": "letter", "colorMode": "color"})
	if s.PaperSize != PaperSizeLetter {
		t.Errorf("paperSize not canonicalized: %s", s.PaperSize)
	}
	if s.ColorMode != ColorModeColor {
		t.Errorf("colorMode not canonicalized: %s", s.ColorMode)
	}
}
