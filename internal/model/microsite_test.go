package model

import "testing"

func TestNormalizeTheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Theme
	}{
		{"dark", ThemeDark},
		{"light", ThemeLight},
		{"gradient", ThemeGradient},
		{"", ThemeDark},
		{"neon", ThemeDark},
		{"DARK", ThemeDark}, // case-sensitive by design
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTheme(tt.input); got != tt.want {
				t.Errorf("NormalizeTheme(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMicrositeClick_IsPageView(t *testing.T) {
	t.Parallel()

	view := &MicrositeClick{MicrositeID: "ms-1"}
	if !view.IsPageView() {
		t.Error("click without link id should be a page view")
	}

	click := &MicrositeClick{MicrositeID: "ms-1", LinkID: "link-1"}
	if click.IsPageView() {
		t.Error("click with link id should not be a page view")
	}
}
