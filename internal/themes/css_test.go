// SPDX-License-Identifier: MIT
package themes

import (
	"strings"
	"testing"

	"github.com/thatcatcamp/menukitty/internal/palette"
)

func TestCSSDocumentRendersRules(t *testing.T) {
	doc := NewCSSDocument()
	ApplyTheme(doc, ThemeView{AppBg: "#400810", BackgroundImageMediaID: strptr("m1"), BackgroundImageURL: "/r/x/media/m1"}, palette.Generate("#400810"))
	css := doc.String()

	if !strings.HasPrefix(css, ":root {\n  --app-bg: #400810;\n") {
		t.Errorf("root rule should start with --app-bg, got:\n%s", css)
	}
	if !strings.Contains(css, ".app-container {") {
		t.Error("container rule missing")
	}
	if !strings.Contains(css, "--auto-edge-accent: rgba(64,8,16,0.4);") {
		t.Error("edge accent property missing")
	}
	if strings.Contains(css, "edge-ccent") {
		t.Error("mangled property name rendered")
	}
}

func TestCSSDocumentOmitsEmptyContainer(t *testing.T) {
	doc := NewCSSDocument()
	ApplyTheme(doc, ThemeView{AppBg: "#FFFFFF"}, palette.Generate("#FFFFFF"))
	if strings.Contains(doc.String(), ".app-container") {
		t.Error("empty container rule should not be rendered")
	}
}

func TestCSSDocumentSetReplacesInPlace(t *testing.T) {
	doc := NewCSSDocument()
	doc.Root().SetProperty("--a", "1")
	doc.Root().SetProperty("--b", "2")
	doc.Root().SetProperty("--a", "3")
	doc.Root().RemoveProperty("--missing")

	want := ":root {\n  --a: 3;\n  --b: 2;\n}\n"
	if got := doc.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	doc.Root().RemoveProperty("--a")
	if _, ok := doc.Property("--a"); ok {
		t.Error("--a should be removed")
	}
}

func TestCSSDocumentSanitizesValues(t *testing.T) {
	doc := NewCSSDocument()
	ApplyTheme(doc, ThemeView{AppBg: "#400810"}, palette.Generate("#400810"))
	doc.Root().SetProperty("--brand-x", "red;}</style><script>alert(1)</script>")

	css := doc.String()
	if strings.Contains(css, "</style>") || strings.Contains(css, "<script>") {
		t.Errorf("unsafe value rendered:\n%s", css)
	}
}

func TestCSSDocumentStripsCommentMarkers(t *testing.T) {
	for _, bg := range []string{"#FFFFFF /*", "#FFFFFF */", "#FFFFFF //**", `#FFFFFF \3b`} {
		doc := NewCSSDocument()
		ApplyTheme(doc, ThemeView{AppBg: bg}, palette.Generate("#FFFFFF"))
		css := doc.String()

		for _, bad := range []string{"/*", "*/", `\`} {
			if strings.Contains(css, bad) {
				t.Errorf("%q: rendered %q:\n%s", bg, bad, css)
			}
		}
		if !strings.Contains(css, "--auto-text-primary: #000000;") {
			t.Errorf("%q: declarations after --app-bg lost:\n%s", bg, css)
		}
	}
}

func TestBaseStylesheetUsesAutoProperties(t *testing.T) {
	for _, name := range []string{"--app-bg", "--auto-primary", "--auto-edge-accent", "--auto-lighter-surface", "--brand-menu-gradient-start", "--ui-header-logo-size"} {
		if !strings.Contains(BaseStylesheet, "var("+name+")") {
			t.Errorf("base stylesheet does not use %s", name)
		}
	}
}

func TestPresets(t *testing.T) {
	list := ListPresets()
	if len(list) != len(presetOrder) {
		t.Fatalf("expected %d presets, got %d", len(presetOrder), len(list))
	}
	if p := GetPreset("burgundy"); p == nil || p.AppBg != DefaultAppBg {
		t.Errorf("burgundy preset should be the default background, got %+v", p)
	}
	if GetPreset("nope") != nil {
		t.Error("unknown preset should be nil")
	}
	for _, p := range list {
		if _, ok := palette.HexToRGB(p.AppBg); !ok {
			t.Errorf("preset %s has invalid color %s", p.Name, p.AppBg)
		}
	}
}
