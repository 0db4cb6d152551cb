package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ashwch/handset/internal/appdirs"
)

func TestNormalizeLocale(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "en_US.UTF-8", want: "en-US"},
		{in: "es-ES", want: "es-ES"},
		{in: "fr", want: "fr"},
		{in: "pt_BR@latin", want: "pt-BR"},
		{in: "es-", want: "es"},
		{in: "%%bad", want: ""},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := NormalizeLocale(tc.in); got != tc.want {
			t.Fatalf("NormalizeLocale(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestLoadCatalogSpanish(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	catalog := LoadCatalog("es-MX")
	if catalog.Locale != "es-MX" {
		t.Fatalf("expected requested locale to be kept, got %q", catalog.Locale)
	}
	if catalog.Panel.Volume != "Volumen" {
		t.Fatalf("expected Spanish panel labels, got %q", catalog.Panel.Volume)
	}
	if len(catalog.Console.Help) != 5 {
		t.Fatalf("expected help lines, got %d", len(catalog.Console.Help))
	}
}

func TestLoadCatalogFallsBackToEnglish(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	catalog := LoadCatalog("de-DE")
	if catalog.Panel.Device != "Device" {
		t.Fatalf("expected English fallback, got %q", catalog.Panel.Device)
	}
}

func TestLoadCatalogMergesCommunityOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HANDSET_LOCALE", "fr-FR")

	path, err := appdirs.LocaleFilePath("fr")
	if err != nil {
		t.Fatalf("locale path failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir locales failed: %v", err)
	}

	override := `{
	  "console": {"ready": "Prêt pour la prochaine commande."},
	  "panel": {"device": "Appareil", "volume": "  "}
	}`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatalf("write locale override failed: %v", err)
	}

	catalog := LoadCatalog("")
	if catalog.Locale != "fr-FR" {
		t.Fatalf("expected detected locale fr-FR, got %q", catalog.Locale)
	}
	if catalog.Console.Ready != "Prêt pour la prochaine commande." {
		t.Fatalf("expected French ready text, got %q", catalog.Console.Ready)
	}
	if catalog.Panel.Device != "Appareil" {
		t.Fatalf("expected French device label, got %q", catalog.Panel.Device)
	}
	// Blank overrides keep the English fallback.
	if catalog.Panel.Volume != "Volume" {
		t.Fatalf("expected English fallback for blank override, got %q", catalog.Panel.Volume)
	}
}
