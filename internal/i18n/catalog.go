package i18n

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ashwch/handset/internal/appdirs"
)

// Catalog holds the console chrome. Engine responses are not translated.
type Catalog struct {
	Locale  string         `json:"locale"`
	Console ConsoleCatalog `json:"console"`
	Panel   PanelCatalog   `json:"panel"`
}

type ConsoleCatalog struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Placeholder string   `json:"placeholder"`
	Ready       string   `json:"ready"`
	Prompt      string   `json:"prompt"`
	QuitHint    string   `json:"quit_hint"`
	ResetDone   string   `json:"reset_done"`
	Goodbye     string   `json:"goodbye"`
	Help        []string `json:"help"`
}

type PanelCatalog struct {
	Device      string `json:"device"`
	Activity    string `json:"activity"`
	LastCommand string `json:"last_command"`
	Response    string `json:"response"`
	NoActivity  string `json:"no_activity"`
	Brightness  string `json:"brightness"`
	Volume      string `json:"volume"`
	On          string `json:"on"`
	Off         string `json:"off"`
	Voice       string `json:"voice"`
	Text        string `json:"text"`
	Try         string `json:"try"`
}

func LoadCatalog(requestedLocale string) Catalog {
	locale := NormalizeLocale(requestedLocale)
	if locale == "" {
		locale = DetectLocale()
	}
	if locale == "" {
		locale = "en"
	}
	base := baseCatalogForLocale(locale)

	if override, ok := loadCommunityCatalog(locale); ok {
		merged := mergeCatalog(base, override)
		if strings.TrimSpace(override.Locale) != "" {
			merged.Locale = NormalizeLocale(override.Locale)
		} else {
			merged.Locale = locale
		}
		return merged
	}

	base.Locale = locale
	return base
}

func baseCatalogForLocale(locale string) Catalog {
	normalized := strings.ToLower(NormalizeLocale(locale))
	switch {
	case strings.HasPrefix(normalized, "es"):
		// Spanish first, English fills anything missing.
		base := mergeCatalog(defaultEnglishCatalog(), defaultSpanishCatalog())
		base.Locale = "es"
		return base
	default:
		base := defaultEnglishCatalog()
		base.Locale = "en"
		return base
	}
}

func DetectLocale() string {
	candidates := []string{
		os.Getenv("HANDSET_LOCALE"),
		os.Getenv("LC_ALL"),
		os.Getenv("LC_MESSAGES"),
		os.Getenv("LANG"),
	}
	for _, candidate := range candidates {
		if normalized := NormalizeLocale(candidate); normalized != "" {
			return normalized
		}
	}
	return "en"
}

func NormalizeLocale(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.Split(trimmed, ".")[0]
	trimmed = strings.Split(trimmed, "@")[0]
	trimmed = strings.ReplaceAll(trimmed, "_", "-")

	parts := strings.Split(trimmed, "-")
	lang := strings.ToLower(parts[0])
	if !isValidLocaleToken(lang, true) {
		return ""
	}
	if len(parts) == 1 || parts[1] == "" {
		return lang
	}
	region := strings.ToUpper(parts[1])
	if !isValidLocaleToken(strings.ToLower(region), false) {
		return ""
	}
	return lang + "-" + region
}

func isValidLocaleToken(token string, lettersOnly bool) bool {
	if len(token) < 2 || len(token) > 8 {
		return false
	}
	for _, r := range token {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if !lettersOnly && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// loadCommunityCatalog looks for <config>/locales/<locale>.json, then the
// bare language file.
func loadCommunityCatalog(locale string) (Catalog, bool) {
	normalized := NormalizeLocale(locale)
	if normalized == "" {
		return Catalog{}, false
	}
	candidates := []string{normalized}
	if idx := strings.Index(normalized, "-"); idx > 0 {
		candidates = append(candidates, normalized[:idx])
	}

	for _, candidate := range candidates {
		path, err := appdirs.LocaleFilePath(candidate)
		if err != nil {
			return Catalog{}, false
		}
		if loaded, ok := loadCatalogFile(path); ok {
			return loaded, true
		}
	}
	return Catalog{}, false
}

func loadCatalogFile(path string) (Catalog, bool) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, false
	}
	var catalog Catalog
	if err := json.Unmarshal(bytes, &catalog); err != nil {
		return Catalog{}, false
	}
	return catalog, true
}

func mergeCatalog(base Catalog, override Catalog) Catalog {
	merged := base

	c, o := &merged.Console, override.Console
	mergeString(&c.Title, o.Title)
	mergeString(&c.Subtitle, o.Subtitle)
	mergeString(&c.Placeholder, o.Placeholder)
	mergeString(&c.Ready, o.Ready)
	mergeString(&c.Prompt, o.Prompt)
	mergeString(&c.QuitHint, o.QuitHint)
	mergeString(&c.ResetDone, o.ResetDone)
	mergeString(&c.Goodbye, o.Goodbye)
	if len(o.Help) > 0 {
		c.Help = append([]string(nil), o.Help...)
	}

	p, op := &merged.Panel, override.Panel
	mergeString(&p.Device, op.Device)
	mergeString(&p.Activity, op.Activity)
	mergeString(&p.LastCommand, op.LastCommand)
	mergeString(&p.Response, op.Response)
	mergeString(&p.NoActivity, op.NoActivity)
	mergeString(&p.Brightness, op.Brightness)
	mergeString(&p.Volume, op.Volume)
	mergeString(&p.On, op.On)
	mergeString(&p.Off, op.Off)
	mergeString(&p.Voice, op.Voice)
	mergeString(&p.Text, op.Text)
	mergeString(&p.Try, op.Try)

	return merged
}

func mergeString(target *string, override string) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		*target = trimmed
	}
}

func defaultEnglishCatalog() Catalog {
	return Catalog{
		Locale: "en",
		Console: ConsoleCatalog{
			Title:       "handset",
			Subtitle:    "Type a command to control the simulated phone.",
			Placeholder: "turn on bluetooth",
			Ready:       "Ready for your next command.",
			Prompt:      "command> ",
			QuitHint:    "enter to send, esc or ctrl+c to quit",
			ResetDone:   "Device restored to its initial settings.",
			Goodbye:     "bye",
			Help: []string{
				"help    show this help",
				"status  print the device settings",
				"log     print recent activity",
				"reset   restore the initial settings and clear the log",
				"exit    leave the console",
			},
		},
		Panel: PanelCatalog{
			Device:      "Device",
			Activity:    "Recent activity",
			LastCommand: "Last command",
			Response:    "Response",
			NoActivity:  "No commands yet.",
			Brightness:  "Brightness",
			Volume:      "Volume",
			On:          "on",
			Off:         "off",
			Voice:       "voice",
			Text:        "text",
			Try:         "Try",
		},
	}
}

func defaultSpanishCatalog() Catalog {
	return Catalog{
		Locale: "es",
		Console: ConsoleCatalog{
			Title:       "handset",
			Subtitle:    "Escribe un comando para controlar el teléfono simulado.",
			Placeholder: "turn on bluetooth",
			Ready:       "Listo para el siguiente comando.",
			Prompt:      "comando> ",
			QuitHint:    "enter para enviar, esc o ctrl+c para salir",
			ResetDone:   "Ajustes iniciales restaurados.",
			Goodbye:     "adiós",
			Help: []string{
				"help    muestra esta ayuda",
				"status  muestra los ajustes del dispositivo",
				"log     muestra la actividad reciente",
				"reset   restaura los ajustes iniciales y borra el registro",
				"exit    sale de la consola",
			},
		},
		Panel: PanelCatalog{
			Device:      "Dispositivo",
			Activity:    "Actividad reciente",
			LastCommand: "Último comando",
			Response:    "Respuesta",
			NoActivity:  "Todavía no hay comandos.",
			Brightness:  "Brillo",
			Volume:      "Volumen",
			On:          "sí",
			Off:         "no",
			Voice:       "voz",
			Text:        "texto",
			Try:         "Prueba",
		},
	}
}
