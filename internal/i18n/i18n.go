// Package i18n holds the handful of user-facing strings the core produces.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. English text doubles as the key.
const (
	UntitledNote  = "Untitled Note"
	ReminderTitle = "Notes Reminder"
	ReminderBody  = "Reminder: %s"
	EncryptedNote = "Encrypted note"
	EmptyNote     = "Note title or content cannot be empty!"
	NoteSaved     = "Note saved successfully!"
)

// DefaultLanguage is used when no preference is stored.
const DefaultLanguage = "tr"

var supported = []language.Tag{language.Turkish, language.English}

var matcher = language.NewMatcher(supported)

func init() {
	tr := map[string]string{
		UntitledNote:  "Başlıksız Not",
		ReminderTitle: "Premium Notes Hatırlatma",
		ReminderBody:  "Hatırlatma: %s",
		EncryptedNote: "Şifreli not",
		EmptyNote:     "Not başlığı veya içerik boş olamaz!",
		NoteSaved:     "Not başarıyla kaydedildi!",
	}
	for key, text := range tr {
		mustSet(language.Turkish, key, text)
	}
	for _, key := range []string{UntitledNote, ReminderTitle, ReminderBody, EncryptedNote, EmptyNote, NoteSaved} {
		mustSet(language.English, key, key)
	}
}

func mustSet(tag language.Tag, key, text string) {
	if err := message.SetString(tag, key, text); err != nil {
		panic(fmt.Sprintf("i18n: failed to register %q for %s: %v", key, tag, err))
	}
}

// Match returns the closest supported language for a preference string.
func Match(lang string) language.Tag {
	if lang == "" {
		lang = DefaultLanguage
	}
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return s
		}
	}
	return supported[0]
}

// Printer returns a message printer for a language preference.
func Printer(lang string) *message.Printer {
	return message.NewPrinter(Match(lang))
}

// Supported reports whether lang names a supported language exactly.
func Supported(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	for _, s := range supported {
		if s == tag {
			return true
		}
	}
	return false
}
