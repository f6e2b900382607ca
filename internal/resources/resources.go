package resources

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "en"

// Message identifiers shared across packages.
const (
	StringNotFound       = "string_not_found"
	PermissionRequest    = "permission_request"
	PermissionNotGranted = "permission_not_granted"
	OK                   = "ok"
	Done                 = "done"
	Cancel               = "cancel"
	EmailBadFormat       = "email_bad_format"
	PasswordsDoNotMatch  = "passwords_do_not_match"
	PasswordIsShort      = "password_is_short"
	FieldIsEmpty         = "field_is_empty"
	GreetingUser         = "greeting_user"
)

// Strings resolves a message identifier to display text.
type Strings interface {
	String(id string) string
}

// Resolver maps message identifiers to localized strings.
type Resolver struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string
	langs     []string
	logger    *zap.Logger
}

// New loads the embedded locale files and selects lang (falling back to English).
func New(lang string, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			logger.Debug("Skipping locale file", zap.String("file", name))
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("failed to load locale %s: %w", name, err)
		}
		langs = append(langs, strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json"))
	}
	sort.Strings(langs)

	r := &Resolver{
		bundle: bundle,
		langs:  langs,
		logger: logger,
	}
	r.SetLanguage(lang)
	return r, nil
}

// SetLanguage switches the active language. Unknown or empty tags fall back to English.
func (r *Resolver) SetLanguage(lang string) {
	if lang == "" {
		lang = DefaultLanguage
	}
	if _, err := language.Parse(lang); err != nil {
		r.logger.Warn("Invalid language tag, using default",
			zap.String("lang", lang),
			zap.Error(err))
		lang = DefaultLanguage
	}
	r.lang = lang
	r.localizer = i18n.NewLocalizer(r.bundle, lang, DefaultLanguage)
}

// Language returns the active language tag.
func (r *Resolver) Language() string {
	return r.lang
}

// Languages lists the embedded locales.
func (r *Resolver) Languages() []string {
	return append([]string(nil), r.langs...)
}

// String resolves id. Unknown identifiers resolve to the "text not found" message.
func (r *Resolver) String(id string) string {
	return r.Format(id, nil)
}

// Format resolves id and fills template placeholders from data.
func (r *Resolver) Format(id string, data map[string]any) string {
	msg, err := r.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		r.logger.Debug("Missing translation",
			zap.String("id", id),
			zap.String("lang", r.lang),
			zap.Error(err))
		if id == StringNotFound {
			return id
		}
		return r.String(StringNotFound)
	}
	return msg
}

// DayName returns the weekday name for a Monday-based index (0 = Monday).
func (r *Resolver) DayName(index int) string {
	if index < 0 || index > 6 {
		return r.String(StringNotFound)
	}
	return r.String(fmt.Sprintf("day_%d", index))
}
