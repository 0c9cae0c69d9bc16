// Package i18n resolves user-facing messages from the embedded locale files. Message IDs
// are the AppError codes plus dotted keys for notification text.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu            sync.RWMutex
	bundle        *i18n.Bundle
	defaultLocale = "en"
	matcher       language.Matcher
)

type ctxKey struct{}

// Init loads every embedded locale file and sets the fallback locale.
func Init(defLocale string) error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := b.LoadMessageFileFS(localeFS, "locales/"+e.Name()); err != nil {
			return fmt.Errorf("i18n: load %s: %w", e.Name(), err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	matcher = language.NewMatcher(b.LanguageTags())
	if defLocale != "" {
		defaultLocale = defLocale
	}
	return nil
}

func current() (*i18n.Bundle, language.Matcher) {
	mu.RLock()
	b, m := bundle, matcher
	mu.RUnlock()
	if b != nil {
		return b, m
	}
	if err := Init(""); err != nil {
		return nil, nil
	}
	return current()
}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext returns the request locale, or the configured default.
func LocaleFromContext(ctx context.Context) string {
	if ctx != nil {
		if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
			return v
		}
	}
	mu.RLock()
	defer mu.RUnlock()
	return defaultLocale
}

// Match picks the best supported locale for an Accept-Language header value.
func Match(acceptLanguage string) string {
	_, m := current()
	if m == nil || strings.TrimSpace(acceptLanguage) == "" {
		return LocaleFromContext(nil)
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LocaleFromContext(nil)
	}
	tag, _, _ := m.Match(tags...)
	base, _ := tag.Base()
	return base.String()
}

// Middleware stores the negotiated locale on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := Match(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", locale)
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), locale)))
	})
}

// T translates messageID in the context locale. Unknown IDs come back unchanged.
func T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	return TOr(ctx, messageID, messageID, templateData...)
}

// TOr is T with an explicit fallback for IDs missing from every locale.
func TOr(ctx context.Context, messageID, fallback string, templateData ...map[string]any) string {
	b, _ := current()
	if b == nil {
		return fallback
	}
	l := i18n.NewLocalizer(b, LocaleFromContext(ctx), LocaleFromContext(nil))

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return fallback
	}
	return msg
}
