package errors

import "github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"

// Localize returns the user-facing text for err in locale. Errors without a
// domain code render as the generic failure text.
func Localize(err error, locale string) string {
	cat := i18n.GetCatalog(locale)
	domainErr, ok := As(err)
	if !ok {
		return cat.Format(i18n.CodeUnknown, nil)
	}
	return cat.Format(string(domainErr.Code), domainErr.Metadata)
}

// LocalizedStatus converts err to a gRPC status carrying localized text.
func LocalizedStatus(err error, locale string) error {
	domainErr, ok := As(err)
	if !ok {
		domainErr = Wrap(CodeUnknown, "internal error", err)
	}
	return domainErr.ToGRPCStatus(i18n.GetCatalog(locale).Locale(), Localize(err, locale))
}
