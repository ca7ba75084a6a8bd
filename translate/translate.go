// Package translate formats user-visible messages for the current locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var (
	once    sync.Once
	printer *message.Printer
)

// detect picks the printer from the user's locale settings.
func detect() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("duck: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// Use replaces the detected locale with an explicit preference list.
func Use(locales ...string) {
	once.Do(detect)

	if len(locales) == 0 {
		return
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	once.Do(detect)

	return printer.Sprintf(key, args...)
}

// message_error is an error whose text is translated each time it is read.
type message_error struct {
	key string
}

func (err *message_error) Error() string {
	return From(err.key)
}

// New returns a sentinel error with an en-US message key. The text follows
// the locale in effect when Error is called, not when New was called.
func New(key string) error {
	return &message_error{key: key}
}
