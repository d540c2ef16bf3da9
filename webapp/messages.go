package webapp

import "fmt"

// Well-known message keys, as used by form validation.
const (
	MessageRequired = "error.required"
	MessageMinLen   = "error.minLength"
	MessageMaxLen   = "error.maxLength"
	MessageInvalid  = "error.invalid"
)

// Messages holds localized message templates: language code, then message key, then a
// fmt-style template.
type Messages map[string]map[string]string

func DefaultMessages() Messages {
	return Messages{
		DefaultLanguage: {
			MessageRequired: "This field is required",
			MessageMinLen:   "Minimum length is %v",
			MessageMaxLen:   "Maximum length is %v",
			MessageInvalid:  "Invalid value",
		},
	}
}

// Get looks up a message for a language, falling back to the default language and then to the
// key itself. If there are args, the message is used as a format string.
func (m Messages) Get(lang, key string, args ...any) string {
	message, ok := m[lang][key]
	if !ok {
		message, ok = m[DefaultLanguage][key]
	}
	if !ok {
		message = key
	}
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}

// Merge returns a new Messages containing everything in m, overlaid with everything in other.
func (m Messages) Merge(other Messages) Messages {
	ret := make(Messages, len(m)+len(other))
	for _, src := range []Messages{m, other} {
		for lang, entries := range src {
			if ret[lang] == nil {
				ret[lang] = make(map[string]string, len(entries))
			}
			for k, v := range entries {
				ret[lang][k] = v
			}
		}
	}
	return ret
}
