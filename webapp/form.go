package webapp

import (
	"sort"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// ValidationError is one problem with one form field. Message is a message key, which is
// looked up in Messages when the error is displayed.
type ValidationError struct {
	Key     string
	Message string
	Args    []any
}

// DynamicForm is a form whose fields are not known in advance: just a string map of submitted
// values plus any validation errors per field.
type DynamicForm struct {
	data   map[string]string
	errors map[string][]ValidationError
}

func NewDynamicForm(data map[string]string, errors map[string][]ValidationError) *DynamicForm {
	f := &DynamicForm{
		data:   make(map[string]string, len(data)),
		errors: make(map[string][]ValidationError, len(errors)),
	}
	for k, v := range data {
		f.data[k] = v
	}
	for k, errs := range errors {
		f.errors[k] = append([]ValidationError(nil), errs...)
	}
	return f
}

func (f *DynamicForm) Get(key string) string { return f.data[key] }

func (f *DynamicForm) Data() map[string]string {
	ret := make(map[string]string, len(f.data))
	for k, v := range f.data {
		ret[k] = v
	}
	return ret
}

// Require adds an error.required error for each of the keys whose value is missing or empty.
func (f *DynamicForm) Require(keys ...string) *DynamicForm {
	for _, k := range keys {
		if f.data[k] == "" {
			f.Reject(k, MessageRequired)
		}
	}
	return f
}

// Reject adds a validation error for a field.
func (f *DynamicForm) Reject(key, message string, args ...any) {
	f.errors[key] = append(f.errors[key], ValidationError{Key: key, Message: message, Args: args})
}

func (f *DynamicForm) HasErrors() bool { return len(f.errors) != 0 }

func (f *DynamicForm) Errors() map[string][]ValidationError {
	ret := make(map[string][]ValidationError, len(f.errors))
	for k, errs := range f.errors {
		ret[k] = append([]ValidationError(nil), errs...)
	}
	return ret
}

// ErrorsAsJSON returns the validation errors as a JSON object whose properties are field names
// and whose values are arrays of messages, localized for lang.
func (f *DynamicForm) ErrorsAsJSON(messages Messages, lang string) ldvalue.Value {
	keys := make([]string, 0, len(f.errors))
	for k := range f.errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	obj := ldvalue.ObjectBuild()
	for _, k := range keys {
		arr := ldvalue.ArrayBuild()
		for _, e := range f.errors[k] {
			arr.Add(ldvalue.String(messages.Get(lang, e.Message, e.Args...)))
		}
		obj.Set(k, arr.Build())
	}
	return obj.Build()
}
