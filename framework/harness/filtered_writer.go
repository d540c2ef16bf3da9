package harness

import (
	"io"
	"regexp"
	"strings"

	"github.com/launchdarkly/app-test-harness/framework"
)

// filteredWriter drops any write that matches one of the exclusion patterns. It sits between
// net/http's error log and our Logger, since the server reports some expected conditions (such as
// a connection closed during shutdown) as errors.
type filteredWriter struct {
	writer       io.Writer
	excludeRegex []*regexp.Regexp
}

func newFilteredWriter(writer io.Writer, excludeRegex []*regexp.Regexp) *filteredWriter {
	return &filteredWriter{writer, excludeRegex}
}

func (f *filteredWriter) Write(data []byte) (int, error) {
	for _, r := range f.excludeRegex {
		if r.Match(data) {
			return len(data), nil
		}
	}
	return f.writer.Write(data)
}

type loggerWriter struct {
	logger framework.Logger
}

func (w loggerWriter) Write(data []byte) (int, error) {
	w.logger.Println(strings.TrimRight(string(data), "\r\n"))
	return len(data), nil
}
