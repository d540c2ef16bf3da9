package ldtest

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/exp/slices"
)

// ErrorWithStacktrace is a test failure along with the calls that led to it, not counting the
// test framework's own functions.
type ErrorWithStacktrace struct {
	Message    string
	Stacktrace []StacktraceInfo
}

// StacktraceInfo is one call in an ErrorWithStacktrace.
type StacktraceInfo struct {
	FileName string
	Package  string
	Function string
	Line     int
}

func (e ErrorWithStacktrace) Error() string { return e.Message }

func (s StacktraceInfo) String() string {
	return fmt.Sprintf("%s.%s (%s:%d)", strings.TrimPrefix(s.Package, modulePath()+"/"), s.Function, s.FileName, s.Line)
}

const maxStackDepth = 64

var ldtestPackageName = packageOf(splitFunctionName) //nolint:gochecknoglobals

// testify puts its own trace at the start of a failure message; ours replaces it
var testifyTraceRegex = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`)

func transformError(err error, stacktrace []StacktraceInfo) error {
	message := err.Error()
	if strings.Contains(message, "Error Trace:") {
		message = strings.TrimSpace(testifyTraceRegex.ReplaceAllLiteralString(message, ""))
	}
	if len(stacktrace) == 0 {
		return errors.New(message)
	}
	return ErrorWithStacktrace{Message: message, Stacktrace: stacktrace}
}

func packageOf(fn interface{}) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "?"
	}
	pkg, _ := splitFunctionName(f.Name())
	return pkg
}

// modulePath is the first three elements of this package's path, which is where file names in
// stacktraces are shown relative to.
func modulePath() string {
	parts := strings.Split(ldtestPackageName, "/")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "/")
}

// getStacktrace returns the callers of the function that called it, stopping at ldtest.Run. The
// functions named in helperFns are left out, and so is the rest of ldtest unless
// includeLDTestCode is true.
func getStacktrace(includeLDTestCode bool, helperFns []string) []StacktraceInfo {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2, pcs) // 0 is runtime.Callers, 1 is getStacktrace
	frames := runtime.CallersFrames(pcs[:n])
	var ret []StacktraceInfo
	for {
		frame, more := frames.Next()
		if frame.Function == "" {
			break
		}
		pkg, fn := splitFunctionName(frame.Function)
		if pkg == ldtestPackageName && fn == "Run" {
			break
		}
		ownCode := pkg == ldtestPackageName && !includeLDTestCode
		if !ownCode && !slices.Contains(helperFns, frame.Function) {
			ret = append(ret, StacktraceInfo{
				FileName: filepath.Base(frame.File),
				Package:  pkg,
				Function: fn,
				Line:     frame.Line,
			})
		}
		if !more {
			break
		}
	}
	return ret
}

// splitFunctionName splits a name like "example.com/a/b.(*T).Method" into the package path and the
// rest.
func splitFunctionName(fullName string) (string, string) {
	lastSlash := strings.LastIndex(fullName, "/")
	dot := strings.Index(fullName[lastSlash+1:], ".")
	if dot < 0 {
		return fullName, ""
	}
	pkgEnd := lastSlash + 1 + dot
	return fullName[:pkgEnd], fullName[pkgEnd+1:]
}
