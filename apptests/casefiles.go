package apptests

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/launchdarkly/app-test-harness/codec"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

//go:embed cases
var caseFilesRoot embed.FS

const caseFilesBasePath = "cases"

// CaseSource is a case file after its constants and parameters have been expanded. A file with
// no parameters produces one CaseSource; a parameterized file produces one per parameter set.
type CaseSource struct {
	FilePath string
	BaseName string
	Params   map[string]ldvalue.Value
	Data     []byte
}

// ParseInto parses the expanded JSON or YAML data.
func (s CaseSource) ParseInto(target interface{}) error {
	if err := codec.ParseJSONOrYAML(s.Data, target); err != nil {
		return fmt.Errorf("error parsing %q %s: %w", s.BaseName, s.ParamsString(), err)
	}
	return nil
}

// ParamsString describes the parameter set, in a stable order, for use in test names.
func (s CaseSource) ParamsString() string {
	if len(s.Params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := s.Params[k]
		if v.IsString() {
			parts = append(parts, k+"="+v.StringValue())
		} else {
			parts = append(parts, k+"="+v.JSONString())
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// TestName is the name that a test scope for this source should have. Slashes are escaped,
// since they separate the components of a TestID.
func (s CaseSource) TestName() string {
	name := strings.TrimSuffix(s.BaseName, path.Ext(s.BaseName))
	if ps := s.ParamsString(); ps != "" {
		name += " " + ps
	}
	return strings.ReplaceAll(name, "/", "%2F")
}

// LoadCaseFile reads one case file, relative to the embedded cases directory, and expands it.
func LoadCaseFile(filePath string) ([]CaseSource, error) {
	data, err := caseFilesRoot.ReadFile(caseFilesBasePath + "/" + filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filePath, err)
	}
	sources, err := expandSubstitutions(data)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", filePath, err)
	}
	ret := make([]CaseSource, 0, len(sources))
	for _, source := range sources {
		source.FilePath = filePath
		source.BaseName = path.Base(filePath)
		ret = append(ret, source)
	}
	return ret, nil
}

// LoadAllCaseFiles reads and expands every case file in the embedded cases directory, in file
// name order.
func LoadAllCaseFiles() ([]CaseSource, error) {
	files, err := caseFilesRoot.ReadDir(caseFilesBasePath)
	if err != nil {
		return nil, err
	}
	var ret []CaseSource
	for _, file := range files {
		if file.IsDir() || !isCaseFileName(file.Name()) {
			continue
		}
		sources, err := LoadCaseFile(file.Name())
		if err != nil {
			return nil, err
		}
		ret = append(ret, sources...)
	}
	return ret, nil
}

func isCaseFileName(name string) bool {
	switch path.Ext(name) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
