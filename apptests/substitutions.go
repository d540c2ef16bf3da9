package apptests

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/launchdarkly/app-test-harness/codec"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

type substitutionSet map[string]ldvalue.Value

// expandSubstitutions applies the "constants" and "parameters" of a case file. A quoted
// placeholder "<name>" is replaced with the JSON value; an unquoted <name> inside a string is
// replaced with the value's text.
func expandSubstitutions(originalData []byte) ([]CaseSource, error) {
	var substs struct {
		Constants  substitutionSet   `json:"constants"`
		Parameters []json.RawMessage `json:"parameters"`
	}
	if err := codec.ParseJSONOrYAML(originalData, &substs); err != nil {
		return nil, err
	}
	if len(substs.Constants) == 0 && len(substs.Parameters) == 0 {
		return []CaseSource{{Data: originalData}}, nil
	}
	parameterSets, err := makeParameterPermutations(substs.Parameters)
	if err != nil {
		return nil, err
	}
	if len(parameterSets) == 0 {
		return []CaseSource{{Data: replaceVariables(originalData, substs.Constants)}}, nil
	}
	ret := make([]CaseSource, 0, len(parameterSets))
	for _, params := range parameterSets {
		// constants may refer to parameters and the other way round
		transformed := replaceVariables(originalData, substs.Constants)
		transformed = replaceVariables(transformed, params)
		transformed = replaceVariables(transformed, substs.Constants)
		ret = append(ret, CaseSource{Data: transformed, Params: params})
	}
	return ret, nil
}

// makeParameterPermutations accepts either a list of parameter sets, or a list of lists of
// parameter sets; the latter produces every combination of one set from each list.
func makeParameterPermutations(paramsData []json.RawMessage) ([]substitutionSet, error) {
	if len(paramsData) == 0 {
		return nil, nil
	}
	allData, err := json.Marshal(paramsData)
	if err != nil {
		return nil, err
	}
	switch ldvalue.Parse(paramsData[0]).Type() {
	case ldvalue.ObjectType:
		var list []substitutionSet
		if err := json.Unmarshal(allData, &list); err != nil {
			return nil, err
		}
		return list, nil
	case ldvalue.ArrayType:
	default:
		return nil, errors.New("unable to parse parameters - must be an array of objects or an array of arrays")
	}
	var lists [][]substitutionSet
	if err := json.Unmarshal(allData, &lists); err != nil {
		return nil, err
	}
	for _, list := range lists {
		if len(list) == 0 {
			return nil, errors.New("unable to parse parameters - a parameter list cannot be empty")
		}
	}
	indices := make([]int, len(lists))
	var result []substitutionSet
	for {
		merged := make(substitutionSet)
		for i, list := range lists {
			for k, v := range list[indices[i]] {
				merged[k] = v
			}
		}
		result = append(result, merged)
		pos := 0
		for pos < len(lists) {
			indices[pos]++
			if indices[pos] < len(lists[pos]) {
				break
			}
			indices[pos] = 0
			pos++
		}
		if pos == len(lists) {
			return result, nil
		}
	}
}

func replaceVariables(originalData []byte, substs substitutionSet) []byte {
	str := string(originalData)
	str = strings.ReplaceAll(str, `\u003c`, "<")
	str = strings.ReplaceAll(str, `\u003e`, ">")
	for name, value := range substs {
		typed := value.JSONString()
		str = strings.ReplaceAll(str, `"<`+name+`>"`, typed)
		interpolated := typed
		if value.IsString() {
			interpolated = value.StringValue()
		}
		str = strings.ReplaceAll(str, "<"+name+">", interpolated)
	}
	return []byte(str)
}
