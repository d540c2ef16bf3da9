package apptests

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testExpandStruct struct {
	Values ldvalue.Value `json:"values"`
}

func expandAndParse(t *testing.T, input string) []testExpandStruct {
	sources, err := expandSubstitutions([]byte(input))
	require.NoError(t, err)
	ret := make([]testExpandStruct, 0, len(sources))
	for _, s := range sources {
		var out testExpandStruct
		require.NoError(t, s.ParseInto(&out))
		ret = append(ret, out)
	}
	return ret
}

func TestAllCaseFilesLoad(t *testing.T) {
	sources, err := LoadAllCaseFiles()
	require.NoError(t, err)
	names := make(map[string]int)
	for _, s := range sources {
		names[s.BaseName]++
		var file routeCaseFile
		require.NoError(t, s.ParseInto(&file), s.TestName())
		assert.NotEmpty(t, file.Cases, s.TestName())
		for _, c := range file.Cases {
			_, err := c.Request.build()
			assert.NoError(t, err, "%s: %s", s.TestName(), c.Name)
		}
	}
	assert.Equal(t, 3, names["greetings.yaml"])
	assert.Equal(t, 4, names["unrouted.yaml"])
	assert.Equal(t, 1, names["values.yaml"])
}

func TestLoadCaseFileNotFound(t *testing.T) {
	_, err := LoadCaseFile("nothing.yaml")
	assert.Error(t, err)
}

func TestExpandWithoutSubstitutions(t *testing.T) {
	input := "values:\n  a: <notReplaced>\n"
	sources, err := expandSubstitutions([]byte(input))
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, input, string(sources[0].Data))
	assert.Empty(t, sources[0].Params)
}

func TestExpandConstants(t *testing.T) {
	input := `---
constants:
  num: 3
  obj: {a: 1}
  str: hello
values:
  typed: "<num>"
  object: "<obj>"
  text: "<str>, world"
`
	out := expandAndParse(t, input)
	require.Len(t, out, 1)
	m.In(t).Assert(out[0].Values, m.JSONStrEqual(`{"typed": 3, "object": {"a": 1}, "text": "hello, world"}`))
}

func TestExpandParameterList(t *testing.T) {
	input := `---
parameters:
  - name: a
  - name: b
values:
  name: "<name>"
`
	out := expandAndParse(t, input)
	require.Len(t, out, 2)
	m.In(t).Assert(out[0].Values, m.JSONStrEqual(`{"name": "a"}`))
	m.In(t).Assert(out[1].Values, m.JSONStrEqual(`{"name": "b"}`))
}

func TestExpandParameterPermutations(t *testing.T) {
	input := `---
parameters:
  - - x: 1
    - x: 2
  - - y: a
    - y: b
values:
  pair: "<x><y>"
`
	out := expandAndParse(t, input)
	require.Len(t, out, 4)
	var pairs []string
	for _, o := range out {
		pairs = append(pairs, o.Values.GetByKey("pair").StringValue())
	}
	assert.Equal(t, []string{"1a", "2a", "1b", "2b"}, pairs)
}

func TestConstantsCanReferToParameters(t *testing.T) {
	input := `---
constants:
  greeting: "Hello <name>"
parameters:
  - name: Kiki
values:
  text: "<greeting>"
`
	out := expandAndParse(t, input)
	require.Len(t, out, 1)
	m.In(t).Assert(out[0].Values, m.JSONStrEqual(`{"text": "Hello Kiki"}`))
}

func TestExpandRejectsBadParameters(t *testing.T) {
	for _, input := range []string{
		"parameters: [1, 2]\n",
		"parameters:\n  - []\n",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := expandSubstitutions([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestCaseSourceNames(t *testing.T) {
	s := CaseSource{
		BaseName: "register.yaml",
		Params:   map[string]ldvalue.Value{"lang": ldvalue.String("fr"), "count": ldvalue.Int(2)},
	}
	assert.Equal(t, "(count=2,lang=fr)", s.ParamsString())
	assert.Equal(t, "register (count=2,lang=fr)", s.TestName())
	assert.Equal(t, "values", CaseSource{BaseName: "values.yaml"}.TestName())

	withPath := CaseSource{BaseName: "unrouted.yaml", Params: map[string]ldvalue.Value{"path": ldvalue.String("/a/b")}}
	assert.Equal(t, "unrouted (path=%2Fa%2Fb)", withPath.TestName())
}
