package infra

import (
	"testing"
	"time"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureIndex(t *testing.T) cmakedoc.Index {
	t.Helper()
	callables, err := cmakedoc.ParseFile("../cmakedoc/testdata/utils.cmake")
	require.NoError(t, err)
	return cmakedoc.Index{Source: "cmake/utils.cmake", Callables: callables}
}

func keywordsOf(params IndexParams, callable string) map[string]map[string]any {
	out := make(map[string]map[string]any)
	for _, kw := range params.Keywords {
		if kw["callable"] != callable {
			continue
		}
		props := kw["props"].(map[string]any)
		out[props["name"].(string)] = props
	}
	return out
}

func TestBuildIndexParams(t *testing.T) {
	storedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Should describe the file node", func(t *testing.T) {
		params := BuildIndexParams(fixtureIndex(t), storedAt)

		assert.Equal(t, "cmake/utils.cmake", params.File["path"])
		assert.Equal(t, storedAt, params.File["stored_at"])
		assert.NotEmpty(t, params.File["id"])
	})

	t.Run("Should emit one node per callable", func(t *testing.T) {
		params := BuildIndexParams(fixtureIndex(t), storedAt)

		require.Len(t, params.Callables, 4)
		first := params.Callables[0]
		assert.Equal(t, "cmake/utils.cmake::tp_add_library::8", first["key"])
		assert.Equal(t, "tp_add_library", first["name"])
		assert.Equal(t, "function", first["kind"])
		assert.Equal(t, int64(8), first["line"])
		assert.Equal(t, []string{"name", "visibility"}, first["args"])
		assert.Equal(t, true, first["public"])
		assert.Contains(t, first["doc"], "Add a library target")

		assert.Equal(t, "macro", params.Callables[1]["kind"])
		assert.Equal(t, false, params.Callables[2]["public"])
		assert.Equal(t, []string{}, params.Callables[3]["args"])
	})

	t.Run("Should link calls between defined callables", func(t *testing.T) {
		params := BuildIndexParams(fixtureIndex(t), storedAt)

		assert.ElementsMatch(t, []map[string]any{
			{"from": "cmake/utils.cmake::tp_add_library::8", "to": "cmake/utils.cmake::_tp_check_var_defined::29"},
			{"from": "cmake/utils.cmake::tp_add_library::8", "to": "cmake/utils.cmake::tp_set_output_name::23"},
			{"from": "cmake/utils.cmake::tp_python_module::35", "to": "cmake/utils.cmake::_tp_check_var_defined::29"},
		}, params.Calls)
	})

	t.Run("Should flag required keywords", func(t *testing.T) {
		params := BuildIndexParams(fixtureIndex(t), storedAt)
		require.Len(t, params.Keywords, 9)

		lib := keywordsOf(params, "cmake/utils.cmake::tp_add_library::8")
		require.Len(t, lib, 6)
		assert.Equal(t, KeywordOption, lib["SHARED"]["kind"])
		assert.Equal(t, KeywordOneValue, lib["VERSION"]["kind"])
		assert.Equal(t, KeywordMultiValue, lib["SOURCES"]["kind"])
		assert.Equal(t, true, lib["VERSION"]["required"])
		assert.Equal(t, true, lib["SOURCES"]["required"])
		assert.Equal(t, false, lib["DEPENDS"]["required"])
		assert.Equal(t, "ARG", lib["DEPENDS"]["prefix"])

		py := keywordsOf(params, "cmake/utils.cmake::tp_python_module::35")
		require.Len(t, py, 3)
		assert.Equal(t, true, py["NAME"]["required"])
		assert.Equal(t, "PY", py["NAME"]["prefix"])
	})

	t.Run("Should skip calls to callables defined elsewhere", func(t *testing.T) {
		idx := cmakedoc.Index{Source: "a.cmake", Callables: []*cmakedoc.Callable{
			{Kind: cmakedoc.KindFunction, Name: "f", Calls: []string{"g"}},
		}}
		params := BuildIndexParams(idx, storedAt)
		assert.Empty(t, params.Calls)
		assert.Empty(t, params.Keywords)
	})
}

func TestBuildIndexParams_Redefinition(t *testing.T) {
	src := "function(f a)\nendfunction()\n\nfunction(g)\n  F(1)\nendfunction()\n\nfunction(f b)\nendfunction()\n"
	callables, err := cmakedoc.Parse(src)
	require.NoError(t, err)
	require.Len(t, callables, 3)

	params := BuildIndexParams(cmakedoc.Index{Source: "x.cmake", Callables: callables}, time.Now())

	t.Run("Should give each definition its own key", func(t *testing.T) {
		keys := make(map[any]bool)
		for _, c := range params.Callables {
			keys[c["key"]] = true
		}
		assert.Len(t, keys, 3)
		assert.Equal(t, "x.cmake::f::1", params.Callables[0]["key"])
		assert.Equal(t, "x.cmake::f::8", params.Callables[2]["key"])
	})

	t.Run("Should link calls to the last definition", func(t *testing.T) {
		assert.Equal(t, []map[string]any{
			{"from": "x.cmake::g::4", "to": "x.cmake::f::8"},
		}, params.Calls)
	})
}

func TestQueries(t *testing.T) {
	t.Run("Should use the index labels", func(t *testing.T) {
		assert.Contains(t, clearFileQuery, "MATCH (f:CMakeFile {path: $path})")
		assert.Contains(t, createFileQuery, "CREATE (f)-[:DEFINES]->(c:CMakeCallable)")
		assert.Contains(t, createCallsQuery, "MERGE (a)-[:CALLS]->(b)")
		assert.Contains(t, createKeywordsQuery, "CREATE (c)-[:ACCEPTS]->(k:Keyword)")
	})
}
