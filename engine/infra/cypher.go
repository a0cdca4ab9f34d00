package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/core"
)

var (
	clearFileQuery = fmt.Sprintf(`
		MATCH (f:%s {path: $path})
		OPTIONAL MATCH (f)-[:%s]->(c:%s)
		OPTIONAL MATCH (c)-[:%s]->(k:%s)
		DETACH DELETE k, c, f
	`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable,
		core.RelationAccepts, core.NodeTypeKeyword)

	createFileQuery = fmt.Sprintf(`
		CREATE (f:%s)
		SET f = $file
		WITH f
		UNWIND $callables AS callable
		CREATE (f)-[:%s]->(c:%s)
		SET c = callable
	`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable)

	createCallsQuery = fmt.Sprintf(`
		UNWIND $calls AS call
		MATCH (a:%[1]s {key: call.from}), (b:%[1]s {key: call.to})
		MERGE (a)-[:%[2]s]->(b)
	`, core.NodeTypeCallable, core.RelationCalls)

	createKeywordsQuery = fmt.Sprintf(`
		UNWIND $keywords AS keyword
		MATCH (c:%s {key: keyword.callable})
		CREATE (c)-[:%s]->(k:%s)
		SET k = keyword.props
	`, core.NodeTypeCallable, core.RelationAccepts, core.NodeTypeKeyword)

	summaryQuery = fmt.Sprintf(`
		OPTIONAL MATCH (f:%s {path: $path})-[:%s]->(c:%s)
		OPTIONAL MATCH (c)-[:%s]->(k:%s)
		OPTIONAL MATCH (c)-[call:%s]->()
		RETURN count(DISTINCT c) AS callables, count(DISTINCT k) AS keywords, count(DISTINCT call) AS calls
	`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable,
		core.RelationAccepts, core.NodeTypeKeyword, core.RelationCalls)
)

// Keyword kinds as stored on Keyword nodes
const (
	KeywordOption     = "option"
	KeywordOneValue   = "one_value"
	KeywordMultiValue = "multi_value"
)

// IndexParams are the Cypher parameters for one stored index
type IndexParams struct {
	File      map[string]any
	Callables []map[string]any
	Calls     []map[string]any
	Keywords  []map[string]any
}

// callableKey identifies one definition across stored files. A file may
// define the same name more than once, so the line is part of the key.
func callableKey(path, name string, line int) string {
	return fmt.Sprintf("%s::%s::%d", path, name, line)
}

// BuildIndexParams flattens idx into node and relationship parameters
func BuildIndexParams(idx cmakedoc.Index, storedAt time.Time) IndexParams {
	params := IndexParams{
		File: map[string]any{
			"id":        core.NewID().String(),
			"path":      idx.Source,
			"stored_at": storedAt.UTC(),
		},
		Callables: make([]map[string]any, 0, len(idx.Callables)),
	}

	// CMake names are case-insensitive and the last definition wins
	defined := make(map[string]string, len(idx.Callables))
	for _, c := range idx.Callables {
		defined[strings.ToLower(c.Name)] = callableKey(idx.Source, c.Name, c.Line)
	}

	for _, c := range idx.Callables {
		key := callableKey(idx.Source, c.Name, c.Line)
		args := c.Args
		if args == nil {
			args = []string{}
		}
		params.Callables = append(params.Callables, map[string]any{
			"key":    key,
			"name":   c.Name,
			"kind":   string(c.Kind),
			"line":   int64(c.Line),
			"doc":    c.Doc,
			"args":   args,
			"public": c.Public(),
		})

		for _, callee := range c.Calls {
			to, ok := defined[strings.ToLower(callee)]
			if !ok {
				continue
			}
			params.Calls = append(params.Calls, map[string]any{
				"from": key,
				"to":   to,
			})
		}

		for _, spec := range c.Specs {
			params.Keywords = append(params.Keywords, keywordParams(key, spec)...)
		}
	}
	return params
}

func keywordParams(callable string, spec cmakedoc.ParseArgsSpec) []map[string]any {
	required := make(map[string]bool)
	for _, group := range [][]string{spec.RequiredOptions, spec.RequiredOneValueArgs, spec.RequiredMultiValueArgs} {
		for _, k := range group {
			required[k] = true
		}
	}

	var out []map[string]any
	add := func(kind string, names []string) {
		for _, name := range names {
			out = append(out, map[string]any{
				"callable": callable,
				"props": map[string]any{
					"name":     name,
					"prefix":   spec.Prefix,
					"kind":     kind,
					"required": required[name],
				},
			})
		}
	}
	add(KeywordOption, spec.Options)
	add(KeywordOneValue, spec.OneValueArgs)
	add(KeywordMultiValue, spec.MultiValueArgs)
	return out
}
