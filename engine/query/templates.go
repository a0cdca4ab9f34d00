package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/compozy/testproject/engine/core"
)

// Template represents a query template with parameters
type Template struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Query       string            `json:"query"`
	Parameters  map[string]string `json:"parameters"`
	Category    string            `json:"category"`
}

const pathParam = "string - Path of the CMake file as it was stored"

// CommonTemplates contains queries over stored CMake indexes
var CommonTemplates = map[string]*Template{
	"stored_files": {
		Name:        "Stored Files",
		Description: "List every stored CMake file with its callable count",
		Category:    "overview",
		Query: fmt.Sprintf(`MATCH (f:%s)
		OPTIONAL MATCH (f)-[:%s]->(c:%s)
		RETURN f.path AS path, toString(f.stored_at) AS stored_at, count(c) AS callables
		ORDER BY path`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable),
		Parameters: map[string]string{},
	},
	"file_callables": {
		Name:        "File Callables",
		Description: "List the functions and macros of a file in definition order",
		Category:    "callables",
		Query: fmt.Sprintf(`MATCH (:%s {path: $path})-[:%s]->(c:%s)
		RETURN c.name AS name, c.kind AS kind, c.line AS line, c.public AS public, c.args AS args
		ORDER BY line`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable),
		Parameters: map[string]string{"path": pathParam},
	},
	"undocumented_callables": {
		Name:        "Undocumented Callables",
		Description: "Public callables of a file without a doc block",
		Category:    "callables",
		Query: fmt.Sprintf(`MATCH (:%s {path: $path})-[:%s]->(c:%s)
		WHERE c.public AND c.doc = ''
		RETURN c.name AS name, c.line AS line
		ORDER BY line`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable),
		Parameters: map[string]string{"path": pathParam},
	},
	"required_keywords": {
		Name:        "Required Keywords",
		Description: "Keywords that callables of a file check as defined",
		Category:    "keywords",
		Query: fmt.Sprintf(`MATCH (:%s {path: $path})-[:%s]->(c:%s)-[:%s]->(k:%s)
		WHERE k.required
		RETURN c.name AS callable, k.name AS keyword, k.kind AS kind
		ORDER BY callable, keyword`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable,
			core.RelationAccepts, core.NodeTypeKeyword),
		Parameters: map[string]string{"path": pathParam},
	},
	"keyword_usage": {
		Name:        "Keyword Usage",
		Description: "Find every stored callable accepting a keyword",
		Category:    "keywords",
		Query: fmt.Sprintf(`MATCH (f:%s)-[:%s]->(c:%s)-[:%s]->(k:%s)
		WHERE toUpper(k.name) = toUpper($keyword)
		RETURN f.path AS path, c.name AS callable, k.kind AS kind, k.required AS required
		ORDER BY path, callable`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable,
			core.RelationAccepts, core.NodeTypeKeyword),
		Parameters: map[string]string{"keyword": "string - Keyword name, case-insensitive"},
	},
	"callers": {
		Name:        "Callers",
		Description: "Callables of a file that invoke the named callable",
		Category:    "calls",
		Query: fmt.Sprintf(`MATCH (:%[1]s {path: $path})-[:%[2]s]->(caller:%[3]s)-[:%[4]s]->(callee:%[3]s)
		WHERE toLower(callee.name) = toLower($name)
		RETURN caller.name AS caller, caller.line AS line
		ORDER BY line`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable, core.RelationCalls),
		Parameters: map[string]string{
			"path": pathParam,
			"name": "string - Name of the called function or macro",
		},
	},
	"uncalled_private": {
		Name:        "Uncalled Private Callables",
		Description: "Private callables no other callable of the file invokes",
		Category:    "calls",
		Query: fmt.Sprintf(`MATCH (:%[1]s {path: $path})-[:%[2]s]->(c:%[3]s)
		WHERE NOT c.public AND NOT ()-[:%[4]s]->(c)
		RETURN c.name AS name, c.line AS line
		ORDER BY line`, core.NodeTypeFile, core.RelationDefines, core.NodeTypeCallable, core.RelationCalls),
		Parameters: map[string]string{"path": pathParam},
	},
}

// GetTemplate retrieves a template by key
func GetTemplate(name string) (*Template, error) {
	template, exists := CommonTemplates[name]
	if !exists {
		return nil, core.Errorf(core.ErrorCodeInvalidInput, map[string]any{"template": name},
			"template '%s' not found", name)
	}
	return template, nil
}

// TemplateNames returns the template keys in sorted order
func TemplateNames() []string {
	names := make([]string, 0, len(CommonTemplates))
	for name := range CommonTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListTemplates returns all available templates grouped by category
func ListTemplates() map[string][]*Template {
	categories := make(map[string][]*Template)
	for _, name := range TemplateNames() {
		template := CommonTemplates[name]
		categories[template.Category] = append(categories[template.Category], template)
	}
	return categories
}

// ValidateParameters checks if all required parameters are provided
func (t *Template) ValidateParameters(params map[string]any) error {
	var missing []string
	for paramName := range t.Parameters {
		if _, exists := params[paramName]; !exists {
			missing = append(missing, paramName)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return core.Errorf(core.ErrorCodeInvalidInput, map[string]any{"missing": missing},
			"missing required parameter: %s", strings.Join(missing, ", "))
	}
	return nil
}

// BuildQuery validates params and returns the query with only the declared
// parameters. Substitution happens in the driver.
func (t *Template) BuildQuery(params map[string]any) (string, map[string]any, error) {
	if err := t.ValidateParameters(params); err != nil {
		return "", nil, err
	}
	bound := make(map[string]any, len(t.Parameters))
	for name := range t.Parameters {
		bound[name] = params[name]
	}
	return t.Query, bound, nil
}

// GetParameterHelp returns help text for template parameters
func (t *Template) GetParameterHelp() string {
	if len(t.Parameters) == 0 {
		return "No parameters required"
	}
	names := make([]string, 0, len(t.Parameters))
	for name := range t.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	var help strings.Builder
	help.WriteString("Required parameters:\n")
	for _, name := range names {
		help.WriteString(fmt.Sprintf("  %s: %s\n", name, t.Parameters[name]))
	}
	return help.String()
}

// ParseParams turns key=value pairs into query parameters
func ParseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, core.Errorf(core.ErrorCodeInvalidInput, map[string]any{"param": pair},
				"parameter %q must have the form key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
