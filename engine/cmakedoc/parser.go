package cmakedoc

import (
	"regexp"
	"strings"
)

// Kind is the CMake construct that defines a callable
type Kind string

const (
	KindFunction Kind = "function"
	KindMacro    Kind = "macro"
)

// ParseArgsSpec is one cmake_parse_arguments() call found in a callable body
type ParseArgsSpec struct {
	Prefix                 string   `json:"prefix" yaml:"prefix"`
	Options                []string `json:"options" yaml:"options"`
	OneValueArgs           []string `json:"one_value_args" yaml:"one_value_args"`
	MultiValueArgs         []string `json:"multi_value_args" yaml:"multi_value_args"`
	RequiredOptions        []string `json:"required_options,omitempty" yaml:"required_options,omitempty"`
	RequiredOneValueArgs   []string `json:"required_one_value_args,omitempty" yaml:"required_one_value_args,omitempty"`
	RequiredMultiValueArgs []string `json:"required_multi_value_args,omitempty" yaml:"required_multi_value_args,omitempty"`
}

// Empty reports whether the spec declares no keywords at all
func (s *ParseArgsSpec) Empty() bool {
	return len(s.Options) == 0 && len(s.OneValueArgs) == 0 && len(s.MultiValueArgs) == 0
}

// Callable is a function() or macro() definition
type Callable struct {
	Kind  Kind            `json:"kind" yaml:"kind"`
	Name  string          `json:"name" yaml:"name"`
	Args  []string        `json:"args" yaml:"args"`
	Doc   string          `json:"doc,omitempty" yaml:"doc,omitempty"`
	Line  int             `json:"line" yaml:"line"`
	Specs []ParseArgsSpec `json:"specs,omitempty" yaml:"specs,omitempty"`
	Calls []string        `json:"calls,omitempty" yaml:"calls,omitempty"`

	start int
	end   int
}

// Public reports whether the callable belongs in generated docs.
// Names starting with '_' are internal helpers.
func (c *Callable) Public() bool {
	return !strings.HasPrefix(c.Name, "_")
}

// Parse lexes src and extracts every callable with its doc block,
// cmake_parse_arguments specs and calls to sibling callables.
func Parse(src string) ([]*Callable, error) {
	nodes, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return Extract(nodes), nil
}

// Extract builds callables from an already lexed node list
func Extract(nodes []Node) []*Callable {
	type open struct {
		kind  Kind
		index int
	}
	var (
		callables []*Callable
		stack     []open
	)

	for i := range nodes {
		n := &nodes[i]
		if n.Kind != NodeCommand {
			continue
		}
		switch ident := strings.ToLower(n.Identifier); ident {
		case "function", "macro":
			if len(n.Args) == 0 {
				continue
			}
			c := &Callable{
				Kind:  Kind(ident),
				Name:  n.Args[0].Value,
				Args:  argValues(n.Args[1:]),
				Doc:   extractDoc(nodes, i),
				Line:  max(n.Line, 1),
				start: i,
				end:   len(nodes),
			}
			callables = append(callables, c)
			stack = append(stack, open{kind: c.Kind, index: len(callables) - 1})
		case "endfunction", "endmacro":
			kind := KindFunction
			if ident == "endmacro" {
				kind = KindMacro
			}
			// Unmatched openers are dropped so malformed files still parse.
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == kind {
					callables[top.index].end = i
					break
				}
			}
		}
	}

	names := make(map[string]string, len(callables))
	for _, c := range callables {
		key := strings.ToLower(c.Name)
		if _, ok := names[key]; !ok {
			names[key] = c.Name
		}
	}
	for _, c := range callables {
		c.Specs = extractSpecs(nodes, c.start, c.end)
		c.Calls = extractCalls(nodes, c, names)
	}
	return callables
}

func argValues(args []Arg) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Value
	}
	return out
}

// extractDoc collects the comment lines directly above nodes[index].
// A blank line or a trailing comment on a code line ends the block.
func extractDoc(nodes []Node, index int) string {
	var blocks [][]string
	expect := nodes[index].Line - 1
	for i := index - 1; i >= 0; i-- {
		n := &nodes[i]
		if n.Kind != NodeComment || !n.OwnLine || n.EndLine != expect {
			break
		}
		blocks = append(blocks, commentLines(n))
		expect = n.Line - 1
	}

	var lines []string
	for i := len(blocks) - 1; i >= 0; i-- {
		lines = append(lines, blocks[i]...)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n")
}

func commentLines(n *Node) []string {
	if !n.Bracketed {
		return []string{cleanCommentLine(strings.TrimLeft(n.Text, "#"))}
	}
	raw := strings.Split(n.Text, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = cleanCommentLine(l)
	}
	return out
}

func cleanCommentLine(l string) string {
	l = strings.TrimRight(l, " \t\r")
	return strings.TrimPrefix(l, " ")
}

var varRefRe = regexp.MustCompile(`^\$\{([^}]+)\}$`)

func stripQuotes(v string) string {
	if len(v) >= 2 && ((v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'')) {
		return v[1 : len(v)-1]
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ";") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveList turns a cmake_parse_arguments list argument into keywords:
// "" is empty, ${VAR} looks up a prior set(), anything else splits on ';'.
func resolveList(token string, setValues map[string][]string) []string {
	token = stripQuotes(strings.TrimSpace(token))
	if token == "" {
		return nil
	}
	if m := varRefRe.FindStringSubmatch(token); m != nil {
		return setValues[m[1]]
	}
	return splitList(token)
}

func extractSpecs(nodes []Node, start, end int) []ParseArgsSpec {
	setValues := make(map[string][]string)
	required := make(map[string]bool)
	var specs []ParseArgsSpec

	for i := start + 1; i < end && i < len(nodes); i++ {
		n := &nodes[i]
		if n.Kind != NodeCommand {
			continue
		}
		ident := strings.ToLower(n.Identifier)
		switch {
		case strings.HasSuffix(ident, "check_var_defined") && len(n.Args) > 0:
			required[stripQuotes(n.Args[0].Value)] = true
		case ident == "set" && len(n.Args) > 0:
			var values []string
			for _, a := range n.Args[1:] {
				values = append(values, splitList(stripQuotes(a.Value))...)
			}
			setValues[n.Args[0].Value] = values
		case ident == "cmake_parse_arguments":
			args := n.Values()
			if len(args) > 0 && args[0] == "PARSE_ARGV" {
				if len(args) < 2 {
					continue
				}
				args = args[2:]
			}
			if len(args) < 4 {
				continue
			}
			spec := ParseArgsSpec{
				Prefix:         stripQuotes(strings.TrimSpace(args[0])),
				Options:        resolveList(args[1], setValues),
				OneValueArgs:   resolveList(args[2], setValues),
				MultiValueArgs: resolveList(args[3], setValues),
			}
			specs = append(specs, spec)
		}
	}

	// Checks usually follow the parse call, so requirements are resolved
	// against the whole body.
	for i := range specs {
		s := &specs[i]
		s.RequiredOptions = filterRequired(s.Prefix, s.Options, required)
		s.RequiredOneValueArgs = filterRequired(s.Prefix, s.OneValueArgs, required)
		s.RequiredMultiValueArgs = filterRequired(s.Prefix, s.MultiValueArgs, required)
	}
	return specs
}

func filterRequired(prefix string, keys []string, required map[string]bool) []string {
	var out []string
	for _, k := range keys {
		if required[prefix+"_"+k] {
			out = append(out, k)
		}
	}
	return out
}

func extractCalls(nodes []Node, c *Callable, names map[string]string) []string {
	self := strings.ToLower(c.Name)
	seen := make(map[string]bool)
	var calls []string
	for i := c.start + 1; i < c.end && i < len(nodes); i++ {
		n := &nodes[i]
		if n.Kind != NodeCommand {
			continue
		}
		key := strings.ToLower(n.Identifier)
		name, ok := names[key]
		if !ok || key == self || seen[key] {
			continue
		}
		seen[key] = true
		calls = append(calls, name)
	}
	return calls
}
