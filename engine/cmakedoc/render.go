package cmakedoc

import (
	"fmt"
	"sort"
	"strings"
)

const (
	paramPlaceholder   = "_Describe this parameter._"
	keywordPlaceholder = "_Describe this keyword._"
)

// Descriptions maps "callable/name" to a drafted description for a
// parameter or keyword. Missing entries render as placeholders.
type Descriptions map[string]string

// Key builds the lookup key for a callable's parameter or keyword
func (Descriptions) Key(callable, name string) string {
	return callable + "/" + name
}

func (d Descriptions) lookup(callable, name, placeholder string) string {
	if d != nil {
		if v := strings.TrimSpace(d[d.Key(callable, name)]); v != "" {
			return v
		}
	}
	return placeholder
}

// RenderOptions controls Markdown output
type RenderOptions struct {
	Title        string
	SourceName   string // file name used in "Generated from" and line links
	Descriptions Descriptions
}

func placeholder(name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "<>"
	case strings.EqualFold(name, "visibility"):
		return "<PRIVATE|PUBLIC|INTERFACE>"
	case strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">"):
		return name
	default:
		return "<" + name + ">"
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func addAll(set map[string]bool, keys []string) {
	for _, k := range keys {
		set[k] = true
	}
}

// Synopsis renders a CMake-docs style call synopsis, one line per entry
func Synopsis(c *Callable) []string {
	positional := make([]string, len(c.Args))
	for i, a := range c.Args {
		positional[i] = placeholder(a)
	}

	options, ones, multis := map[string]bool{}, map[string]bool{}, map[string]bool{}
	oneReq, multiReq := map[string]bool{}, map[string]bool{}
	for _, s := range c.Specs {
		addAll(options, s.Options)
		addAll(ones, s.OneValueArgs)
		addAll(multis, s.MultiValueArgs)
		addAll(oneReq, s.RequiredOneValueArgs)
		addAll(multiReq, s.RequiredMultiValueArgs)
	}

	var keywords []string
	for _, k := range sortedKeys(options) {
		keywords = append(keywords, "["+k+"]")
	}
	for _, k := range sortedKeys(ones) {
		core := k + " <value>"
		if !oneReq[k] {
			core = "[" + core + "]"
		}
		keywords = append(keywords, core)
	}
	for _, k := range sortedKeys(multis) {
		core := k + " <item>..."
		if !multiReq[k] {
			core = "[" + core + "]"
		}
		keywords = append(keywords, core)
	}

	switch {
	case len(positional) == 0 && len(keywords) == 0:
		return []string{c.Name + "()"}
	case len(keywords) == 0:
		return []string{c.Name + "(" + strings.Join(positional, " ") + ")"}
	}

	lines := []string{strings.TrimRight(c.Name+"("+strings.Join(positional, " "), " ")}
	for _, k := range keywords {
		lines = append(lines, "  "+k)
	}
	return append(lines, ")")
}

// Render produces the Markdown document for callables.
// Callables whose names start with '_' are left out.
func Render(callables []*Callable, opts RenderOptions) string {
	src := opts.SourceName
	slugs := newSlugger()

	type entry struct {
		c    *Callable
		slug string
	}
	var entries []entry
	anchors := make(map[string]string)
	for _, c := range callables {
		if !c.Public() {
			continue
		}
		e := entry{c: c, slug: slugs.unique(c.Name)}
		if _, ok := anchors[strings.ToLower(c.Name)]; !ok {
			anchors[strings.ToLower(c.Name)] = e.slug
		}
		entries = append(entries, e)
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		if len(args) == 0 {
			b.WriteString(format)
		} else {
			fmt.Fprintf(&b, format, args...)
		}
		b.WriteByte('\n')
	}

	line("# %s", opts.Title)
	line("")
	line("Generated from `%s`.", src)
	line("")

	if len(entries) > 0 {
		line("## Index")
		line("")
		for _, e := range entries {
			loc := fmt.Sprintf("[%s#L%d](%s#L%d)", src, e.c.Line, src, e.c.Line)
			line("- [%s](#%s) — `%s` — %s", e.c.Name, e.slug, e.c.Kind, loc)
		}
		line("")
	}

	for _, e := range entries {
		c := e.c
		line(`<a id="%s"></a>`, e.slug)
		line("# %s", c.Name)
		line("")
		line("```cpp")
		for _, l := range Synopsis(c) {
			line(l)
		}
		line("```")
		line("")
		line("**Type**: `%s`", c.Kind)
		line("")

		var calls []string
		for _, name := range c.Calls {
			if slug, ok := anchors[strings.ToLower(name)]; ok {
				calls = append(calls, fmt.Sprintf("[%s](#%s)", name, slug))
			}
		}
		if len(calls) > 0 {
			line("**Calls**: %s", strings.Join(calls, ", "))
			line("")
		}

		line("### Parameters")
		line("")
		if len(c.Args) == 0 {
			line("- _none_")
		}
		for _, p := range c.Args {
			line("- `%s`: %s", p, opts.Descriptions.lookup(c.Name, p, paramPlaceholder))
		}
		line("")

		if len(c.Specs) > 0 {
			line("### Keyword arguments")
			line("")
			for _, s := range c.Specs {
				line("Parsed from `cmake_parse_arguments(%s ...)`:", s.Prefix)
				line("")
				for _, k := range s.Options {
					line("- `%s` (option): %s", k, opts.Descriptions.lookup(c.Name, k, keywordPlaceholder))
				}
				for _, k := range s.OneValueArgs {
					line("- `%s` (one-value): %s", k, opts.Descriptions.lookup(c.Name, k, keywordPlaceholder))
				}
				for _, k := range s.MultiValueArgs {
					line("- `%s` (multi-value): %s", k, opts.Descriptions.lookup(c.Name, k, keywordPlaceholder))
				}
				if s.Empty() {
					line("- _none_")
				}
				line("")
			}
		}

		if strings.TrimSpace(c.Doc) != "" {
			line(strings.TrimRight(c.Doc, " \t\r\n"))
		} else {
			line("_No documentation available._")
		}
		line("")
	}

	if len(entries) == 0 {
		line("> No functions or macros found.")
		line("")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
