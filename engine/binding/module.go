// Package binding exposes Math and StringUtils as a foreign-callable module.
//
// A Module is a registry of classes and methods with declared signatures.
// Arguments arrive untyped (as decoded from JSON, CLI flags or an MCP
// request) and are checked at the boundary before the pure functions in
// mathutil and strutil run.
package binding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/compozy/testproject/engine/core"
	"github.com/compozy/testproject/engine/mathutil"
	"github.com/compozy/testproject/engine/strutil"
)

// DefaultModuleName is the name the module is registered under
const DefaultModuleName = "test_project_bindings"

// Style selects how methods are reached from the foreign side
type Style string

const (
	// StyleInstance requires constructing an object before calling methods
	StyleInstance Style = "instance"
	// StyleStatic allows calling methods on the class directly
	StyleStatic Style = "static"
)

// ParseStyle converts a configuration string into a Style
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleInstance:
		return StyleInstance, nil
	case StyleStatic, "":
		return StyleStatic, nil
	default:
		return "", core.Errorf(core.ErrorCodeInvalidArgument, map[string]any{"style": s},
			"unknown binding style %q (want %q or %q)", s, StyleInstance, StyleStatic)
	}
}

// Kind is the type of a parameter or result
type Kind string

const (
	KindNumber Kind = "number"
	KindString Kind = "string"
)

// Method describes one callable member of a class
type Method struct {
	Name   string `json:"name"`
	Params []Kind `json:"params"`
	Result Kind   `json:"result"`
	Doc    string `json:"doc,omitempty"`

	fn func(args []any) any
}

// Signature renders the method as name(kind, kind) -> kind
func (m *Method) Signature() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = string(p)
	}
	return fmt.Sprintf("%s(%s) -> %s", m.Name, strings.Join(params, ", "), m.Result)
}

// Class groups methods under a foreign class name
type Class struct {
	Name    string             `json:"name"`
	Methods map[string]*Method `json:"methods"`
}

// MethodNames returns the method names in sorted order
func (c *Class) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for name := range c.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Module is the foreign-callable surface
type Module struct {
	name    string
	style   Style
	classes map[string]*Class
}

// Option configures a Module
type Option func(*Module)

// WithName overrides the module name
func WithName(name string) Option {
	return func(m *Module) {
		if name != "" {
			m.name = name
		}
	}
}

// WithStyle selects the invocation style
func WithStyle(style Style) Option {
	return func(m *Module) {
		if style != "" {
			m.style = style
		}
	}
}

// NewModule builds the module with the Math and StringUtils classes registered
func NewModule(opts ...Option) *Module {
	m := &Module{
		name:    DefaultModuleName,
		style:   StyleStatic,
		classes: make(map[string]*Class),
	}
	for _, opt := range opts {
		opt(m)
	}

	var mth mathutil.Math
	m.register("Math",
		&Method{Name: "add", Params: []Kind{KindNumber, KindNumber}, Result: KindNumber,
			Doc: "Return a + b.",
			fn:  func(a []any) any { return mth.Add(a[0].(float64), a[1].(float64)) }},
		&Method{Name: "multiply", Params: []Kind{KindNumber, KindNumber}, Result: KindNumber,
			Doc: "Return a * b.",
			fn:  func(a []any) any { return mth.Multiply(a[0].(float64), a[1].(float64)) }},
	)

	var su strutil.StringUtils
	m.register("StringUtils",
		&Method{Name: "to_upper", Params: []Kind{KindString}, Result: KindString,
			Doc: "Return s with ASCII letters upper-cased.",
			fn:  func(a []any) any { return su.ToUpper(a[0].(string)) }},
		&Method{Name: "reverse", Params: []Kind{KindString}, Result: KindString,
			Doc: "Return s with its bytes reversed.",
			fn:  func(a []any) any { return su.Reverse(a[0].(string)) }},
		&Method{Name: "brackets", Params: []Kind{KindString}, Result: KindString,
			Doc: "Return s wrapped in square brackets.",
			fn:  func(a []any) any { return su.Brackets(a[0].(string)) }},
	)
	return m
}

func (m *Module) register(class string, methods ...*Method) {
	c := &Class{Name: class, Methods: make(map[string]*Method, len(methods))}
	for _, meth := range methods {
		c.Methods[meth.Name] = meth
	}
	m.classes[class] = c
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Style returns the invocation style
func (m *Module) Style() Style { return m.style }

// Class looks up a class by name
func (m *Module) Class(name string) (*Class, error) {
	c, ok := m.classes[name]
	if !ok {
		return nil, core.Errorf(core.ErrorCodeUnknownSymbol, map[string]any{"module": m.name},
			"module %s has no class %q", m.name, name)
	}
	return c, nil
}

// Lookup resolves class.method
func (m *Module) Lookup(class, method string) (*Method, error) {
	c, err := m.Class(class)
	if err != nil {
		return nil, err
	}
	meth, ok := c.Methods[method]
	if !ok {
		return nil, core.Errorf(core.ErrorCodeUnknownSymbol, map[string]any{"class": class},
			"class %s has no method %q", class, method)
	}
	return meth, nil
}

// Call invokes class.method directly. It is only valid for static-style modules.
func (m *Module) Call(class, method string, args ...any) (any, error) {
	if m.style != StyleStatic {
		return nil, core.Errorf(core.ErrorCodeInvalidArgument, map[string]any{"style": m.style},
			"%s.%s is an instance method; construct %s first", class, method, class)
	}
	return m.invoke(class, method, args)
}

// New constructs an instance of class. It is only valid for instance-style modules.
func (m *Module) New(class string) (*Object, error) {
	if m.style != StyleInstance {
		return nil, core.Errorf(core.ErrorCodeInvalidArgument, map[string]any{"style": m.style},
			"module %s exposes static methods; call %s methods directly", m.name, class)
	}
	c, err := m.Class(class)
	if err != nil {
		return nil, err
	}
	return &Object{module: m, class: c}, nil
}

// Invoke dispatches class.method using whichever style the module was built with
func (m *Module) Invoke(class, method string, args ...any) (any, error) {
	if m.style == StyleStatic {
		return m.Call(class, method, args...)
	}
	obj, err := m.New(class)
	if err != nil {
		return nil, err
	}
	return obj.Call(method, args...)
}

func (m *Module) invoke(class, method string, args []any) (any, error) {
	meth, err := m.Lookup(class, method)
	if err != nil {
		return nil, err
	}
	converted, err := checkArgs(class, meth, args)
	if err != nil {
		return nil, err
	}
	return meth.fn(converted), nil
}

// Object is an instance of a bound class
type Object struct {
	module *Module
	class  *Class
}

// Class returns the object's class name
func (o *Object) Class() string { return o.class.Name }

// Call invokes a method on the object
func (o *Object) Call(method string, args ...any) (any, error) {
	return o.module.invoke(o.class.Name, method, args)
}

// Describe lists every class and method signature, e.g. "Math.add(number, number) -> number"
func (m *Module) Describe() []string {
	classNames := make([]string, 0, len(m.classes))
	for name := range m.classes {
		classNames = append(classNames, name)
	}
	sort.Strings(classNames)

	var out []string
	for _, cn := range classNames {
		c := m.classes[cn]
		for _, mn := range c.MethodNames() {
			out = append(out, cn+"."+c.Methods[mn].Signature())
		}
	}
	return out
}

// SplitSymbol splits "Class.method" into its parts
func SplitSymbol(symbol string) (class, method string, err error) {
	class, method, ok := strings.Cut(symbol, ".")
	if !ok || class == "" || method == "" {
		return "", "", core.Errorf(core.ErrorCodeInvalidArgument, map[string]any{"symbol": symbol},
			"symbol %q must have the form Class.method", symbol)
	}
	return class, method, nil
}
