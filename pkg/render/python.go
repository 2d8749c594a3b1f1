// Package render writes assembled pipelines out as framework option scripts or YAML job files.
package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
	"github.com/askiada/go-jobopts/pkg/units"
)

var ErrNotFinalized = errors.New("pipeline must be finalized before rendering")

type pyAssign struct {
	Target string
	Value  string
}

type pyObject struct {
	Var     string
	Type    string
	Name    string
	Assigns []pyAssign
}

type pyScript struct {
	Imports  []string
	Objects  []pyObject
	TopAlg   []string
	ExtSvc   []string
	EvtSel   string
	EvtMax   int
	LogLevel string
}

const pythonTmpl = `# generated by jobopts, do not edit
from Gaudi.Configuration import *
from GaudiKernel import SystemOfUnits as units

from Configurables import ApplicationMgr
{{- range .Imports }}
from Configurables import {{ . }}
{{- end }}
{{ range .Objects }}
{{ .Var }} = {{ .Type }}({{ quote .Name }})
{{- $var := .Var }}
{{- range .Assigns }}
{{ $var }}.{{ .Target }} = {{ .Value }}
{{- end }}
{{ end }}
ApplicationMgr(
    TopAlg=[{{ join .TopAlg ", " }}],
    EvtSel={{ quote .EvtSel }},
    EvtMax={{ .EvtMax }},
    ExtSvc=[{{ join .ExtSvc ", " }}],
    OutputLevel={{ .LogLevel }},
)
`

var pyTemplate = template.Must(template.New("python").Funcs(template.FuncMap{
	"quote": strconv.Quote,
	"join":  strings.Join,
}).Parse(pythonTmpl))

// Python writes p as an options script. Services are declared first, then every stage after the tools it uses.
func Python(w io.Writer, p *pipeline.Pipeline) error {
	if p == nil {
		return pipeline.ErrPipelineMustBeSet
	}

	if !p.Finalized() {
		return ErrNotFinalized
	}

	b := &pyBuilder{vars: map[*pipeline.Descriptor]string{}, taken: map[string]struct{}{}, types: map[string]struct{}{}}
	script := pyScript{EvtSel: p.EvtSel, EvtMax: p.EvtMax, LogLevel: p.OutputLevel.String()}

	for _, svc := range p.Services() {
		if svc.Descriptor == nil {
			script.ExtSvc = append(script.ExtSvc, strconv.Quote(svc.Name))

			continue
		}

		v, err := b.declare(svc.Descriptor, "")
		if err != nil {
			return err
		}

		script.ExtSvc = append(script.ExtSvc, v)
	}

	for _, stage := range p.Stages() {
		v, err := b.declare(stage, "")
		if err != nil {
			return err
		}

		script.TopAlg = append(script.TopAlg, v)
	}

	script.Objects = b.objects

	for t := range b.types {
		script.Imports = append(script.Imports, t)
	}

	sort.Strings(script.Imports)

	err := pyTemplate.Execute(w, script)
	if err != nil {
		return errors.Wrap(err, "unable to render options script")
	}

	return nil
}

type pyBuilder struct {
	objects []pyObject
	vars    map[*pipeline.Descriptor]string
	taken   map[string]struct{}
	types   map[string]struct{}
}

// declare emits the tools of d, then d itself, and returns the variable holding d.
func (b *pyBuilder) declare(d *pipeline.Descriptor, owner string) (string, error) {
	if v, ok := b.vars[d]; ok {
		return v, nil
	}

	v := b.variable(owner, d.Name())
	b.vars[d] = v
	b.types[d.Type()] = struct{}{}

	obj := pyObject{Var: v, Type: d.Type(), Name: d.Name()}

	for _, prop := range d.Properties() {
		if tool, ok := prop.Value.(*pipeline.Descriptor); ok {
			toolVar, err := b.declare(tool, v)
			if err != nil {
				return "", err
			}

			obj.Assigns = append(obj.Assigns, pyAssign{Target: prop.Name, Value: toolVar})

			continue
		}

		lit, err := pyLiteral(prop.Value)
		if err != nil {
			return "", errors.Wrapf(err, "%s.%s", d.Name(), prop.Name)
		}

		obj.Assigns = append(obj.Assigns, pyAssign{Target: prop.Name, Value: lit})
	}

	for _, h := range d.Handles() {
		obj.Assigns = append(obj.Assigns, pyAssign{Target: h.Name + ".Path", Value: strconv.Quote(h.Path)})
	}

	b.objects = append(b.objects, obj)

	return v, nil
}

// variable returns an unused python identifier derived from the instance name.
func (b *pyBuilder) variable(owner, name string) string {
	var sb strings.Builder

	if owner != "" {
		sb.WriteString(owner)
		sb.WriteByte('_')
	}

	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteByte('_')
		}
	}

	base := sb.String()
	if base == "" || unicode.IsDigit(rune(base[0])) || pyReserved[base] {
		base = "c_" + base
	}

	v := base
	for i := 2; ; i++ {
		if _, ok := b.taken[v]; !ok {
			break
		}

		v = base + "_" + strconv.Itoa(i)
	}

	b.taken[v] = struct{}{}

	return v
}

var pyReserved = map[string]bool{
	"and": true, "as": true, "class": true, "def": true, "del": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true, "not": true, "or": true,
	"pass": true, "return": true, "units": true, "with": true, "yield": true,
}

func pyLiteral(value interface{}) (string, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return "True", nil
		}

		return "False", nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return pyFloat(v), nil
	case string:
		return strconv.Quote(v), nil
	case []int:
		items := make([]string, len(v))
		for i, n := range v {
			items[i] = strconv.Itoa(n)
		}

		return "[" + strings.Join(items, ", ") + "]", nil
	case []string:
		items := make([]string, len(v))
		for i, s := range v {
			items[i] = strconv.Quote(s)
		}

		return "[" + strings.Join(items, ", ") + "]", nil
	case units.Quantity:
		return pyFloat(v.Value) + " * units." + v.Unit.Name, nil
	case model.OutputLevel:
		return v.String(), nil
	default:
		return "", errors.Wrapf(pipeline.ErrPropertyType, "cannot render %T", value)
	}
}

// pyFloat keeps a decimal point so python reads a float.
func pyFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEn") {
		return s
	}

	return fmt.Sprintf("%s.0", s)
}
