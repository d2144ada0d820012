package engine

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shaiso/Pathway/internal/domain"
)

// Context контекст для подстановки ответов в тексты шага.
//
// Доступ из шаблонов:
//   - {{ .Answers.name }}
//   - {{ .Steps.welcome.name }}
//   - {{ answer "name" }} (пустая строка, если ответа нет)
type Context struct {
	// Answers плоский набор ответов.
	Answers domain.Answers `json:"answers"`

	// Steps ответы по ключам шагов.
	Steps map[string]map[string]any `json:"steps"`
}

// NewContext создаёт контекст из ответов сессии.
func NewContext(flat domain.Answers, byStep map[string]map[string]any) *Context {
	if flat == nil {
		flat = make(domain.Answers)
	}
	if byStep == nil {
		byStep = make(map[string]map[string]any)
	}
	return &Context{Answers: flat, Steps: byStep}
}

// templateFuncs дополнительные функции для шаблонов.
var templateFuncs = template.FuncMap{
	// default возвращает значение по умолчанию, если второй аргумент пустой
	"default": func(def, val any) any {
		if val == nil {
			return def
		}
		if s, ok := val.(string); ok && s == "" {
			return def
		}
		return val
	},

	// coalesce возвращает первое непустое значение
	"coalesce": func(values ...any) any {
		for _, v := range values {
			if v != nil {
				if s, ok := v.(string); ok && s == "" {
					continue
				}
				return v
			}
		}
		return nil
	},

	"join": func(sep string, items []any) string {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep)
	},

	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"trim":  strings.TrimSpace,
}

// Render подставляет ответы в строку.
//
//	Hi {{ answer "name" }}, how old is {{ .Answers.petName }}?
func Render(tmpl string, ctx *Context) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	funcs := template.FuncMap{
		"answer": func(name string) any {
			if v, ok := ctx.Answers[name]; ok && v != nil {
				return v
			}
			return ""
		},
	}

	t, err := template.New("").Funcs(templateFuncs).Funcs(funcs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}

// RenderStep возвращает копию шага с подставленными ответами в заголовке,
// описании, подписях полей и вариантов. Условия и переходы не затрагиваются.
func RenderStep(step *domain.Step, ctx *Context) (domain.Step, error) {
	out := *step
	var err error

	if out.Title, err = Render(step.Title, ctx); err != nil {
		return domain.Step{}, fmt.Errorf("title: %w", err)
	}
	if out.Description, err = Render(step.Description, ctx); err != nil {
		return domain.Step{}, fmt.Errorf("description: %w", err)
	}

	out.Fields = make([]domain.Field, len(step.Fields))
	for i, f := range step.Fields {
		if f.Label, err = Render(f.Label, ctx); err != nil {
			return domain.Step{}, fmt.Errorf("field %s label: %w", f.Name, err)
		}
		if f.HelpText, err = Render(f.HelpText, ctx); err != nil {
			return domain.Step{}, fmt.Errorf("field %s help text: %w", f.Name, err)
		}
		if len(f.Options) > 0 {
			opts := make([]domain.Option, len(f.Options))
			for j, o := range f.Options {
				if o.Label, err = Render(o.Label, ctx); err != nil {
					return domain.Step{}, fmt.Errorf("field %s option %s: %w", f.Name, o.Value, err)
				}
				opts[j] = o
			}
			f.Options = opts
		}
		out.Fields[i] = f
	}

	return out, nil
}

// CheckTemplates проверяет, что все тексты шага разбираются как шаблоны.
func CheckTemplates(step *domain.Step) error {
	_, err := RenderStep(step, NewContext(nil, nil))
	return err
}
