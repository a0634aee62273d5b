package notifications

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

//go:embed templates.yaml
var defaultTemplates []byte

type templateFile struct {
	Templates map[string]struct {
		Subject string `yaml:"subject"`
		Body    string `yaml:"body"`
	} `yaml:"templates"`
}

type compiled struct {
	subject *template.Template
	body    *template.Template
}

// Catalogue скомпилированные шаблоны уведомлений
type Catalogue struct {
	templates map[domain.TemplateKind]compiled
}

// DefaultCatalogue встроенный каталог
func DefaultCatalogue() (*Catalogue, error) {
	return LoadCatalogue(defaultTemplates)
}

// LoadCatalogue разбирает YAML и компилирует шаблоны.
// Отсутствующий ключ payload при рендеринге считается ошибкой.
func LoadCatalogue(data []byte) (*Catalogue, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalogue, err)
	}

	c := &Catalogue{templates: make(map[domain.TemplateKind]compiled, len(file.Templates))}
	for name, t := range file.Templates {
		subject, err := template.New(name + ".subject").Option("missingkey=error").Parse(t.Subject)
		if err != nil {
			return nil, fmt.Errorf("%w: %s subject: %v", ErrInvalidCatalogue, name, err)
		}
		body, err := template.New(name + ".body").Option("missingkey=error").Parse(t.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s body: %v", ErrInvalidCatalogue, name, err)
		}
		c.templates[domain.TemplateKind(name)] = compiled{subject: subject, body: body}
	}

	return c, nil
}

// Has есть ли шаблон в каталоге
func (c *Catalogue) Has(kind domain.TemplateKind) bool {
	_, ok := c.templates[kind]
	return ok
}

// Render возвращает тему и текст уведомления
func (c *Catalogue) Render(kind domain.TemplateKind, payload map[string]string) (string, string, error) {
	t, ok := c.templates[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, kind)
	}

	var subject, body strings.Builder
	if err := t.subject.Execute(&subject, payload); err != nil {
		return "", "", fmt.Errorf("%w: %s subject: %v", ErrRender, kind, err)
	}
	if err := t.body.Execute(&body, payload); err != nil {
		return "", "", fmt.Errorf("%w: %s body: %v", ErrRender, kind, err)
	}
	return subject.String(), body.String(), nil
}
