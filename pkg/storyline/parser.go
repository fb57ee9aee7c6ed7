package storyline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/questline/internal/dto"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when the document itself cannot be read as a storyline.
var ErrInvalidDocument = errors.New("invalid storyline document")

// Option configures the parser.
type Option func(*parser)

// WithLogger sets the logger that receives authoring warnings.
func WithLogger(l *slog.Logger) Option {
	return func(p *parser) {
		p.logger = l
	}
}

// RequireTarget rejects steps that declare neither npcId nor locationId,
// as the first generation of the storyline schema did.
func RequireTarget() Option {
	return func(p *parser) {
		p.requireTarget = true
	}
}

type parser struct {
	logger        *slog.Logger
	requireTarget bool
	diags         []domain.Diagnostic
}

// Parse decodes a JSON storyline document.
func Parse(data []byte, opts ...Option) (*domain.Storyline, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return Build(doc, opts...)
}

// ParseYAML decodes a YAML storyline document.
func ParseYAML(data []byte, opts ...Option) (*domain.Storyline, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if raw == nil {
		return Build(nil, opts...)
	}
	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidDocument)
	}
	return Build(doc, opts...)
}

// Load reads a storyline from disk. ".yaml" and ".yml" files are YAML, anything else JSON.
func Load(path string, opts ...Option) (*domain.Storyline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storyline: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, opts...)
	default:
		return Parse(data, opts...)
	}
}

// Build turns a generic document into a storyline.
// Missing or malformed fragments are replaced by defaults and reported as diagnostics;
// only a non-object "missions" entry or a strict-mode violation is an error.
func Build(doc map[string]any, opts ...Option) (*domain.Storyline, error) {
	p := &parser{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}

	sl := domain.NewStoryline()
	raw, ok := doc["missions"]
	if !ok || raw == nil {
		p.warn("missions", "document has no missions")
		sl.Diagnostics = p.diags
		return sl, nil
	}
	missions, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missions must be an object, got %T", ErrInvalidDocument, raw)
	}

	for _, id := range sortedKeys(missions) {
		m, err := p.mission(id, missions[id])
		if err != nil {
			return nil, err
		}
		sl.AddMission(m)
	}

	sl.Diagnostics = p.diags
	p.logger.Debug("storyline parsed", "missions", len(sl.Missions), "diagnostics", len(p.diags))
	return sl, nil
}

func (p *parser) mission(id string, raw any) (*domain.Mission, error) {
	path := "missions." + id

	var doc dto.MissionDoc
	if err := decode(raw, &doc); err != nil {
		p.warn(path, "malformed mission, using defaults: %v", err)
		doc = dto.MissionDoc{}
		if m, ok := raw.(map[string]any); ok {
			doc.Steps, _ = m["steps"].(map[string]any)
		}
	}

	if doc.Title == "" {
		doc.Title = domain.DefaultMissionTitle
		p.logger.Debug("mission has no title", "path", path)
	}
	if doc.Description == "" {
		doc.Description = domain.DefaultMissionDescription
	}
	if doc.FirstStep == "" {
		doc.FirstStep = domain.DefaultFirstStep
	}

	m := domain.NewMission(id, doc.Title, doc.Description, doc.FirstStep, p.dependencies(path+".depend", doc.Depend))

	for _, stepID := range sortedKeys(doc.Steps) {
		step, err := p.step(path+".steps."+stepID, stepID, doc.Steps[stepID])
		if err != nil {
			return nil, err
		}
		m.AddStep(step)
	}

	if _, ok := m.Step(m.FirstStep); !ok {
		p.warn(path+".firstStep", "first step %q is not defined", m.FirstStep)
	}
	for _, stepID := range m.StepIDs() {
		step := m.Steps[stepID]
		stepPath := path + ".steps." + stepID
		if step.NextStep != "" {
			if _, ok := m.Step(step.NextStep); !ok {
				p.warn(stepPath+".nextStep", "next step %q is not defined", step.NextStep)
			}
		}
		for i, item := range step.Dialog.Items {
			if next := item.Base().NextStep; next != "" {
				if _, ok := m.Step(next); !ok {
					p.warn(fmt.Sprintf("%s.dialog[%d].nextStep", stepPath, i), "next step %q is not defined", next)
				}
			}
		}
	}
	return m, nil
}

func (p *parser) dependencies(path string, raw []any) []domain.Dependency {
	var deps []domain.Dependency
	for i, entry := range raw {
		entryPath := fmt.Sprintf("%s[%d]", path, i)
		switch v := entry.(type) {
		case string:
			if v == "" {
				p.warn(entryPath, "empty dependency dropped")
				continue
			}
			deps = append(deps, domain.Requires(v))
		case map[string]any:
			var doc dto.DependencyDoc
			if err := decode(v, &doc); err != nil || doc.StoreKey == "" {
				p.warn(entryPath, "dependency without storeKey dropped")
				continue
			}
			if doc.Value == nil {
				deps = append(deps, domain.Requires(doc.StoreKey))
				continue
			}
			deps = append(deps, domain.RequiresValue(doc.StoreKey, *doc.Value))
		default:
			p.warn(entryPath, "dependency of type %T dropped", entry)
		}
	}
	return deps
}

func (p *parser) step(path, id string, raw any) (*domain.MissionStep, error) {
	var doc dto.StepDoc
	if err := decode(raw, &doc); err != nil {
		p.warn(path, "malformed step, using defaults: %v", err)
		doc = dto.StepDoc{}
		if m, ok := raw.(map[string]any); ok {
			doc.Dialog, _ = m["dialog"].([]any)
		}
	}

	if doc.Title == "" {
		doc.Title = domain.DefaultStepTitle
	}
	if doc.Description == "" {
		doc.Description = domain.DefaultMissionDescription
	}

	if doc.NPCID == "" && doc.LocationID == "" && p.requireTarget {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingTarget, path)
	}
	if doc.NPCID != "" && doc.LocationID != "" {
		p.warn(path, "both npcId and locationId are set, locationId %q is ignored", doc.LocationID)
	}

	step := &domain.MissionStep{
		ID:          id,
		Title:       doc.Title,
		Description: doc.Description,
		NextStep:    doc.NextStep,
		NPCID:       doc.NPCID,
		LocationID:  doc.LocationID,
		MoveTo:      doc.MoveTo,
		Dialog:      domain.NewDialog(domain.StepRef{StepID: id}),
	}

	for i, item := range doc.Dialog {
		step.Dialog.Add(p.item(fmt.Sprintf("%s.dialog[%d]", path, i), item))
	}
	if step.Dialog.Len() == 0 {
		p.warn(path+".dialog", "step has an empty dialog")
	}
	p.resolveJumps(path, step.Dialog)
	return step, nil
}

// resolveJumps rewrites nextLine targets that point nowhere to EndOfDialog.
func (p *parser) resolveJumps(path string, d *domain.Dialog) {
	valid := func(target string) bool {
		if target == "" || target == domain.EndOfDialog {
			return true
		}
		_, ok := d.IndexOf(target)
		return ok
	}

	for i, item := range d.Items {
		base := item.Base()
		if !valid(base.NextLine) {
			p.warn(fmt.Sprintf("%s.dialog[%d].nextLine", path, i), "unknown jump target %q, dialog ends here", base.NextLine)
			base.NextLine = domain.EndOfDialog
		}
		sel, ok := item.(*domain.Select)
		if !ok {
			continue
		}
		for j := range sel.Choices {
			if !valid(sel.Choices[j].NextLine) {
				p.warn(fmt.Sprintf("%s.dialog[%d].choices[%d].nextLine", path, i, j), "unknown jump target %q, dialog ends here", sel.Choices[j].NextLine)
				sel.Choices[j].NextLine = domain.EndOfDialog
			}
		}
	}
}

func (p *parser) warn(path, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.diags = append(p.diags, domain.Diagnostic{Path: path, Message: msg})
	p.logger.Warn(msg, "path", path)
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// normalize converts the map[any]any mappings YAML produces for non-string keys.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
