package plans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for unknown plan ids.
var ErrNotFound = errors.New("plan not found")

// Plan is one subscription tier.
type Plan struct {
	ID          int              `yaml:"id"`
	Name        string           `yaml:"name"`
	Image       string           `yaml:"image,omitempty"`
	Limits      map[string]int64 `yaml:"limits,omitempty"`
	Permissions []string         `yaml:"permissions,omitempty"`
}

// Registry looks plans up by id.
type Registry interface {
	PlanByID(ctx context.Context, id int) (*Plan, error)
}

// StaticRegistry is an in-memory Registry.
type StaticRegistry struct {
	plans map[int]Plan
}

type planFile struct {
	Plans []Plan `yaml:"plans"`
}

// NewStaticRegistry validates plans and indexes them by id.
func NewStaticRegistry(plans []Plan) (*StaticRegistry, error) {
	r := &StaticRegistry{plans: make(map[int]Plan, len(plans))}
	for _, p := range plans {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("plan %d: name is required", p.ID)
		}
		if _, dup := r.plans[p.ID]; dup {
			return nil, fmt.Errorf("plan %d: duplicate id", p.ID)
		}
		for name, v := range p.Limits {
			if v < 0 {
				return nil, fmt.Errorf("plan %d: limit %q must be >= 0", p.ID, name)
			}
		}
		r.plans[p.ID] = clonePlan(p)
	}
	return r, nil
}

// Load reads a YAML document of the form `plans: [{id, name, ...}]`.
func Load(r io.Reader) (*StaticRegistry, error) {
	var f planFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	return NewStaticRegistry(f.Plans)
}

// LoadFile is Load for a path on disk.
func LoadFile(path string) (*StaticRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// PlanByID returns a copy of the plan so callers cannot mutate the registry.
func (r *StaticRegistry) PlanByID(_ context.Context, id int) (*Plan, error) {
	if r == nil {
		return nil, ErrNotFound
	}
	p, ok := r.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	out := clonePlan(p)
	return &out, nil
}

// IDs lists known plan ids in ascending order.
func (r *StaticRegistry) IDs() []int {
	if r == nil {
		return nil
	}
	ids := make([]int, 0, len(r.plans))
	for id := range r.plans {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func clonePlan(p Plan) Plan {
	out := p
	if p.Limits != nil {
		out.Limits = make(map[string]int64, len(p.Limits))
		for k, v := range p.Limits {
			out.Limits[k] = v
		}
	}
	if p.Permissions != nil {
		out.Permissions = append([]string(nil), p.Permissions...)
	}
	return out
}
