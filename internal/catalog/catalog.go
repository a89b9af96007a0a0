// Package catalog loads the static, read-only problem catalog.
//
// A catalog document has the shape
//
//	cp_problems:
//	  - id: two-sum
//	    name: Two Sum
//	    description: ...
//
// and may be written as YAML or JSON. Documents are checked against a CUE
// schema, ids must be unique, and ids and names are NFC-normalized so that
// visually identical ids compare equal.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/cptrack/internal/domain"
)

//go:embed problems.yaml
var defaultDocument []byte

// schema constrains a decoded catalog document.
const schema = `
#Problem: {
	id:          string & =~"\\S"
	name:        string & =~"\\S"
	description: string
}

#Catalog: {
	cp_problems: [...#Problem]
}
`

// document is the on-disk shape.
type document struct {
	Problems []domain.CatalogProblem `json:"cp_problems" yaml:"cp_problems"`
}

// Catalog is an ordered, immutable list of problems.
type Catalog struct {
	problems []domain.CatalogProblem
	index    map[string]int
}

// Default returns the catalog embedded in the build.
func Default() (*Catalog, error) {
	c, err := Parse(defaultDocument)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return c, nil
}

// Load reads a catalog document from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML or JSON catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Problems == nil {
		doc.Problems = []domain.CatalogProblem{}
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	c := &Catalog{
		problems: make([]domain.CatalogProblem, 0, len(doc.Problems)),
		index:    make(map[string]int, len(doc.Problems)),
	}
	for i, p := range doc.Problems {
		p.ID = norm.NFC.String(p.ID)
		p.Name = norm.NFC.String(p.Name)
		p.Description = norm.NFC.String(p.Description)
		if prev, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate problem id %q at cp_problems[%d] (first at cp_problems[%d])", p.ID, i, prev)
		}
		c.index[p.ID] = i
		c.problems = append(c.problems, p)
	}
	return c, nil
}

func validate(doc document) error {
	ctx := cuecontext.New()
	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Catalog"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}
	if err := def.Unify(ctx.Encode(doc)).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}

// Problems returns a copy of the problems in catalog order.
func (c *Catalog) Problems() []domain.CatalogProblem {
	out := make([]domain.CatalogProblem, len(c.problems))
	copy(out, c.problems)
	return out
}

// Lookup finds a problem by id.
func (c *Catalog) Lookup(id string) (domain.CatalogProblem, bool) {
	i, ok := c.index[norm.NFC.String(id)]
	if !ok {
		return domain.CatalogProblem{}, false
	}
	return c.problems[i], true
}

// Len returns the number of problems.
func (c *Catalog) Len() int {
	return len(c.problems)
}
