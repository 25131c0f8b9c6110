package xml

import (
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/bredtape/bulk_updater/archive"
	"github.com/pkg/errors"
)

// Pruner removes every node matching a set of XPaths from .xml files.
type Pruner struct {
	xpaths []string
	exprs  []*xpath.Expr

	// OnPruned, if set, is called for each file where nodes were removed.
	OnPruned func(name string, nodes int)
}

// NewPruner validates and compiles xpaths.
func NewPruner(xpaths []string) (*Pruner, error) {
	if len(xpaths) == 0 {
		return nil, errors.New("no XPaths specified")
	}
	if err := ValidateXPaths(xpaths); err != nil {
		return nil, errors.Wrap(err, "invalid XPaths specified")
	}

	p := &Pruner{xpaths: xpaths}
	for _, x := range xpaths {
		expr, err := xpath.Compile(x)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid XPath '%s'", x)
		}
		p.exprs = append(p.exprs, expr)
	}
	return p, nil
}

// ValidateXPaths rejects empty/blank expressions.
func ValidateXPaths(xs []string) error {
	for _, x := range xs {
		if strings.TrimSpace(x) == "" {
			return errors.New("empty/blank")
		}
	}
	return nil
}

// ProcessFile is an archive.ProcessFileFn. Files not ending in .xml, and
// files where nothing matched, are left unchanged.
func (p *Pruner) ProcessFile(name string, w io.Writer, r io.Reader) error {
	if !archive.HasExt(name, ".xml") {
		return archive.ErrUnchanged
	}

	n, err := p.Prune(w, r)
	if err != nil {
		return err
	}
	if n == 0 {
		return archive.ErrUnchanged
	}
	if p.OnPruned != nil {
		p.OnPruned(name, n)
	}
	return nil
}

// Prune parses an XML document from r, removes the matching nodes and
// writes the result to w. It returns the number of nodes removed; when
// zero, nothing is written.
func (p *Pruner) Prune(w io.Writer, r io.Reader) (int, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse XML")
	}

	removed := 0
	for _, expr := range p.exprs {
		for _, node := range xmlquery.QuerySelectorAll(doc, expr) {
			xmlquery.RemoveFromTree(node)
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}

	return removed, doc.WriteWithOptions(w,
		xmlquery.WithOutputSelf(), // root node
		xmlquery.WithIndentation("  "),
		xmlquery.WithoutPreserveSpace(), // remove extra whitespace
	)
}
