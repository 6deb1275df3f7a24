// Package ioxml reads and rewrites the simulator's XML configuration
// trees. Parameter paths address elements with `/`-joined segments;
// a segment is either a tag name or `tag:attr:value` selecting the
// child whose attribute matches.
package ioxml

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/vtrials/vtdb/pkg/param"
)

// Tree is one loaded XML configuration document.
type Tree struct {
	doc  *etree.Document
	path string
}

// Load reads an XML document from disk.
func Load(path string) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, ReadError(path, err)
	}
	if doc.Root() == nil {
		return nil, ReadError(path, errNoRoot)
	}
	return &Tree{doc: doc, path: path}, nil
}

// Value returns the text content of the element at path.
func (t *Tree) Value(path string) (string, error) {
	el, err := t.resolve(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(el.Text()), nil
}

// SetValue replaces the text content of the element at path. The
// element must already exist; a sweep never invents configuration the
// simulator did not declare.
func (t *Tree) SetValue(path, value string) error {
	el, err := t.resolve(path)
	if err != nil {
		return err
	}
	el.SetText(value)
	return nil
}

// Apply writes one parameter value per definition into the tree.
func (t *Tree) Apply(defs []param.Def, values []param.Value) error {
	for i, d := range defs {
		if err := t.SetValue(d.Path, values[i].Text()); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the document to path, preserving the original layout
// where etree can.
func (t *Tree) Save(path string) error {
	t.doc.Indent(2)
	if err := t.doc.WriteToFile(path); err != nil {
		return WriteError(path, err)
	}
	return nil
}

// resolve walks the document from the root, one segment at a time.
func (t *Tree) resolve(path string) (*etree.Element, error) {
	el := t.doc.Root()
	for _, seg := range strings.Split(path, "/") {
		next := child(el, seg)
		if next == nil {
			return nil, PathError(t.path, path, seg)
		}
		el = next
	}
	return el, nil
}

func child(el *etree.Element, seg string) *etree.Element {
	parts := strings.SplitN(seg, ":", 3)
	if len(parts) == 3 {
		for _, c := range el.SelectElements(parts[0]) {
			if c.SelectAttrValue(parts[1], "") == parts[2] {
				return c
			}
		}
		return nil
	}
	return el.SelectElement(seg)
}
