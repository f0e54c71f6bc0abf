// Package kml extracts storm track points from KMZ/KML best-track files.
//
// The parsing is deliberately defensive: real best-track exports vary in
// text encoding, namespace declarations, and description markup, and a
// document that trips any single safeguard should still yield whatever
// placemarks remain readable.
package kml

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
)

// Document is a parsed KML tree plus the namespace URI resolved for it.
type Document struct {
	root      *etree.Element
	nsURI     string
	prefixURI map[string]string
}

// Parse decodes and parses raw KML bytes. It strips the leading XML
// declaration (its encoding attribute is unreliable in the wild), attempts
// UTF-8 first, and falls back to Latin-1 before giving up.
func Parse(data []byte, logger *slog.Logger) (*Document, error) {
	cleaned := stripXMLDecl(data)

	root, err := parseTree(cleaned)
	if err != nil {
		logger.Warn("utf-8 parse failed, retrying as latin-1", "error", err)
		recoded, decErr := charmap.ISO8859_1.NewDecoder().Bytes(cleaned)
		if decErr != nil {
			return nil, fmt.Errorf("decode kml as latin-1: %w", decErr)
		}
		root, err = parseTree(recoded)
		if err != nil {
			return nil, fmt.Errorf("parse kml document: %w", err)
		}
	}

	decls := declaredNamespaces(root)
	doc := &Document{
		root:      root,
		nsURI:     resolveNamespace(decls, logger),
		prefixURI: make(map[string]string, len(decls)),
	}
	for _, d := range decls {
		doc.prefixURI[d.prefix] = d.uri
	}
	return doc, nil
}

func parseTree(data []byte) (*etree.Element, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("document is not valid utf-8")
	}
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := tree.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return root, nil
}

// stripXMLDecl removes a leading <?xml ...?> declaration if present.
func stripXMLDecl(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n\xef\xbb\xbf")
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return trimmed
	}
	if end := bytes.Index(trimmed, []byte("?>")); end >= 0 {
		return trimmed[end+2:]
	}
	return trimmed
}

type nsDecl struct {
	prefix string // "" for the default namespace
	uri    string
}

// declaredNamespaces collects xmlns declarations from the root element, in
// declaration order.
func declaredNamespaces(root *etree.Element) []nsDecl {
	var decls []nsDecl
	for _, a := range root.Attr {
		switch {
		case a.Space == "" && a.Key == "xmlns":
			decls = append(decls, nsDecl{prefix: "", uri: a.Value})
		case a.Space == "xmlns":
			decls = append(decls, nsDecl{prefix: a.Key, uri: a.Value})
		}
	}
	return decls
}

// resolveNamespace picks the namespace URI to search under: the default
// namespace when declared, else the conventional "kml" prefix, else the
// first declared namespace as a best-effort guess.
func resolveNamespace(decls []nsDecl, logger *slog.Logger) string {
	for _, d := range decls {
		if d.prefix == "" {
			return d.uri
		}
	}
	for _, d := range decls {
		if d.prefix == "kml" {
			return d.uri
		}
	}
	if len(decls) > 0 {
		logger.Warn("no default or kml-prefixed namespace, guessing first declared",
			"prefix", decls[0].prefix, "uri", decls[0].uri)
		return decls[0].uri
	}
	return ""
}

// FindAll locates elements under scope by a local-name path: the first name
// is matched at any depth, subsequent names as direct children. It queries
// namespace-qualified first and, on zero matches, retries with no namespace
// qualification at all — documents that mis-declare namespaces still often
// match unqualified. This two-tier strategy is shared by every lookup in
// the package.
func (d *Document) FindAll(scope *etree.Element, names ...string) []*etree.Element {
	if d.nsURI != "" {
		if found := d.find(scope, true, names); len(found) > 0 {
			return found
		}
	}
	return d.find(scope, false, names)
}

func (d *Document) find(scope *etree.Element, qualified bool, names []string) []*etree.Element {
	matches := func(e *etree.Element, name string) bool {
		if e.Tag != name {
			return false
		}
		return !qualified || d.prefixURI[e.Space] == d.nsURI
	}

	current := collectDescendants(scope, names[0], matches)
	for _, name := range names[1:] {
		var next []*etree.Element
		for _, e := range current {
			for _, c := range e.ChildElements() {
				if matches(c, name) {
					next = append(next, c)
				}
			}
		}
		current = next
	}
	return current
}

func collectDescendants(scope *etree.Element, name string, matches func(*etree.Element, string) bool) []*etree.Element {
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if matches(c, name) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(scope)
	return out
}

// Placemarks returns every placemark element in the document.
func (d *Document) Placemarks() []*etree.Element {
	return d.FindAll(d.root, "Placemark")
}

// Coordinates returns the text of a placemark's Point coordinates element.
func (d *Document) Coordinates(pm *etree.Element) (string, bool) {
	els := d.FindAll(pm, "Point", "coordinates")
	if len(els) == 0 {
		return "", false
	}
	return strings.TrimSpace(els[0].Text()), true
}

// Description returns a placemark's description blob, trimmed.
func (d *Document) Description(pm *etree.Element) (string, bool) {
	els := d.FindAll(pm, "description")
	if len(els) == 0 {
		return "", false
	}
	return strings.TrimSpace(els[0].Text()), true
}
