package rdf

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PrefixMap resolves and shrinks URIs against a set of namespace
// prefixes, for human-readable CLI output.
type PrefixMap struct {
	p2uri map[string]URI
	uri2p map[URI]string
	Base  URI
}

// NewPrefixMap returns a new, empty PrefixMap.
func NewPrefixMap() *PrefixMap {
	return &PrefixMap{
		p2uri: make(map[string]URI),
		uri2p: make(map[URI]string),
	}
}

// Set associates prefix with the namespace URI u.
func (p *PrefixMap) Set(prefix string, u URI) {
	p.p2uri[prefix] = u
	p.uri2p[u] = prefix
}

// Resolve expands a prefixed name ("foaf:name") into a full URI.
func (p *PrefixMap) Resolve(s string) (URI, error) {
	if i := strings.Index(s, ":"); i > 0 {
		prefix, path := s[:i], s[i+1:]
		if u, ok := p.p2uri[prefix]; ok {
			return NewURI(string(u) + path), nil
		}
	}
	return "", fmt.Errorf("cannot resolve: %s", s)
}

// Shrink renders u using a matching prefix or the base URI, falling
// back to the full "<uri>" form.
func (p *PrefixMap) Shrink(u URI) string {
	if p.Base != "" && strings.HasPrefix(string(u), string(p.Base)) {
		return "<" + strings.TrimPrefix(string(u), string(p.Base)) + ">"
	}
	ns, path := splitNamespace(string(u))
	if prefix, ok := p.uri2p[URI(ns)]; ok {
		return prefix + ":" + path
	}
	return "<" + string(u) + ">"
}

func splitNamespace(uri string) (string, string) {
	i := len(uri)
	for i > 0 {
		r, w := utf8.DecodeLastRuneInString(uri[:i])
		if r == '/' || r == '#' {
			return uri[:i], uri[i:]
		}
		i -= w
	}
	return uri, uri
}
