package docx

import (
	"regexp"
	"strings"
)

// Word stores built-in style names in lower case; the UI and the rules use
// the capitalised form.
var builtinStyleNames = map[string]string{
	"normal":   "Normal",
	"title":    "Title",
	"subtitle": "Subtitle",
	"caption":  "Caption",
	"header":   "Header",
	"footer":   "Footer",
}

var headingID = regexp.MustCompile(`^[Hh]eading([1-9])$`)

// parseStyles maps style IDs to display names.
func parseStyles(data []byte) (map[string]string, error) {
	tree, err := parseTree(data)
	if err != nil {
		return nil, err
	}
	prefix := namespacePrefix(tree, mainNS, "w")
	out := map[string]string{}
	for _, root := range tree.children {
		if !root.is(prefix, "styles") {
			continue
		}
		for _, s := range root.children {
			if !s.is(prefix, "style") {
				continue
			}
			id, _ := s.attr(prefix, "styleId")
			if n := s.child(prefix, "name"); n != nil && id != "" {
				out[id], _ = n.attr(prefix, "val")
			}
		}
	}
	return out, nil
}

// styleName resolves a paragraph's style ID to its display name. Paragraphs
// without a style are Normal.
func styleName(id string, styles map[string]string) string {
	if id == "" {
		return "Normal"
	}
	name, ok := styles[id]
	if !ok || name == "" {
		if m := headingID.FindStringSubmatch(id); m != nil {
			return "Heading " + m[1]
		}
		return id
	}
	if display, ok := builtinStyleNames[name]; ok {
		return display
	}
	if strings.HasPrefix(name, "heading ") {
		return "Heading" + strings.TrimPrefix(name, "heading")
	}
	return name
}
