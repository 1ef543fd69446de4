// Package xbrl extracts tagged facts from XBRL instance documents and
// correlates them into row-per-entity groups keyed by the numeric suffix of
// their context references.
package xbrl

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/niftydata/fundamentals-api/internal/apperror"
)

// Fact is one leaf value from an XBRL document: the tag's local name, the
// context reference it is scoped by, and its text content.
type Fact struct {
	Name    string
	Context string
	Value   string
}

// ExtractFacts walks the document and collects every element that carries a
// non-blank contextRef attribute and non-blank text. Namespace prefixes are
// stripped from tag names. A malformed document fails as a whole; there is no
// partial recovery within a file.
func ExtractFacts(r io.Reader) ([]Fact, error) {
	decoder := xml.NewDecoder(r)

	var facts []Fact
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.New(apperror.ParseFailure, fmt.Sprintf("parse xml: %v", err))
		}

		elem, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		contextRef := attr(elem.Attr, "contextRef")
		if contextRef == "" {
			continue
		}

		var value string
		if err := decoder.DecodeElement(&value, &elem); err != nil {
			// Facts with element children (tuples) carry no text of their own.
			continue
		}

		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		facts = append(facts, Fact{
			Name:    elem.Name.Local,
			Context: contextRef,
			Value:   value,
		})
	}

	return facts, nil
}

// FindValue returns the value of the first fact with the given element name,
// or the fallback when no such fact exists.
func FindValue(facts []Fact, name, fallback string) string {
	for _, f := range facts {
		if f.Name == name {
			return f.Value
		}
	}
	return fallback
}

func attr(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
