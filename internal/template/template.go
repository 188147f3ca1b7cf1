// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package template implements the parse-once, render-many substitution
// engine used to decorate each matched address. A Template never rescans a
// substituted field value for further `{...}` syntax — see TestNoDoubleSubstitution
// for the property this guarantees.
package template

import (
	"errors"
	"io"
	"strings"
)

// ErrEmptyFieldName is returned by Compile when the format string contains
// an empty field reference "{}".
var ErrEmptyFieldName = errors.New("template: empty field name")

// partKind distinguishes a literal byte run from a field reference.
type partKind int

const (
	partLiteral partKind = iota
	partField
)

type part struct {
	kind    partKind
	literal string
	field   string
}

// Template is an ordered sequence of literal and field parts, compiled once
// from a format string and safe to share (read-only) across goroutines.
type Template struct {
	parts     []part
	sizeHint  int
	sourceFmt string
}

// Lookup resolves a field name to its value. Unrecognized names should
// resolve to the empty string; Lookup itself never errors.
type Lookup func(field string) string

// Compile parses format into a Template. "{{" and "}}" produce literal "{"
// and "}"; "{name}" is a field reference; an empty name ("{}") is a compile
// error; an unmatched "{" (no closing "}") is treated as a literal byte,
// per the lenient policy documented in the design.
func Compile(format string) (*Template, error) {
	var parts []part
	var literal strings.Builder
	sizeHint := 0

	flushLiteral := func() {
		if literal.Len() > 0 {
			parts = append(parts, part{kind: partLiteral, literal: literal.String()})
			sizeHint += literal.Len()
			literal.Reset()
		}
	}

	i := 0
	for i < len(format) {
		c := format[i]
		switch c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				literal.WriteByte('{')
				i += 2
				continue
			}
			closeIdx := strings.IndexByte(format[i+1:], '}')
			if closeIdx < 0 {
				// Unmatched '{': treat as literal.
				literal.WriteByte('{')
				i++
				continue
			}
			name := format[i+1 : i+1+closeIdx]
			if name == "" {
				return nil, ErrEmptyFieldName
			}
			flushLiteral()
			parts = append(parts, part{kind: partField, field: name})
			sizeHint += 16
			i += 1 + closeIdx + 1
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				literal.WriteByte('}')
				i += 2
				continue
			}
			literal.WriteByte('}')
			i++
		default:
			literal.WriteByte(c)
			i++
		}
	}
	flushLiteral()

	return &Template{parts: parts, sizeHint: sizeHint, sourceFmt: format}, nil
}

// SizeHint returns the precomputed capacity estimate: the sum of literal
// lengths plus a fixed per-field allowance, useful for preallocating an
// output buffer.
func (t *Template) SizeHint() int {
	return t.sizeHint
}

// Fields returns the distinct field names referenced by the template, in
// first-occurrence order.
func (t *Template) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range t.parts {
		if p.kind == partField && !seen[p.field] {
			seen[p.field] = true
			out = append(out, p.field)
		}
	}
	return out
}

// Render renders the template into a newly allocated string.
func (t *Template) Render(lookup Lookup) string {
	var b strings.Builder
	b.Grow(t.sizeHint)
	_ = t.Write(&b, lookup)
	return b.String()
}

// Write renders the template directly into w, avoiding the allocation
// Render incurs. This is the preferred call on hot paths.
func (t *Template) Write(w io.Writer, lookup Lookup) error {
	sw, isStringWriter := w.(io.StringWriter)
	for _, p := range t.parts {
		var s string
		switch p.kind {
		case partLiteral:
			s = p.literal
		case partField:
			s = lookup(p.field)
		}
		var err error
		if isStringWriter {
			_, err = sw.WriteString(s)
		} else {
			_, err = w.Write([]byte(s))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// String returns the original format string the Template was compiled
// from, round-tripping through Compile.
func (t *Template) String() string {
	return t.sourceFmt
}
