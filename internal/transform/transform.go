// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package transform implements the Stream Transformer: the top-level
// pipeline that reads input line by line, runs the Extractor over each
// line, resolves accepted matches through a Provider Registry and
// Template, and writes the result through in one of five modes.
package transform

import (
	"bufio"
	"errors"
	"io"
	"net/netip"
	"syscall"

	"geoipsed/internal/extractor"
	"geoipsed/internal/geoprovider"
	"geoipsed/internal/tagging"
	"geoipsed/internal/template"
)

// Mode selects the Transformer's output shape. Exactly one is active per
// invocation.
type Mode int

const (
	// ModeDecorate replaces each match in place; all other bytes pass
	// through unchanged. The default.
	ModeDecorate Mode = iota
	// ModeOnlyMatching emits only rendered decorations, one per line.
	ModeOnlyMatching
	// ModeTag emits one JSON document per input line.
	ModeTag
	// ModeTagFiles emits one JSON document per input file.
	ModeTagFiles
	// ModeExtract emits only the raw literal spelling of each match, one
	// per line; no lookup, no template.
	ModeExtract
)

// minBufferSize is the line reader's minimum capacity, per the design's
// "at least 64 KiB" buffering requirement.
const minBufferSize = 64 * 1024

// maxCacheEntries bounds the per-invocation lookup cache.
const maxCacheEntries = 100_000

// Options configures a single Transformer invocation.
type Options struct {
	Mode         Mode
	OnlyRoutable bool
}

// Transformer is the top-level pipeline. A single Transformer owns its
// cache exclusively and must not be shared across goroutines.
type Transformer struct {
	ex       *extractor.Extractor
	registry *geoprovider.Registry
	tmpl     *template.Template
	opts     Options
	cache    map[string]string
}

// New builds a Transformer. tmpl is the (already color-wrapped, if
// applicable) template every decorated match renders through.
func New(ex *extractor.Extractor, registry *geoprovider.Registry, tmpl *template.Template, opts Options) *Transformer {
	return &Transformer{
		ex:       ex,
		registry: registry,
		tmpl:     tmpl,
		opts:     opts,
		cache:    make(map[string]string),
	}
}

// IsBrokenPipe reports whether err represents a broken-pipe write failure,
// which the CLI treats as clean, successful termination.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

// Run processes a single input stream and writes its transformed output to
// w. In ModeTagFiles the entire stream is read before anything is written,
// since its ranges refer to the whole file rather than a single line.
func (t *Transformer) Run(r io.Reader, w io.Writer) error {
	if t.opts.Mode == ModeTagFiles {
		return t.runTagFiles(r, w)
	}

	br := bufio.NewReaderSize(r, minBufferSize)
	bw := bufio.NewWriterSize(w, minBufferSize)

	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if werr := t.processLine(line, bw); werr != nil {
				return werr
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
	}
	return bw.Flush()
}

// runTagFiles reads the entire input and emits a single tag document with
// ranges relative to the whole buffer — the one documented exception to
// the transformer's line-at-a-time streaming contract.
func (t *Transformer) runTagFiles(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	tags := t.collectTags(data)
	return tagging.New(data, tags).Write(w)
}

// processLine dispatches a single line (terminator included) to the active
// mode.
func (t *Transformer) processLine(line []byte, w *bufio.Writer) error {
	switch t.opts.Mode {
	case ModeDecorate:
		return t.decorateLine(line, w)
	case ModeOnlyMatching:
		return t.onlyMatchingLine(line, w)
	case ModeExtract:
		return t.extractLine(line, w)
	case ModeTag:
		tags := t.collectTags(line)
		return tagging.New(line, tags).Write(w)
	default:
		return t.decorateLine(line, w)
	}
}

// decorateLine writes line with every accepted, routable match replaced by
// its rendered decoration. Every byte of line is accounted for: it either
// falls in an accepted match range (and is replaced) or is copied through.
func (t *Transformer) decorateLine(line []byte, w io.Writer) error {
	it := t.ex.Find(line)
	cursor := 0
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		decorated, pass := t.resolve(line[m.Start:m.End])
		if _, err := w.Write(line[cursor:m.Start]); err != nil {
			return err
		}
		if pass {
			if _, err := w.Write(line[m.Start:m.End]); err != nil {
				return err
			}
		} else if _, err := io.WriteString(w, decorated); err != nil {
			return err
		}
		cursor = m.End
	}
	_, err := w.Write(line[cursor:])
	return err
}

// onlyMatchingLine writes one rendered decoration per accepted, routable
// match, discarding everything else. A match suppressed by the
// only-routable gate is skipped entirely (there is nothing to emit).
func (t *Transformer) onlyMatchingLine(line []byte, w io.Writer) error {
	it := t.ex.Find(line)
	for {
		m, ok := it.Next()
		if !ok {
			return nil
		}
		decorated, pass := t.resolve(line[m.Start:m.End])
		if pass {
			continue
		}
		if _, err := io.WriteString(w, decorated+"\n"); err != nil {
			return err
		}
	}
}

// extractLine writes the raw literal spelling of each match, one per line;
// no provider lookup, no template, no cache, no only-routable gate (there
// is no ASN to gate on without a lookup).
func (t *Transformer) extractLine(line []byte, w io.Writer) error {
	it := t.ex.Find(line)
	for {
		m, ok := it.Next()
		if !ok {
			return nil
		}
		if _, err := w.Write(line[m.Start:m.End]); err != nil {
			return err
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
}

// collectTags runs the extractor over data and builds the Tag list for
// tag/tag-files mode, in left-to-right order.
func (t *Transformer) collectTags(data []byte) []tagging.Tag {
	it := t.ex.Find(data)
	var tags []tagging.Tag
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		literal := string(data[m.Start:m.End])
		decorated, pass := t.resolve(data[m.Start:m.End])
		if pass {
			tags = append(tags, tagging.Tag{Value: literal})
			continue
		}
		tags = append(tags, tagging.NewTag(literal, m.Start, m.End, decorated))
	}
	return tags
}

// resolve renders a matched literal's decoration, consulting and
// populating the cache. pass is true when the only-routable gate rejected
// the match (or the literal fails to parse, which should not happen for an
// already-accepted match): the caller must leave the match unchanged and
// must not cache a pass-through.
func (t *Transformer) resolve(raw []byte) (decorated string, pass bool) {
	key := string(raw)
	if cached, ok := t.cache[key]; ok {
		return cached, false
	}

	addr, err := netip.ParseAddr(key)
	if err != nil {
		return "", true
	}

	if t.opts.OnlyRoutable {
		hasASN, err := t.registry.HasASN(addr)
		if err != nil || !hasASN {
			return "", true
		}
	}

	rendered, err := t.registry.Lookup(addr, key, t.tmpl)
	if err != nil {
		// LookupFailed is recovered locally: emit the match unchanged.
		return "", true
	}

	if len(t.cache) < maxCacheEntries {
		t.cache[key] = rendered
	}
	return rendered, false
}
