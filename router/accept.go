// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import (
	"strconv"
	"strings"
)

// acceptSpec is one parsed entry of an Accept header.
type acceptSpec struct {
	typ, subtype string
	q            float64
	params       map[string]string
	order        int // original header order, for stable tie-break
}

func (s acceptSpec) specificity() int {
	switch {
	case s.typ != "*" && s.subtype != "*":
		return 2
	case s.typ != "*" && s.subtype == "*":
		return 1
	default:
		return 0
	}
}

func (s acceptSpec) matches(typ, subtype string) bool {
	if s.typ != "*" && !strings.EqualFold(s.typ, typ) {
		return false
	}
	if s.subtype != "*" && !strings.EqualFold(s.subtype, subtype) {
		return false
	}
	return true
}

// parseAccept parses an Accept header into specs ordered as they appeared.
func parseAccept(header string) []acceptSpec {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	specs := make([]acceptSpec, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segs := strings.Split(part, ";")
		mediaType := strings.TrimSpace(segs[0])
		typ, subtype, ok := strings.Cut(mediaType, "/")
		if !ok {
			continue
		}
		spec := acceptSpec{typ: typ, subtype: subtype, q: 1.0, order: i, params: map[string]string{}}
		for _, p := range segs[1:] {
			p = strings.TrimSpace(p)
			k, v, ok := strings.Cut(p, "=")
			if !ok {
				continue
			}
			k = strings.TrimSpace(k)
			v = strings.Trim(strings.TrimSpace(v), `"`)
			if strings.EqualFold(k, "q") {
				if q, err := strconv.ParseFloat(v, 64); err == nil {
					spec.q = q
				}
			} else {
				spec.params[k] = v
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

// NegotiatedMediaType is the outcome of Context.Negotiate.
type NegotiatedMediaType struct {
	Type    string
	Q       float64
}

func (n NegotiatedMediaType) String() string { return n.Type }

// candidate tracks one (offer, matching spec) pairing while selecting the
// best negotiated media type.
type candidate struct {
	offer       string
	offerIndex  int
	q           float64
	specificity int
	paramCount  int
	headerOrder int
}

// Negotiate selects the best offer from supported given the request's
// Accept header. Selection maximizes q (>0), then specificity
// (non-wildcard over wildcard, more params over fewer), then Accept header
// order, then offer order. Falls back to the first offer if the header is
// absent or none match; returns (zero, false) only when supported is
// empty.
func (c *Context) Negotiate(supported []string) (NegotiatedMediaType, bool) {
	if len(supported) == 0 {
		return NegotiatedMediaType{}, false
	}
	if c.cachedAccept != c.Request.Header.Get("Accept") || c.cachedAcceptSpec == nil {
		c.cachedAccept = c.Request.Header.Get("Accept")
		c.cachedAcceptSpec = parseAccept(c.cachedAccept)
	}
	specs := c.cachedAcceptSpec
	if len(specs) == 0 {
		return NegotiatedMediaType{Type: supported[0], Q: 1.0}, true
	}

	var best *candidate
	for oi, offer := range supported {
		typ, subtype, ok := strings.Cut(offer, "/")
		if !ok {
			continue
		}
		for _, spec := range specs {
			if spec.q <= 0 {
				continue
			}
			if !spec.matches(typ, subtype) {
				continue
			}
			cand := candidate{
				offer:       offer,
				offerIndex:  oi,
				q:           spec.q,
				specificity: spec.specificity(),
				paramCount:  len(spec.params),
				headerOrder: spec.order,
			}
			if candidateBetter(cand, best) {
				best = &cand
			}
		}
	}
	if best == nil {
		return NegotiatedMediaType{Type: supported[0], Q: 1.0}, true
	}
	return NegotiatedMediaType{Type: best.offer, Q: best.q}, true
}

// candidateBetter reports whether a should replace the current best b,
// applying tie-breaks in order: higher q, higher specificity, more
// params, earlier Accept header order, earlier offer order.
func candidateBetter(a candidate, b *candidate) bool {
	if b == nil {
		return true
	}
	if a.q != b.q {
		return a.q > b.q
	}
	if a.specificity != b.specificity {
		return a.specificity > b.specificity
	}
	if a.paramCount != b.paramCount {
		return a.paramCount > b.paramCount
	}
	if a.headerOrder != b.headerOrder {
		return a.headerOrder < b.headerOrder
	}
	return a.offerIndex < b.offerIndex
}
