// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes user-supplied identity text before it is
// validated or stored.
//
// # Rules
//
// Email: surrounding space trimmed, NFC, domain part lowercased. The local
// part keeps its case because mail servers may treat it as significant.
//
// Display name: NFC, control characters removed, runs of whitespace collapsed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lowerDomain = cases.Lower(language.Und)

// Email returns the canonical form of an email address.
//
// Inputs without an "@" are only trimmed and composed so validation can
// still reject them with the original text.
func Email(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))

	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	return s[:at+1] + lowerDomain.String(s[at+1:])
}

// DisplayName returns the canonical form of a human name.
func DisplayName(s string) string {
	chain := transform.Chain(norm.NFC, transform.RemoveFunc(isControl))
	result, _, err := transform.String(chain, s)
	if err != nil {
		result = s
	}
	return strings.Join(strings.Fields(result), " ")
}

// isControl reports whether r is a control character other than whitespace.
func isControl(r rune) bool {
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}
