// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package document

import (
	"regexp"
	"strings"
)

const (
	// StartToken and EndToken wrap an escaped expression inside a scalar.
	StartToken = ":START:"
	EndToken   = ":END:"

	startTag = "{{"
	endTag   = "}}"
)

// escapes maps characters the encoder would quote, escape or fold to
// private tokens.
var escapes = []struct {
	char  string
	token string
}{
	{`\`, ":BACKSLASH:"},
	{`"`, ":DOUBLE_QUOTES:"},
	{"\r", ":CARRIAGE_RETURN:"},
	{"\n", ":LINE_SEPARATOR:"},
	{"\t", ":TAB:"},
	{" ", ":SPACE:"},
}

var (
	spans = regexp.MustCompile(`(?s)"?` + regexp.QuoteMeta(StartToken) + `(.*?)` + regexp.QuoteMeta(EndToken) + `"?`)

	// foldedBreak is a line break the encoder inserted into a long
	// double-quoted scalar.
	foldedBreak = regexp.MustCompile(`\\\n[ \t]*\\?`)
)

// Escape converts an expression into the scalar stored in a document.
func Escape(expression string) string {
	var b strings.Builder
	b.Grow(len(expression) + len(StartToken) + len(EndToken))
	b.WriteString(StartToken)
	b.WriteString(escaper.Replace(expression))
	b.WriteString(EndToken)
	return b.String()
}

// Cleanup turns rendered YAML holding escaped expressions into template
// text. Quotes around placeholders are dropped. Each sentinel span, with
// the quotes the encoder put around it, is replaced by its restored
// expression. Text outside the spans is left as is.
func Cleanup(text string) string {
	text = strings.ReplaceAll(text, `"`+startTag, startTag)
	text = strings.ReplaceAll(text, endTag+`"`, endTag)
	return spans.ReplaceAllStringFunc(text, func(span string) string {
		body := spans.FindStringSubmatch(span)[1]
		return unescaper.Replace(foldedBreak.ReplaceAllString(body, ""))
	})
}

var escaper, unescaper = newReplacers()

func newReplacers() (*strings.Replacer, *strings.Replacer) {
	fwd := make([]string, 0, len(escapes)*2)
	rev := make([]string, 0, len(escapes)*2)
	for _, e := range escapes {
		fwd = append(fwd, e.char, e.token)
		rev = append(rev, e.token, e.char)
	}
	return strings.NewReplacer(fwd...), strings.NewReplacer(rev...)
}
