package render

import (
	"html"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

// ToText turns a description or announcement into wrapped plain text.
// Most are plain already; text pasted from a rich editor can carry
// <p>, <br>, <b>, <a> and <li> markup, which is flattened.
func ToText(raw string, width int) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "<") {
		return WrapText(strings.TrimSpace(html.UnescapeString(raw)), width)
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var anchorURL string
	skip := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return WrapText(strings.TrimSpace(sb.String()), width)

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "script", "style":
				if tt == xhtml.StartTagToken {
					skip++
				}
			case "p", "div":
				if sb.Len() > 0 {
					sb.WriteString("\n\n")
				}
			case "br":
				sb.WriteString("\n")
			case "li":
				sb.WriteString("\n• ")
			case "b", "strong", "i", "em":
				sb.WriteString("*")
			case "a":
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "b", "strong", "i", "em":
				sb.WriteString("*")
			case "a":
				if anchorURL != "" && !strings.HasSuffix(strings.TrimSpace(sb.String()), anchorURL) {
					sb.WriteString(" [")
					sb.WriteString(anchorURL)
					sb.WriteString("]")
				}
				anchorURL = ""
			}

		case xhtml.TextToken:
			if skip == 0 {
				sb.WriteString(tokenizer.Token().Data)
			}
		}
	}
}

// WrapText word-wraps each paragraph of text to width columns. Lines
// starting with four spaces are left alone.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.HasPrefix(paragraph, "    ") {
			result.WriteString(paragraph)
			result.WriteString("\n")
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for i, word := range words {
			wlen := utf8.RuneCountInString(word)
			if i > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if i > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

// Truncate shortens s to at most n runes, ending in "…" when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// SingleLine collapses all whitespace runs, newlines included, to one
// space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
