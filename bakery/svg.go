package bakery

import (
	"bytes"
	"html"
	"regexp"
	"strings"
)

const svgNamespace = "http://openbadges.org"

var (
	svgRootTag      = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	svgAssertion    = regexp.MustCompile(`(?s)<openbadges:assertion\b([^>]*?)(?:/>|>(.*?)</openbadges:assertion>)`)
	svgVerifyAttr   = regexp.MustCompile(`verify\s*=\s*"([^"]*)"`)
	svgCDATA        = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*)\]\]>\s*$`)
	svgNamespaceDef = regexp.MustCompile(`xmlns:openbadges\s*=`)
)

func looksLikeSVG(b []byte) bool {
	head := b
	if len(head) > 4096 {
		head = head[:4096]
	}
	return bytes.Contains(head, []byte("<svg"))
}

func bakeSVG(image []byte, payload string) ([]byte, error) {
	doc := svgAssertion.ReplaceAll(image, nil)

	loc := svgRootTag.FindIndex(doc)
	if loc == nil {
		return nil, corrupt("missing <svg> root element")
	}

	root := string(doc[loc[0]:loc[1]])
	if !svgNamespaceDef.MatchString(root) {
		selfClosing := strings.HasSuffix(root, "/>")
		trimmed := strings.TrimSuffix(strings.TrimSuffix(root, "/>"), ">")
		root = trimmed + ` xmlns:openbadges="` + svgNamespace + `"`
		if selfClosing {
			root += "/>"
		} else {
			root += ">"
		}
	}

	var element strings.Builder
	element.WriteString("<openbadges:assertion")
	if verify := verifyURLFromPayload(payload); verify != "" {
		element.WriteString(` verify="` + html.EscapeString(verify) + `"`)
	}
	element.WriteString("><![CDATA[")
	element.WriteString(strings.ReplaceAll(payload, "]]>", "]]]]><![CDATA[>"))
	element.WriteString("]]></openbadges:assertion>")

	var out bytes.Buffer
	out.Write(doc[:loc[0]])
	if strings.HasSuffix(root, "/>") {
		// An empty root has nowhere to hold the element; open it up.
		out.WriteString(strings.TrimSuffix(root, "/>") + ">")
		out.WriteString(element.String())
		out.WriteString("</svg>")
	} else {
		out.WriteString(root)
		out.WriteString(element.String())
	}
	out.Write(doc[loc[1]:])

	return out.Bytes(), nil
}

func unbakeSVG(image []byte) (string, error) {
	if !svgRootTag.Match(image) {
		return "", corrupt("missing <svg> root element")
	}

	m := svgAssertion.FindSubmatch(image)
	if m == nil {
		return "", ErrNotBaked
	}

	body := m[2]
	if cdata := svgCDATA.FindSubmatch(body); cdata != nil {
		body = cdata[1]
		body = bytes.ReplaceAll(body, []byte("]]]]><![CDATA[>"), []byte("]]>"))
		return string(body), nil
	}

	if text := strings.TrimSpace(html.UnescapeString(string(body))); text != "" {
		return text, nil
	}

	// Hosted assertions may be baked as a bare verify attribute.
	if attr := svgVerifyAttr.FindSubmatch(m[1]); attr != nil {
		return html.UnescapeString(string(attr[1])), nil
	}

	return "", ErrNotBaked
}

var payloadVerifyURL = regexp.MustCompile(`"verify"\s*:\s*\{[^}]*"url"\s*:\s*"([^"]+)"`)

// verifyURLFromPayload picks the hosted verification URL out of a JSON
// payload without fully decoding it.
func verifyURLFromPayload(payload string) string {
	if m := payloadVerifyURL.FindStringSubmatch(payload); m != nil {
		return m[1]
	}
	return ""
}
