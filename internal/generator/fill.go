package generator

import "strings"

// fillTemplate substitutes every "{slot}" of tpl with lookup(slot). "{{" and
// "}}" are literal braces. ok is false when the template is malformed or
// names a slot lookup does not know; the caller decides what to use instead.
func fillTemplate(tpl string, lookup func(slot string) (string, bool)) (filled string, ok bool) {
	var b strings.Builder
	b.Grow(len(tpl))

	for i := 0; i < len(tpl); {
		switch tpl[i] {
		case '{':
			if i+1 < len(tpl) && tpl[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(tpl[i+1:], '}')
			if end < 0 {
				return "", false
			}
			slot := tpl[i+1 : i+1+end]
			if strings.ContainsRune(slot, '{') {
				return "", false
			}
			val, known := lookup(slot)
			if !known {
				return "", false
			}
			b.WriteString(val)
			i += end + 2
		case '}':
			if i+1 < len(tpl) && tpl[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", false
		default:
			b.WriteByte(tpl[i])
			i++
		}
	}
	return b.String(), true
}

// fillGeneric puts topic into every positional slot: "{}", "{0}" or "{1}".
func fillGeneric(tpl, topic string) (string, bool) {
	return fillTemplate(tpl, func(slot string) (string, bool) {
		switch slot {
		case "", "0", "1":
			return topic, true
		}
		return "", false
	})
}

// fillKeyword fills the named "{keyword}" and "{topic}" slots.
func fillKeyword(tpl, keyword, topic string) (string, bool) {
	return fillTemplate(tpl, func(slot string) (string, bool) {
		switch slot {
		case "keyword":
			return keyword, true
		case "topic":
			return topic, true
		}
		return "", false
	})
}
