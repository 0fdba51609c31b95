package payroll

import (
	"strings"
	"unicode"
)

var bgLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ж': "zh", 'з': "z",
	'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p",
	'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sht", 'ъ': "a", 'ь': "y", 'ю': "yu", 'я': "ya",
}

// Transliterate converts Bulgarian Cyrillic to Latin using the official streamlined
// system, so text can be drawn with the core PDF fonts. A word-final "ия" becomes "ia".
func Transliterate(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		lower := unicode.ToLower(r)
		latin, ok := bgLatin[lower]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if lower == 'и' && i+1 < len(runes) && unicode.ToLower(runes[i+1]) == 'я' && wordEnds(runes, i+2) {
			pair := "ia"
			if unicode.IsUpper(r) {
				pair = casePair(runes, i, pair)
			}
			b.WriteString(pair)
			i++
			continue
		}
		if unicode.IsUpper(r) {
			latin = casePair(runes, i, latin)
		}
		b.WriteString(latin)
	}
	return b.String()
}

func wordEnds(runes []rune, i int) bool {
	return i >= len(runes) || !unicode.IsLetter(runes[i])
}

// casePair capitalises a multi-letter mapping: "Zh" inside a word, "ZH" in an all-caps word.
func casePair(runes []rune, i int, latin string) string {
	next := i + 1
	if next < len(runes) && unicode.IsUpper(runes[next]) ||
		next == len(runes) && i > 0 && unicode.IsUpper(runes[i-1]) {
		return strings.ToUpper(latin)
	}
	return strings.ToUpper(latin[:1]) + latin[1:]
}
