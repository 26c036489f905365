package parser

import (
	"strconv"
	"strings"
)

// maxNumberWindow is the longest run of tokens tried as one spelled-out number.
const maxNumberWindow = 4

// Keys are accent-folded.
var numberWords = map[string]int64{
	"cero": 0, "un": 1, "uno": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4,
	"cinco": 5, "seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
	"once": 11, "doce": 12, "trece": 13, "catorce": 14, "quince": 15,
	"dieciseis": 16, "diecisiete": 17, "dieciocho": 18, "diecinueve": 19,
	"veinte": 20, "veintiun": 21, "veintiuno": 21, "veintiuna": 21,
	"veintidos": 22, "veintitres": 23, "veinticuatro": 24, "veinticinco": 25,
	"veintiseis": 26, "veintisiete": 27, "veintiocho": 28, "veintinueve": 29,
	"treinta": 30, "cuarenta": 40, "cincuenta": 50, "sesenta": 60,
	"setenta": 70, "ochenta": 80, "noventa": 90,
	"cien": 100, "ciento": 100, "doscientos": 200, "doscientas": 200,
	"trescientos": 300, "trescientas": 300, "cuatrocientos": 400,
	"cuatrocientas": 400, "quinientos": 500, "quinientas": 500,
	"seiscientos": 600, "seiscientas": 600, "setecientos": 700,
	"setecientas": 700, "ochocientos": 800, "ochocientas": 800,
	"novecientos": 900, "novecientas": 900,
}

var multiplierWords = map[string]int64{
	"mil":      1_000,
	"luca":     1_000,
	"lucas":    1_000,
	"millon":   1_000_000,
	"millones": 1_000_000,
}

const connectorWord = "y"

// wordsToNumber converts a run of Spanish number words ("treinta y cinco mil")
// into its value. Every token must be a number word.
func wordsToNumber(words []string) (int64, bool) {
	var total, current int64
	seen := false
	for i, w := range words {
		if w == connectorWord {
			if i == 0 || i == len(words)-1 {
				return 0, false
			}
			continue
		}
		if v, ok := numberWords[w]; ok {
			current += v
			seen = true
			continue
		}
		m, ok := multiplierWords[w]
		if !ok {
			return 0, false
		}
		if m == 1_000 {
			if current == 0 {
				current = 1
			}
			total += current * m
		} else {
			if current == 0 && total == 0 {
				current = 1
			}
			total = (total + current) * m
		}
		current = 0
		seen = true
	}
	if !seen {
		return 0, false
	}
	return total + current, true
}

// numberToken reports whether tok can take part in a spelled-out number.
// The articles "un"/"una" only count right before a multiplier, so
// "un café" stays text while "un millón" converts.
func numberToken(tok, next string) bool {
	if tok == "un" || tok == "una" {
		_, ok := multiplierWords[next]
		return ok
	}
	if tok == connectorWord {
		return true
	}
	if _, ok := numberWords[tok]; ok {
		return true
	}
	_, ok := multiplierWords[tok]
	return ok
}

// replaceNumberWords slides a window of up to four tokens left to right and
// replaces the first spelled-out number it can convert. Only one number is
// rewritten per message; anything ambiguous is left for digit scanning.
func replaceNumberWords(text string) string {
	tokens := strings.Split(text, " ")
	words := make([]string, len(tokens))
	closed := make([]bool, len(tokens)) // token carries trailing punctuation
	for i, t := range tokens {
		trimmed := strings.TrimRight(t, ".,;:!?")
		closed[i] = trimmed != t
		words[i] = foldAccents(trimmed)
	}

	for i := range tokens {
		n := 0
		for i+n < len(tokens) && n < maxNumberWindow {
			next := ""
			if i+n+1 < len(words) {
				next = words[i+n+1]
			}
			if !numberToken(words[i+n], next) {
				break
			}
			n++
			if closed[i+n-1] {
				break
			}
		}
		for size := n; size > 0; size-- {
			v, ok := wordsToNumber(words[i : i+size])
			if !ok {
				continue
			}
			last := tokens[i+size-1]
			suffix := last[len(strings.TrimRight(last, ".,;:!?")):]
			out := make([]string, 0, len(tokens)-size+1)
			out = append(out, tokens[:i]...)
			out = append(out, strconv.FormatInt(v, 10)+suffix)
			out = append(out, tokens[i+size:]...)
			return strings.Join(out, " ")
		}
	}
	return text
}
