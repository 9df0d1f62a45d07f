package textproc

// spanishStopwords are common Spanish words that carry no signal for
// spam/ham separation.
var spanishStopwords = toSet(
	"el", "la", "de", "que", "y", "a", "en", "un", "ser", "se",
	"no", "haber", "por", "con", "su", "para", "como", "estar",
	"tener", "le", "lo", "todo", "pero", "más", "hacer", "o",
	"poder", "decir", "este", "ir", "otro", "ese", "si",
	"me", "ya", "ver", "porque", "dar", "cuando", "él", "muy",
	"sin", "vez", "mucho", "saber", "qué", "sobre", "mi", "alguno",
	"mismo", "yo", "también", "hasta", "año", "dos", "querer",
	"entre", "así", "primero", "desde", "grande", "eso", "ni",
	"nos", "llegar", "pasar", "tiempo", "ella", "sí", "día",
	"uno", "bien", "poco", "deber", "entonces", "poner", "cosa",
	"tanto", "hombre", "parecer", "nuestro", "tan", "donde",
	"ahora", "parte", "después", "vida", "quedar", "siempre",
	"creer", "hablar", "llevar", "dejar", "nada", "cada", "seguir",
	"menos", "nuevo", "encontrar", "algo", "solo", "país",
	"mientras", "mujer", "aquel", "leer", "mundo", "aunque",
	"trabajar", "problema", "semana", "empezar", "mirar",
	"casa", "cambiar", "señor", "sistema", "hecho",
	"trabajo", "niño", "estado", "todavía",
)

var englishStopwords = toSet(
	"a", "about", "after", "all", "also", "an", "and", "any", "are", "as",
	"at", "be", "because", "been", "but", "by", "can", "could", "did", "do",
	"does", "for", "from", "had", "has", "have", "he", "her", "his", "how",
	"i", "if", "in", "into", "is", "it", "its", "just", "me", "more",
	"my", "no", "not", "now", "of", "on", "or", "our", "out", "she",
	"so", "some", "than", "that", "the", "their", "them", "then", "there", "these",
	"they", "this", "to", "up", "us", "was", "we", "were", "what", "when",
	"which", "who", "will", "with", "would", "you", "your",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether token is a Spanish stopword.
func IsStopword(token string) bool {
	_, ok := spanishStopwords[token]
	return ok
}
