package services

import "petplus-bot/models"

// Keyword vocabularies per intent, in the storefront's locale. Accented and
// plain spellings both appear; normalization collapses them at build time.
var (
	priceWords    = []string{"precio", "cuanto", "vale", "cuánto", "costo", "cuesta"}
	imageWords    = []string{"foto", "imagen", "muestra", "ver", "enséñame", "mostrame"}
	shippingWords = []string{"envio", "envío", "entrega", "mandan", "reparto", "enviar", "llegan", "envian"}
	helpWords     = []string{"ayuda", "informacion", "información"}
)

type intentRule struct {
	intent   models.Intent
	keywords map[string]struct{}
}

// IntentClassifier maps normalized text to a coarse intent. The rule order is
// a deliberate disambiguation policy: price wins over image, image over
// shipping, shipping over help.
type IntentClassifier struct {
	rules []intentRule
}

func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{
		rules: []intentRule{
			{models.IntentPrice, normalizeKeywords(priceWords)},
			{models.IntentImage, normalizeKeywords(imageWords)},
			{models.IntentShipping, normalizeKeywords(shippingWords)},
			{models.IntentHelp, normalizeKeywords(helpWords)},
		},
	}
}

func normalizeKeywords(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[Normalize(w)] = struct{}{}
	}
	return set
}

// Classify returns the first intent whose keyword set intersects the token
// set of the text, or IntentUnknown.
func (c *IntentClassifier) Classify(text string) models.Intent {
	tokens := Tokenize(Normalize(text))
	for _, rule := range c.rules {
		for t := range tokens {
			if _, ok := rule.keywords[t]; ok {
				return rule.intent
			}
		}
	}
	return models.IntentUnknown
}
