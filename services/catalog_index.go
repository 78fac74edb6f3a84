package services

import (
	"sort"
	"strings"

	"petplus-bot/config"
	"petplus-bot/models"
)

// nameMatchBonus is added when the product's normalized name appears as a
// contiguous substring of the query.
const nameMatchBonus = 3

// CatalogIndex is a read-only token index over the product catalog, built
// once at startup and shared across requests without locking.
type CatalogIndex struct {
	products []*models.Product // catalog load order, used for tie-breaking
}

// BuildCatalogIndex constructs the index from validated catalog definitions.
func BuildCatalogIndex(def *config.CatalogDef) *CatalogIndex {
	products := make([]*models.Product, 0, len(def.Products))
	for _, pd := range def.Products {
		normName := Normalize(pd.Name)
		tokens := Tokenize(normName)
		for _, kw := range pd.Keywords {
			for t := range Tokenize(Normalize(kw)) {
				tokens[t] = struct{}{}
			}
		}

		prices := make(map[string]float64, len(pd.Prices))
		for tier, price := range pd.Prices {
			prices[tier] = price
		}

		products = append(products, &models.Product{
			SKU:            pd.SKU,
			Name:           pd.Name,
			NormalizedName: normName,
			Tokens:         tokens,
			PriceTiers:     prices,
			Description:    pd.Description,
			ImageURL:       pd.Image,
		})
	}
	return &CatalogIndex{products: products}
}

// Products returns the catalog in load order.
func (idx *CatalogIndex) Products() []*models.Product {
	return idx.products
}

func (idx *CatalogIndex) score(normalized string, tokens map[string]struct{}, p *models.Product) int {
	score := 0
	for t := range tokens {
		if _, ok := p.Tokens[t]; ok {
			score++
		}
	}
	if p.NormalizedName != "" && strings.Contains(normalized, p.NormalizedName) {
		score += nameMatchBonus
	}
	return score
}

// FindBestMatch returns the product scoring strictly highest against the
// text, or nil when nothing scores at least 1. Ties keep the earliest
// catalog entry.
func (idx *CatalogIndex) FindBestMatch(text string) *models.Product {
	normalized := Normalize(text)
	tokens := Tokenize(normalized)

	var best *models.Product
	bestScore := 0
	for _, p := range idx.products {
		if s := idx.score(normalized, tokens, p); s > bestScore {
			best = p
			bestScore = s
		}
	}
	if bestScore < 1 {
		return nil
	}
	return best
}

// Rank returns every product with a positive score, sorted descending.
// The sort is stable, so equal scores keep catalog order.
func (idx *CatalogIndex) Rank(text string) []*models.Product {
	normalized := Normalize(text)
	tokens := Tokenize(normalized)

	type scored struct {
		product *models.Product
		score   int
	}
	candidates := make([]scored, 0, len(idx.products))
	for _, p := range idx.products {
		if s := idx.score(normalized, tokens, p); s > 0 {
			candidates = append(candidates, scored{p, s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	ranked := make([]*models.Product, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.product
	}
	return ranked
}
