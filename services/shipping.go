package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"petplus-bot/config"
	"petplus-bot/models"
)

// zonePattern matches "zona N" with a 1-2 digit zone number in normalized text.
var zonePattern = regexp.MustCompile(`\bzona (\d{1,2})\b`)

// capitalCollision is the department whose name doubles as the capital city
// name. It only matches as a department when the text also says
// "departamento"; every other department matches on bare substring presence.
const capitalCollision = "guatemala"

// titleES renders a normalized place name for user-facing labels. A Caser
// carries internal state, so each call gets its own.
func titleES(s string) string {
	return cases.Title(language.Spanish).String(s)
}

// QuoteStatus is the outcome kind of a shipping resolution.
type QuoteStatus int

const (
	QuoteResolved QuoteStatus = iota
	// QuotePendingZone means the text mentions a zone without a usable
	// number; the engine should ask for one.
	QuotePendingZone
	QuoteNoMatch
)

// ShippingQuote is the result of resolving free text against the fee table.
type ShippingQuote struct {
	Status QuoteStatus
	Label  string
	Cost   float64
}

// BuildShippingRules turns validated definitions into the immutable runtime
// rule table, normalizing every name once up front.
func BuildShippingRules(def *config.ShippingDef) *models.ShippingRules {
	zones := make(map[int]struct{}, len(def.ValidZones))
	for _, z := range def.ValidZones {
		zones[z] = struct{}{}
	}
	return &models.ShippingRules{
		ValidZones:     zones,
		PremiumZones:   normalizeNames(def.PremiumZones),
		Departments:    normalizeNames(def.Departments),
		StandardCost:   def.StandardCost,
		PremiumCost:    def.PremiumCost,
		DepartmentCost: def.DepartmentCost,
	}
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		n := Normalize(name)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Quote resolves a shipping label and cost from free text. Resolution order:
// explicit zone number, department name, premium-zone name, bare "zona",
// each step short-circuiting on first match.
func Quote(text string, rules *models.ShippingRules) ShippingQuote {
	t := Normalize(text)

	m := zonePattern.FindStringSubmatch(t)
	if m != nil {
		z, err := strconv.Atoi(m[1])
		if err == nil {
			if _, ok := rules.ValidZones[z]; ok {
				for _, prem := range rules.PremiumZones {
					if strings.Contains(t, prem) {
						return ShippingQuote{
							Label: fmt.Sprintf("Zona %d (premium) Q%s", z, formatAmount(rules.PremiumCost)),
							Cost:  rules.PremiumCost,
						}
					}
				}
				return ShippingQuote{
					Label: fmt.Sprintf("Zona %d Q%s", z, formatAmount(rules.StandardCost)),
					Cost:  rules.StandardCost,
				}
			}
		}
	}

	for _, d := range rules.Departments {
		if !strings.Contains(t, d) {
			continue
		}
		if d == capitalCollision && !strings.Contains(t, "departamento") {
			continue
		}
		return ShippingQuote{
			Label: fmt.Sprintf("Departamento de %s Q%s", titleES(d), formatAmount(rules.DepartmentCost)),
			Cost:  rules.DepartmentCost,
		}
	}

	// A premium colonia/municipio mentioned without an explicit zone number.
	for _, prem := range rules.PremiumZones {
		if strings.Contains(t, prem) {
			return ShippingQuote{
				Label: fmt.Sprintf("%s (premium) Q%s", titleES(prem), formatAmount(rules.PremiumCost)),
				Cost:  rules.PremiumCost,
			}
		}
	}

	// "zona" without a parseable number: ask for one. A zone number that
	// simply failed validation is not pending, it is a miss.
	if _, ok := Tokenize(t)["zona"]; ok && m == nil {
		return ShippingQuote{Status: QuotePendingZone}
	}

	return ShippingQuote{Status: QuoteNoMatch}
}

// formatAmount renders a quetzal amount without trailing zeros, matching how
// the fee table is written (Q25, Q37.5).
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
