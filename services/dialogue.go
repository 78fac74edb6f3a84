package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"petplus-bot/models"
)

// Fixed reply copy, in the storefront's voice.
const (
	welcomeText       = "¡Hola! Bienvenid@ a Pet Plus ¿Cómo podemos ayudarle?"
	menuPromptText    = "¿Te muestro una foto, deseas el precio o prefieres ver los costos de envío?"
	menuReminderText  = "¿Quieres que te envíe **foto**, **precio** o calcule **envío** para este producto?"
	noImageText       = "Aún no tengo imagen cargada para este producto."
	shippingOfferText = "Si me indicas tu zona o departamento, te digo el costo de envío y te preparo el total. 😊"
	askZoneText       = "¿De qué **zona** eres? (por ejemplo: “zona 2”)."
	askZoneTotalText  = "¿Te calculo el envío? Dime tu zona (1–25) o departamento."
	clarifyShipText   = "Para calcular el envío, ¿podrías indicar **zona** (1–25) o **departamento**?"
	helpText          = "Puedo ayudarte con información de productos (descripción, foto, precio) y calcular el envío por zona o departamento. 😊"
	askProductText    = "Cuéntame qué producto buscas (por ejemplo: “rascador”, “guantes húmedos”, “pingüino rodador”)."
	gotImageText      = "Recibí tu imagen 👍. ¿Sobre qué producto necesitas información? (puedes escribir el nombre)"
)

// maxSuggestions caps the disambiguation prompt.
const maxSuggestions = 3

// DialogueEngine drives one conversation turn: greeting, product selection,
// intent resolution, shipping quotes, and the generative fallback. Every
// turn for a user runs under that user's session lock.
type DialogueEngine struct {
	catalog  *CatalogIndex
	rules    *models.ShippingRules
	intents  *IntentClassifier
	sessions *SessionStore
	memory   *ConversationMemory
	generate GenerateFunc // nil disables the generative fallback
}

func NewDialogueEngine(
	catalog *CatalogIndex,
	rules *models.ShippingRules,
	sessions *SessionStore,
	memory *ConversationMemory,
	generate GenerateFunc,
) *DialogueEngine {
	return &DialogueEngine{
		catalog:  catalog,
		rules:    rules,
		intents:  NewIntentClassifier(),
		sessions: sessions,
		memory:   memory,
		generate: generate,
	}
}

// HandleTurn processes one inbound message and returns the ordered outbound
// actions for it. The session is fetched or created, mutated, and left
// consistent even when the generative fallback fails.
func (e *DialogueEngine) HandleTurn(ctx context.Context, inbound models.InboundMessage) []models.OutboundAction {
	var actions []models.OutboundAction
	e.sessions.WithSession(inbound.UserID, func(s *models.Session) {
		actions = e.processTurn(ctx, s, inbound)

		// Record the turn while still holding the session lock so the
		// history never interleaves with a concurrent turn for this user.
		if text := strings.TrimSpace(inbound.Text); text != "" {
			e.memory.Append(inbound.UserID, "user", text)
		}
		for _, a := range actions {
			if a.Kind == models.ActionText {
				e.memory.Append(inbound.UserID, "assistant", a.Text)
			}
		}
	})
	return actions
}

func (e *DialogueEngine) processTurn(ctx context.Context, s *models.Session, inbound models.InboundMessage) []models.OutboundAction {
	var out []models.OutboundAction

	// Postbacks greet once and never consume a catalog turn.
	if payload := strings.ToLower(strings.TrimSpace(inbound.PostbackPayload)); payload != "" {
		if (payload == "get_started" || payload == "start") && !s.Greeted {
			s.Greeted = true
			out = append(out, models.TextAction(welcomeText))
		}
		return out
	}

	// Greet once, then keep processing the same message.
	if !s.Greeted {
		s.Greeted = true
		out = append(out, models.TextAction(welcomeText))
	}

	if strings.TrimSpace(inbound.Text) == "" {
		if inbound.HasImage {
			out = append(out, models.TextAction(gotImageText))
		}
		return out
	}

	if s.SelectedProduct == nil {
		return append(out, e.selectProduct(ctx, s, inbound)...)
	}

	return append(out, e.resolveIntent(s, inbound.Text)...)
}

// selectProduct tries to pin a catalog product for the session, or prompts
// for disambiguation. Only when the catalog has nothing at all to suggest
// does the generative fallback run.
func (e *DialogueEngine) selectProduct(ctx context.Context, s *models.Session, inbound models.InboundMessage) []models.OutboundAction {
	if p := e.catalog.FindBestMatch(inbound.Text); p != nil {
		s.SelectedProduct = p
		s.Stage = models.StageProductSelected

		// A first message like "precio de rascador" both selects the product
		// and asks for the price, so honor the price intent right away.
		if e.intents.Classify(inbound.Text) == models.IntentPrice {
			s.Stage = models.StageAwaitingShipping
			return []models.OutboundAction{
				models.TextAction(productInfoText(p)),
				models.TextAction(shippingOfferText),
			}
		}
		return []models.OutboundAction{
			models.TextAction(productInfoText(p)),
			models.TextAction(menuPromptText),
		}
	}

	if ranked := e.catalog.Rank(inbound.Text); len(ranked) > 0 {
		if len(ranked) > maxSuggestions {
			ranked = ranked[:maxSuggestions]
		}
		names := make([]string, len(ranked))
		for i, p := range ranked {
			names[i] = p.Name
		}
		return []models.OutboundAction{
			models.TextAction("¿Te refieres a alguno de estos?: " + strings.Join(names, " / ")),
		}
	}

	return []models.OutboundAction{
		models.TextAction(e.fallbackReply(ctx, inbound.UserID, inbound.Text)),
	}
}

func (e *DialogueEngine) resolveIntent(s *models.Session, text string) []models.OutboundAction {
	p := s.SelectedProduct
	intent := e.intents.Classify(text)

	switch {
	case intent == models.IntentImage:
		if p.ImageURL != "" {
			return []models.OutboundAction{models.ImageAction(p.ImageURL)}
		}
		return []models.OutboundAction{models.TextAction(noImageText)}

	case intent == models.IntentPrice:
		s.Stage = models.StageAwaitingShipping
		return []models.OutboundAction{
			models.TextAction(productInfoText(p)),
			models.TextAction(shippingOfferText),
		}

	case intent == models.IntentShipping || s.Stage == models.StageAwaitingShipping:
		return e.resolveShipping(s, text)

	case intent == models.IntentHelp:
		return []models.OutboundAction{models.TextAction(helpText)}
	}

	// Sometimes "unknown" still mentions a price word.
	if strings.Contains(Normalize(text), "precio") {
		s.Stage = models.StageAwaitingShipping
		return []models.OutboundAction{
			models.TextAction(productInfoText(p)),
			models.TextAction(askZoneTotalText),
		}
	}

	return []models.OutboundAction{models.TextAction(menuReminderText)}
}

func (e *DialogueEngine) resolveShipping(s *models.Session, text string) []models.OutboundAction {
	quote := Quote(text, e.rules)

	switch quote.Status {
	case QuotePendingZone:
		s.Stage = models.StageAwaitingShipping
		return []models.OutboundAction{models.TextAction(askZoneText)}

	case QuoteResolved:
		s.Stage = models.StageClosing
		if unit, ok := s.SelectedProduct.UnitPrice(); ok {
			total := unit + quote.Cost
			return []models.OutboundAction{models.TextAction(fmt.Sprintf(
				"Envío a **%s**. Producto Q%s + envío Q%s = **Total Q%s**.\nSi te parece bien, dime tu dirección y nombre para coordinar la entrega. 🧾🚚",
				quote.Label, formatAmount(unit), formatAmount(quote.Cost), formatAmount(total),
			))}
		}
		return []models.OutboundAction{models.TextAction(fmt.Sprintf(
			"Envío a **%s**. Si deseas, te confirmo el total cuando me indiques la cantidad que llevarás.",
			quote.Label,
		))}
	}

	s.Stage = models.StageAwaitingShipping
	return []models.OutboundAction{models.TextAction(clarifyShipText)}
}

// fallbackReply asks the generative capability for a reply, degrading to the
// static product prompt on any failure. Session state is untouched either way.
func (e *DialogueEngine) fallbackReply(ctx context.Context, userID, text string) string {
	if e.generate == nil {
		return askProductText
	}

	reply, err := e.generate(ctx, e.memory.History(userID), text)
	if err != nil {
		slog.Warn("Generative fallback failed, using static prompt", "userID", userID, "error", err)
		return askProductText
	}
	if strings.TrimSpace(reply) == "" {
		return askProductText
	}
	return reply
}

// productInfoText renders name, description and configured price tiers.
// Prices come only from the catalog.
func productInfoText(p *models.Product) string {
	var tiers []string
	if v, ok := p.PriceTiers["unidad"]; ok {
		tiers = append(tiers, "1 x Q"+formatAmount(v))
	}
	if v, ok := p.PriceTiers["dos_unidades"]; ok {
		tiers = append(tiers, "2 x Q"+formatAmount(v))
	}
	prices := "Precio disponible bajo consulta."
	if len(tiers) > 0 {
		prices = strings.Join(tiers, " | ")
	}
	return strings.TrimSpace(fmt.Sprintf("%s\n\n%s\n\nPrecios: %s", p.Name, p.Description, prices))
}
