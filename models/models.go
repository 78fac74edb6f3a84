package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is an immutable catalog entry, built once at startup and shared
// read-only across all requests.
type Product struct {
	SKU            string
	Name           string
	NormalizedName string
	// Tokens is the union of normalized name words and normalized keyword words.
	Tokens      map[string]struct{}
	PriceTiers  map[string]float64 // tier label ("unidad", "dos_unidades") -> price
	Description string
	ImageURL    string
}

// UnitPrice returns the single-unit price and whether one is configured.
func (p *Product) UnitPrice() (float64, bool) {
	price, ok := p.PriceTiers["unidad"]
	return price, ok
}

// ShippingRules is the immutable shipping fee table. Name lists are
// pre-normalized; slices keep a deterministic match order.
type ShippingRules struct {
	ValidZones     map[int]struct{}
	PremiumZones   []string
	Departments    []string
	StandardCost   float64
	PremiumCost    float64
	DepartmentCost float64
}

// Stage is the dialogue engine's position in the per-user state machine.
type Stage string

const (
	StageStart            Stage = "start"
	StageProductSelected  Stage = "product_selected"
	StageAwaitingShipping Stage = "awaiting_shipping"
	StageClosing          Stage = "closing"
)

// Intent is the coarse classification of an inbound message.
type Intent string

const (
	IntentPrice    Intent = "price"
	IntentImage    Intent = "image"
	IntentShipping Intent = "shipping"
	IntentHelp     Intent = "help"
	IntentUnknown  Intent = "unknown"
)

// Session holds per-user conversational state. Fields are mutated only while
// the session store's per-key lock is held.
type Session struct {
	UserID          string
	Greeted         bool
	Stage           Stage
	SelectedProduct *Product // back-reference into the catalog, never owned
	LastSeenAt      time.Time
}

// InboundMessage is the platform-independent shape of one incoming event.
type InboundMessage struct {
	UserID          string
	Text            string
	HasImage        bool
	PostbackPayload string
}

// ActionKind discriminates outbound actions.
type ActionKind string

const (
	ActionText  ActionKind = "text"
	ActionImage ActionKind = "image"
)

// OutboundAction is one delivery instruction emitted by the dialogue engine.
// Order within a turn is significant and must be preserved by delivery.
type OutboundAction struct {
	Kind ActionKind
	Text string
	URL  string
}

// TextAction builds a text action.
func TextAction(text string) OutboundAction {
	return OutboundAction{Kind: ActionText, Text: text}
}

// ImageAction builds an image action.
func ImageAction(url string) OutboundAction {
	return OutboundAction{Kind: ActionImage, URL: url}
}

// ChatTurn is one entry of the bounded conversation memory fed to the
// generative fallback.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRecord is an archived chat message.
type ChatRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessageID string             `bson:"message_id" json:"message_id"`
	SenderID  string             `bson:"sender_id" json:"sender_id"`
	Message   string             `bson:"message" json:"message"`
	ImageURL  string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	IsBot     bool               `bson:"is_bot" json:"is_bot"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
