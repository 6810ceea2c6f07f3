// Package templates stores named, reusable sets of cart lines an agent saves
// for quick reorder. Items are snapshots: quantities and prices are frozen at
// save time and never re-read from the catalog.
package templates

import (
	"errors"
	"strings"
	"time"

	"github.com/devpatel-io/agent-storefront/internal/cart"
)

const (
	TypeTemplate = "template"
	TypeAddOn    = "add on"
)

var (
	ErrInvalidType = errors.New("templateType must be 'template' or 'add on'")
	ErrDuplicate   = errors.New("template with this agentCode and templateName already exists")
	ErrNotFound    = errors.New("template not found")
)

type Item struct {
	ItemCode string  `bson:"itemCode" json:"itemCode"`
	ItemName string  `bson:"itemName" json:"itemName"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Price    float64 `bson:"price" json:"price"`
}

type Template struct {
	ID           string    `bson:"_id" json:"id"`
	AgentCode    string    `bson:"agentCode" json:"agentCode"`
	TemplateName string    `bson:"templateName" json:"templateName"`
	TemplateType string    `bson:"templateType" json:"templateType"`
	Items        []Item    `bson:"items" json:"items"`
	CreatedBy    string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Grouped is the listing shape the storefront renders: plain templates under
// Popular, add-ons under AddOn.
type Grouped struct {
	Popular []Template `json:"Popular"`
	AddOn   []Template `json:"AddOn"`
}

// NormalizeType lowercases and trims the incoming type and rejects anything
// other than the two allowed values.
func NormalizeType(t string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(t))
	if n != TypeTemplate && n != TypeAddOn {
		return "", ErrInvalidType
	}
	return n, nil
}

// Apply expands a template back into cart lines for re-adding to the cart.
// Prices come from the stored snapshot, so a template can go stale relative
// to current pricing; each line carries its snapshot total for checkout.
func Apply(t Template) []cart.Line {
	lines := make([]cart.Line, 0, len(t.Items))
	for _, it := range t.Items {
		if it.Quantity <= 0 {
			continue
		}
		lines = append(lines, cart.Line{
			Product: cart.Product{
				ItemCode:  it.ItemCode,
				ItemName:  it.ItemName,
				UnitPrice: it.Price,
			},
			Quantity: it.Quantity,
			Total:    float64(it.Quantity) * it.Price,
		})
	}
	return lines
}
