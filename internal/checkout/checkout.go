// Package checkout turns the current cart contents into the immutable order
// lines and grand total shown on the checkout screen and sent to the server.
package checkout

import (
	"math"

	"github.com/devpatel-io/agent-storefront/internal/cart"
)

// OrderLine is a cart line frozen for submission. Field names follow the
// order wire contract.
type OrderLine struct {
	ItemCode  string  `json:"itemCode"`
	ItemName  string  `json:"itemName"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
	LineTotal float64 `json:"totalPrice"`
}

// Assemble maps each cart line 1:1 to an OrderLine and sums the grand total,
// rounded to two decimals for display. Pure: safe to call repeatedly for
// preview before the user confirms.
//
// A line coming from a saved template may carry a snapshot total but no unit
// price; in that case the stored total is used as-is.
func Assemble(lines []cart.Line) ([]OrderLine, float64) {
	out := make([]OrderLine, 0, len(lines))
	var grand float64
	for _, ln := range lines {
		lt := float64(ln.Quantity) * ln.UnitPrice
		if ln.UnitPrice == 0 && ln.Total > 0 {
			lt = ln.Total
		}
		out = append(out, OrderLine{
			ItemCode:  ln.ItemCode,
			ItemName:  ln.ItemName,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice,
			LineTotal: lt,
		})
		grand += lt
	}
	return out, Round2(grand)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
