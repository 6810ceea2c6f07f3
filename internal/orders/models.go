package orders

import (
	"math"
	"time"
)

// Line is one item inside an order. Quantity is what the agent asked for;
// AcceptedQuantity is what the depot confirmed. TotalPrice tracks the
// accepted quantity once the order has been reviewed.
type Line struct {
	ItemCode         string     `bson:"itemCode" json:"itemCode"`
	ItemName         string     `bson:"itemName" json:"itemName"`
	Quantity         int        `bson:"quantity" json:"quantity"`
	Price            float64    `bson:"price" json:"price"`
	AcceptedQuantity int        `bson:"acceptedQuantity" json:"acceptedQuantity"`
	Status           LineStatus `bson:"status" json:"status"`
	TotalPrice       float64    `bson:"totalPrice" json:"totalPrice"`
}

type Order struct {
	ID              string     `bson:"_id" json:"id"`
	SubmissionToken string     `bson:"submissionToken,omitempty" json:"submissionToken,omitempty"`
	AgentCode       string     `bson:"agentCode" json:"agentCode"`
	Route           string     `bson:"route" json:"route"`
	Lines           []Line     `bson:"itemInfo" json:"items"`
	TotalOrder      float64    `bson:"TotalOrder" json:"TotalOrder"`
	Status          Status     `bson:"status" json:"status"`
	ApprovedAt      *time.Time `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// LineUpdate carries the depot's review of a single line.
type LineUpdate struct {
	ItemCode         string     `json:"itemCode"`
	AcceptedQuantity int        `json:"acceptedQuantity"`
	Price            float64    `json:"price"`
	Status           LineStatus `json:"status"`
}

// ApplyLineUpdates merges review updates into the order lines by item code
// and recomputes each touched line total as acceptedQuantity*price, plus the
// new order total over all lines. Lines without a matching update are kept
// as-is. Pure; the repository persists the result.
func ApplyLineUpdates(lines []Line, updates []LineUpdate) ([]Line, float64) {
	byCode := make(map[string]LineUpdate, len(updates))
	for _, u := range updates {
		byCode[u.ItemCode] = u
	}
	out := make([]Line, len(lines))
	var total float64
	for i, ln := range lines {
		if u, ok := byCode[ln.ItemCode]; ok {
			ln.AcceptedQuantity = u.AcceptedQuantity
			ln.Price = u.Price
			ln.Status = u.Status
			ln.TotalPrice = float64(u.AcceptedQuantity) * u.Price
		}
		total += float64(ln.AcceptedQuantity) * ln.Price
		out[i] = ln
	}
	return out, round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
