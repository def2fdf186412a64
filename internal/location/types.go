package location

import (
	"encoding/json"
	"fmt"
)

// InventoryItem is one stock line at a location.
type InventoryItem struct {
	Sku         string `json:"sku"`
	Name        string `json:"name"`
	IsAvailable bool   `json:"isAvailable"`
}

// Inventory is the stock snapshot the gateway returns for a location.
type Inventory struct {
	Items []InventoryItem `json:"items"`
}

// Status is the operational state of a location, as reported upstream.
type Status int

const (
	StatusStartingUp Status = iota + 1
	StatusOpen
	StatusNoNewOrders
	StatusClosingDown
	StatusClosed
)

func (s Status) Valid() bool {
	return s >= StatusStartingUp && s <= StatusClosed
}

func (s Status) String() string {
	switch s {
	case StatusStartingUp:
		return "StartingUp"
	case StatusOpen:
		return "Open"
	case StatusNoNewOrders:
		return "NoNewOrders"
	case StatusClosingDown:
		return "ClosingDown"
	case StatusClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// UnmarshalJSON rejects values outside the five known states.
func (s *Status) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("location status: %w", err)
	}
	if !Status(n).Valid() {
		return fmt.Errorf("location status: unknown value %d", n)
	}
	*s = Status(n)
	return nil
}

// StatusResponse is the gateway's status projection for one location.
type StatusResponse struct {
	LocationID  string `json:"locationId"`
	Value       Status `json:"value"`
	Description string `json:"description"`
}

// PickupItem is one line of an ETA request.
type PickupItem struct {
	Sku      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// TheoreticalEta is computed entirely by the gateway and forwarded as-is.
type TheoreticalEta = json.RawMessage

type etaRequest struct {
	Items []PickupItem `json:"items"`
}
