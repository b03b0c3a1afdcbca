package service

import (
	"context"
	"time"
)

// DealAlert is the transport-agnostic payload for one deal inside an alert.
type DealAlert struct {
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	OriginalPrice     float64    `json:"original_price"`
	DiscountPrice     float64    `json:"discount_price"`
	DiscountPercent   *int       `json:"discount_percent"`
	QuantityAvailable int        `json:"quantity_available"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	StoreName         string     `json:"store_name"`
	StoreLocality     string     `json:"store_locality"`
}

// PriceDropAlert describes a price reduction on a previously seen deal.
type PriceDropAlert struct {
	ProductName string  `json:"product_name"`
	OldPrice    float64 `json:"old_price"`
	NewPrice    float64 `json:"new_price"`
	StoreName   string  `json:"store_name"`
}

// DealAlertSender is the outbound notification transport contract.
// Implementations must not panic across this boundary; a failed send is
// reported as an error and counted as a non-success by the dispatcher.
type DealAlertSender interface {
	// SendDealAlert sends one batched new-deal alert to a subscriber.
	SendDealAlert(ctx context.Context, email, displayName string, deals []DealAlert) error

	// SendPriceDropAlert sends one price-drop alert to a subscriber.
	SendPriceDropAlert(ctx context.Context, email, displayName string, drop PriceDropAlert) error
}
