package source

import (
	"strconv"
	"strings"
	"time"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/service"
)

const (
	unknownStoreName = "Unknown Store"
	unknownItemName  = "Unknown Item"
)

// flexPrice decodes a price the vendor serves as either a JSON number or a
// numeric string. Anything unparsable decodes to zero rather than failing the
// whole payload.
type flexPrice float64

func (p *flexPrice) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*p = 0

		return nil
	}

	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*p = 0

		return nil
	}

	*p = flexPrice(v)

	return nil
}

// storesResponse is the wire shape of GET /stores.
type storesResponse struct {
	Data []*rawStore `json:"data"`
}

// itemsResponse is the wire shape of GET /items/, keyed by store external id.
type itemsResponse struct {
	Data map[string][]*rawItem `json:"data"`
}

type rawStore struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address struct {
		FullAddress string `json:"fullAddress"`
	} `json:"address"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Items []*rawItem `json:"items"`
}

type rawItem struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	OriginalPrice     flexPrice `json:"originalPrice"`
	Price             flexPrice `json:"price"`
	QuantityAvailable int       `json:"quantityAvailable"`
	ExpiryDate        string    `json:"expiryDate"`
	Image             *struct {
		URL string `json:"url"`
	} `json:"image"`
}

// normalizeStore converts one raw store listing into a snapshot carrying the
// store's mutable fields and its inlined item observations.
func normalizeStore(raw *rawStore, localityKey string) *service.StoreSnapshot {
	name := raw.Name
	if name == "" {
		name = unknownStoreName
	}

	items := make([]*service.ProductObservation, 0, len(raw.Items))
	for _, item := range raw.Items {
		items = append(items, normalizeItem(item))
	}

	return &service.StoreSnapshot{
		Store: &entity.Store{
			ExternalID: raw.ID,
			Name:       name,
			Address:    raw.Address.FullAddress,
			Locality:   localityKey,
			Latitude:   raw.Location.Latitude,
			Longitude:  raw.Location.Longitude,
		},
		Items: items,
	}
}

// normalizeItem converts one raw item listing into a product observation.
// The discount percentage derives from both prices and stays nil when the
// original price is absent or zero. A category missing upstream is inferred
// from the item's name and description.
func normalizeItem(raw *rawItem) *service.ProductObservation {
	name := raw.Name
	if name == "" {
		name = unknownItemName
	}

	original := float64(raw.OriginalPrice)
	discount := float64(raw.Price)

	var discountPercent *int
	if original > 0 {
		pct := int((original - discount) / original * 100)
		discountPercent = &pct
	}

	var expiry *time.Time
	if raw.ExpiryDate != "" {
		if t, err := time.Parse(time.RFC3339, raw.ExpiryDate); err == nil {
			utc := t.UTC()
			expiry = &utc
		}
	}

	var imageURL string
	if raw.Image != nil {
		imageURL = raw.Image.URL
	}

	category := raw.Category
	if category == "" {
		category = DetectCategory(name, raw.Description)
	}

	return &service.ProductObservation{
		ExternalID:        raw.ID,
		Name:              name,
		Description:       raw.Description,
		Category:          category,
		OriginalPrice:     original,
		DiscountPrice:     discount,
		DiscountPercent:   discountPercent,
		QuantityAvailable: raw.QuantityAvailable,
		ExpiryDate:        expiry,
		ImageURL:          imageURL,
	}
}
