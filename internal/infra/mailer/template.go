package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"dealradar/internal/domain/service"
	"dealradar/internal/errors"
)

var newDealsTemplate = template.Must(template.New("newDeals").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #10b981; margin-bottom: 20px;">New Deals Available!</h1>
  <p>Hi {{.DisplayName}},</p>
  <p>We found {{len .Deals}} new deals that match your preferences:</p>
  {{range .Deals}}
  <div style="border: 1px solid #e5e7eb; border-radius: 8px; padding: 16px; margin-bottom: 16px;">
    <h3 style="margin: 0 0 8px 0;">{{.Name}}</h3>
    <p style="margin: 0; color: #6b7280;">
      <strong>${{printf "%.2f" .DiscountPrice}}</strong>
      {{if gt .OriginalPrice 0.0}} (was ${{printf "%.2f" .OriginalPrice}}){{end}}
    </p>
    <p style="margin: 4px 0 0 0; color: #6b7280; font-size: 14px;">{{.StoreName}} - {{.StoreLocality}}</p>
  </div>
  {{end}}
  <p style="color: #6b7280; font-size: 14px; margin-top: 32px;">
    You're receiving this email because you've enabled deal notifications in your preferences.
  </p>
</body>
</html>`))

var priceDropTemplate = template.Must(template.New("priceDrop").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #ef4444; margin-bottom: 20px;">Price Drop!</h1>
  <p>Hi {{.DisplayName}},</p>
  <div style="border: 1px solid #e5e7eb; border-radius: 8px; padding: 16px; margin-bottom: 16px;">
    <h3 style="margin: 0 0 8px 0;">{{.Drop.ProductName}}</h3>
    <p style="margin: 0; color: #6b7280;">
      <strong>${{printf "%.2f" .Drop.NewPrice}}</strong> (was ${{printf "%.2f" .Drop.OldPrice}})
    </p>
    <p style="margin: 4px 0 0 0; color: #6b7280; font-size: 14px;">{{.Drop.StoreName}}</p>
  </div>
  <p style="color: #6b7280; font-size: 14px; margin-top: 32px;">
    You're receiving this email because you've enabled price drop notifications in your preferences.
  </p>
</body>
</html>`))

func newDealsSubject(count int) string {
	return fmt.Sprintf("🆕 %d New Deals Available!", count)
}

func priceDropSubject(drop service.PriceDropAlert) string {
	return fmt.Sprintf("🔻 Price Drop: %s now $%.2f!", drop.ProductName, drop.NewPrice)
}

func renderNewDeals(displayName string, deals []service.DealAlert) (string, error) {
	var buf bytes.Buffer
	err := newDealsTemplate.Execute(&buf, struct {
		DisplayName string
		Deals       []service.DealAlert
	}{DisplayName: displayName, Deals: deals})
	if err != nil {
		return "", errors.Wrap(err, "render new deals email")
	}

	return buf.String(), nil
}

func renderPriceDrop(displayName string, drop service.PriceDropAlert) (string, error) {
	var buf bytes.Buffer
	err := priceDropTemplate.Execute(&buf, struct {
		DisplayName string
		Drop        service.PriceDropAlert
	}{DisplayName: displayName, Drop: drop})
	if err != nil {
		return "", errors.Wrap(err, "render price drop email")
	}

	return buf.String(), nil
}
