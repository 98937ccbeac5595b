package subscription

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

const qrFolder = "plans/qr"

// paymentPayload is the URL a patient's banking app opens after scanning the plan QR.
func paymentPayload(baseURL string, planID uuid.UUID, price decimal.Decimal) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse payment base url: %w", err)
	}
	q := u.Query()
	q.Set("plan", planID.String())
	q.Set("amount", price.StringFixed(2))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Service) renderQR(ctx context.Context, planID uuid.UUID, price decimal.Decimal) (string, error) {
	payload, err := paymentPayload(s.qrBaseURL, planID, price)
	if err != nil {
		return "", err
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	ref, err := s.media.Save(ctx, qrFolder, ".png", png)
	if err != nil {
		return "", fmt.Errorf("store qr: %w", err)
	}
	return ref, nil
}
