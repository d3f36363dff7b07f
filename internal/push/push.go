// FilePath: internal/push/push.go
package push

import (
	"context"
	"encoding/json"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/espview/hub/internal/config"
	"github.com/espview/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Service sends Web Push notifications using VAPID. Delivery is best
// effort: callers fire it and move on, failures are only logged.
type Service struct {
	options webpush.Options
}

// NewService creates a push sender from the VAPID configuration.
func NewService(cfg config.PushConfig) *Service {
	return &Service{
		options: webpush.Options{
			Subscriber:      cfg.Subject,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             cfg.TTL,
		},
	}
}

// Enabled reports whether VAPID keys are configured. Without keys the push
// path is a no-op.
func (s *Service) Enabled() bool {
	return s.options.VAPIDPublicKey != "" && s.options.VAPIDPrivateKey != ""
}

// Send delivers one notification to one subscription. No retries.
func (s *Service) Send(ctx context.Context, sub *models.PushSubscription, msg models.PushMessage) error {
	if !s.Enabled() {
		return fmt.Errorf("push disabled: VAPID keys not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	options := s.options
	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &options)
	if err != nil {
		return fmt.Errorf("push send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint rejected notification: %s", resp.Status)
	}

	nuts.L.Debugf("[Push] Delivered %q to device %s (%s)", msg.Title, sub.DeviceID, resp.Status)
	return nil
}
