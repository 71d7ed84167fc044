package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sniper-dashboard/cache"
	"sniper-dashboard/helpers"
	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// Alert types sent to webhooks.
const (
	AlertSimulationDead    = "SIMULATION_DEAD"
	AlertSimulationRevived = "SIMULATION_REVIVED"
)

const (
	defaultCooldown = time.Minute
	deliveryTimeout = 10 * time.Second
)

// WebhookManager handles webhook notifications
type WebhookManager struct {
	urls           []string
	redis          *cache.RedisClient
	client         *resty.Client
	initialBalance float64
	cooldown       time.Duration
	wg             sync.WaitGroup
	log            *logrus.Entry
}

// WebhookPayload represents the JSON payload sent to webhooks
type WebhookPayload struct {
	AlertID    string                 `json:"AlertID"`
	AlertType  string                 `json:"AlertType"`
	DetectedAt time.Time              `json:"DetectedAt"`
	FromStatus string                 `json:"FromStatus"`
	ToStatus   string                 `json:"ToStatus"`
	Balance    float64                `json:"Balance"`
	Cash       float64                `json:"Cash"`
	Score      int                    `json:"Score"`
	Level      string                 `json:"Level"`
	PnL        string                 `json:"PnL"`
	Message    string                 `json:"Message"`
	Metadata   map[string]interface{} `json:"Metadata,omitempty"`
}

// NewWebhookManager creates a new webhook manager. redis may be nil, in
// which case no cooldown is applied.
func NewWebhookManager(urls []string, redis *cache.RedisClient, initialBalance float64) *WebhookManager {
	return &WebhookManager{
		urls:           urls,
		redis:          redis,
		initialBalance: initialBalance,
		cooldown:       defaultCooldown,
		client: resty.New().
			SetTimeout(deliveryTimeout).
			SetRetryCount(2).
			SetRetryWaitTime(time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", "Sniper-Dashboard-Webhook/1.0"),
		log: logging.WithComponent("webhooks"),
	}
}

// SetCooldown changes the de-duplication window.
func (wm *WebhookManager) SetCooldown(d time.Duration) {
	wm.cooldown = d
}

// NotifyStatusChange implements handlers.StatusNotifier. Delivery is
// asynchronous; repeated alerts of the same type within the cooldown are
// suppressed.
func (wm *WebhookManager) NotifyStatusChange(change models.StatusChange) {
	if len(wm.urls) == 0 {
		return
	}

	payload := wm.CreatePayload(change)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !cache.AcquireCooldown(ctx, wm.redis, "webhook:"+payload.AlertType, wm.cooldown) {
		wm.log.WithField("alert", payload.AlertType).Info("🔕 Alert suppressed by cooldown")
		return
	}

	for _, url := range wm.urls {
		wm.wg.Add(1)
		go func(url string) {
			defer wm.wg.Done()
			wm.deliverWebhook(url, payload)
		}(url)
	}
}

// Wait blocks until in-flight deliveries finish.
func (wm *WebhookManager) Wait() {
	wm.wg.Wait()
}

// CreatePayload generates the webhook payload from a status change
func (wm *WebhookManager) CreatePayload(change models.StatusChange) WebhookPayload {
	alertType := AlertSimulationRevived
	if change.Died() {
		alertType = AlertSimulationDead
	}

	payload := WebhookPayload{
		AlertID:    uuid.NewString(),
		AlertType:  alertType,
		DetectedAt: change.At,
		FromStatus: string(change.From),
		ToStatus:   string(change.To),
	}

	sim := change.State
	if sim == nil {
		payload.Message = fmt.Sprintf("Simulation %s -> %s", change.From, change.To)
		return payload
	}

	summary := sim.Summarize(wm.initialBalance)
	pnl, _ := summary.PnL.Float64()

	payload.Balance = sim.Balance
	payload.Cash = sim.Cash
	payload.Score = sim.Score
	payload.Level = sim.Level
	payload.PnL = summary.PnL.StringFixed(2)
	payload.Metadata = map[string]interface{}{
		"pnl_pct":        summary.PnLPct.StringFixed(2),
		"display_level":  summary.DisplayLevel,
		"open_positions": summary.PositionCount,
		"trigger":        change.Trigger,
	}

	// Example: "💀 ACCOUNT BLOWN! Balance: ₹0 | P&L: -₹10,000 (-100.00%) | Score: -12 | Level 1"
	if change.Died() {
		payload.Message = fmt.Sprintf("💀 ACCOUNT BLOWN! Balance: %s | P&L: %s (%s%%) | Score: %d | Level %d",
			helpers.FormatRupee(sim.Balance),
			helpers.FormatSignedRupee(pnl),
			summary.PnLPct.StringFixed(2),
			sim.Score,
			summary.DisplayLevel,
		)
	} else {
		payload.Message = fmt.Sprintf("💚 SIMULATION RESET. Balance: %s | Cash: %s | Auto mode locked again",
			helpers.FormatRupee(sim.Balance),
			helpers.FormatRupee(sim.Cash),
		)
	}
	return payload
}

func (wm *WebhookManager) deliverWebhook(url string, payload WebhookPayload) {
	log := wm.log.WithFields(logrus.Fields{"url": url, "alert": payload.AlertType, "alert_id": payload.AlertID})
	log.Debug("🔹 Sending webhook")

	resp, err := wm.client.R().
		SetBody(payload).
		Post(url)
	if err != nil {
		log.WithError(err).Warn("⚠️  Webhook delivery failed")
		return
	}
	if resp.IsError() {
		log.WithField("status", resp.StatusCode()).Warn("⚠️  Webhook rejected")
		return
	}
	log.WithField("status", resp.StatusCode()).Info("📨 Webhook delivered")
}
