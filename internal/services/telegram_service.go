package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/retailadmin/internal/models"
)

// TelegramService posts order and loyalty notifications to the admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     "https://api.telegram.org",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// Notify formats the event for the admin chat. Events without a message
// template are ignored.
func (s *TelegramService) Notify(ctx context.Context, evt Event) error {
	if s.botToken == "" || s.adminChatID == "" {
		return nil
	}

	var text string
	switch evt.Type {
	case EventOrderCreated:
		text = formatNewOrder(evt.Order)
	case EventOrderStatusChanged:
		text = fmt.Sprintf("<b>📍 Order #%s</b>\n%s → <b>%s</b>",
			shortID(evt.Order.ID), evt.PreviousStatus, evt.Order.Status)
	case EventPointsPosted:
		text = fmt.Sprintf("<b>⭐ Loyalty</b>\n%s: %+d points (%s)\nBalance: %d",
			evt.Loyalty.CustomerName, evt.Loyalty.Points, evt.Loyalty.Reason, evt.Loyalty.BalanceAfter)
	default:
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// FormatPrice formats an amount with thousand separators and the currency.
func FormatPrice(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = "Ks"
	}
	str := amount.Truncate(0).String()
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return currency + " " + sign + result.String()
}

func formatNewOrder(order *models.Order) string {
	var itemsList strings.Builder
	for i, item := range order.Items {
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b> (%s/%s)\n   %d x %s = %s\n",
			i+1,
			item.Name,
			item.Size,
			item.Color,
			item.Quantity,
			FormatPrice(item.Price, ""),
			FormatPrice(item.LineTotal(), ""),
		))
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> #%s
<b>👤 Customer:</b> %s
<b>📞 Phone:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %s
<b>💳 Payment:</b> %s
━━━━━━━━━━━━━━━━━━`,
		shortID(order.ID),
		order.CustomerName,
		order.CustomerPhone,
		itemsList.String(),
		FormatPrice(order.TotalAmount, ""),
		order.PaymentMethod,
	)
	return strings.TrimSpace(message)
}
