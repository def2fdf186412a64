package main

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Commerce webhook event types that touch the product mirror.
const (
	eventProductCreated = "product.created"
	eventProductUpdated = "product.updated"
	eventProductDeleted = "product.deleted"
)

// WebhookMessage is a commerce webhook forwarded to the queue:
// {"type":"product.updated","data":{"id":"..."}}.
type WebhookMessage struct {
	Type      string
	ProductID string
}

func parseWebhookMessage(body string) (WebhookMessage, bool) {
	if !gjson.Valid(body) {
		return WebhookMessage{}, false
	}
	parsed := gjson.Parse(body)
	msg := WebhookMessage{
		Type:      strings.TrimSpace(parsed.Get("type").String()),
		ProductID: strings.TrimSpace(parsed.Get("data.id").String()),
	}
	return msg, true
}
