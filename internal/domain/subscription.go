package domain

import "time"

// PushSubscription is one registered browser device: a Web Push endpoint plus
// the client encryption keys. The endpoint is unique across the table and acts
// as the natural upsert key; the ULID and created_at survive re-registration.
type PushSubscription struct {
	SubscriptionID string     `json:"id" dynamodbav:"subscription_id"`
	UserID         string     `json:"user_id" dynamodbav:"user_id"`
	Endpoint       string     `json:"endpoint" dynamodbav:"endpoint"`
	P256dh         string     `json:"p256dh" dynamodbav:"p256dh"`
	Auth           string     `json:"auth" dynamodbav:"auth"`
	DeviceInfo     DeviceInfo `json:"device_info" dynamodbav:"device_info"`
	CreatedAt      time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

// DeviceInfo is the browser metadata captured at opt-in. Purely informational,
// shown on the device-management page.
type DeviceInfo struct {
	UserAgent  string `json:"user_agent,omitempty" dynamodbav:"user_agent"`
	Platform   string `json:"platform,omitempty" dynamodbav:"platform"`
	Language   string `json:"language,omitempty" dynamodbav:"language"`
	ScreenSize string `json:"screen_size,omitempty" dynamodbav:"screen_size"`
}

// SubscriptionKeys mirrors the keys object of the browser PushSubscription JSON.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// WebPushSubscription mirrors PushSubscription.toJSON() as sent by the browser.
type WebPushSubscription struct {
	Endpoint string           `json:"endpoint" validate:"required,url"`
	Keys     SubscriptionKeys `json:"keys"`
}

// RegisterSubscriptionRequest is the /push/subscribe request body. The
// frontend sends deviceInfo camel-cased, matching its PushSubscription JSON.
type RegisterSubscriptionRequest struct {
	Subscription WebPushSubscription `json:"subscription"`
	DeviceInfo   *DeviceInfo         `json:"deviceInfo"`
}

// UnregisterSubscriptionRequest is the /push/subscribe delete body.
type UnregisterSubscriptionRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}
