package models

// RegisterRequest is the full registration intake: the platform account id,
// the handle, and the notification delivery metadata.
type RegisterRequest struct {
	Fid      int64  `json:"fid" binding:"required"`
	Username string `json:"username" binding:"required"`
	Token    string `json:"token" binding:"required"`
	URL      string `json:"url" binding:"required,url"`
}

// NotificationDetails is the token/url pair carried by platform webhook
// events.
type NotificationDetails struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// WebhookEvent is the degraded intake path: an asynchronous platform
// callback that may carry notification details without a usable account id.
type WebhookEvent struct {
	Event               string               `json:"event"`
	NotificationDetails *NotificationDetails `json:"notificationDetails"`
}
