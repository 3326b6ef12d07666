package models

// ThrowRequest is one snowball throw. Field names mirror what the mini-app
// front end sends.
type ThrowRequest struct {
	TargetUsername string `json:"targetUsername" binding:"required"`
	SenderName     string `json:"senderName" binding:"required"`
}
