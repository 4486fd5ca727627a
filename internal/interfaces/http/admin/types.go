package admin

import "time"

type failedNotificationResponse struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Reference string    `json:"reference,omitempty"`
	Payload   string    `json:"payload"`
	Error     string    `json:"error"`
	Attempts  int       `json:"attempts"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type failedNotificationListResponse struct {
	Items []failedNotificationResponse `json:"items"`
}
