package main

// queueMessage mirrors notify.Message as it arrives off the queue.
type queueMessage struct {
	OrderID string `json:"order_id"`
	Kind    string `json:"kind"`
	Status  string `json:"status,omitempty"`
}
