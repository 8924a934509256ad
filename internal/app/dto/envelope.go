package dto

import "time"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Message struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ErrorBody struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
