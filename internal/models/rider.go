package models

const (
	RiderStatusAvailable = "available"
	RiderStatusBusy      = "busy"
)

type Rider struct {
	BaseModel
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}
