package clients

import "time"

// Client is a read-only view of a CRM client, limited to the fields the
// pricing engine consumes. Client management itself lives elsewhere.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// Audience is one measurement of a client's audience history.
type Audience struct {
	ClientID int64 `json:"client_id"`
	Year     int   `json:"year"`
	Wave     int   `json:"wave"`
	Value    int64 `json:"value"`
}
