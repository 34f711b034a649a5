// Package fleet is the dashboard's data layer: typed services over the
// remote fleet API, one per resource collection, plus the auth endpoints
// that establish and maintain the session.
package fleet

import (
	"net/url"
	"strconv"
	"time"

	"github.com/mehmet-raif33/ulasfleet/internal/client/api"
)

// Vehicle is one fleet vehicle record.
type Vehicle struct {
	ID        string    `json:"id"`
	Plate     string    `json:"plate"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Personnel is one staff record.
type Personnel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transaction is one income or expense entry, optionally tied to a vehicle.
type Transaction struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"categoryId"`
	VehicleID   string    `json:"vehicleId,omitempty"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TransactionCategory groups transactions; Type is "income" or "expense".
type TransactionCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Activity is one audit log entry emitted by the data service.
type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	UserID      string    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListParams narrows a collection listing. Zero values are omitted from
// the query string so the service applies its own defaults.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

func (p ListParams) query() string {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Page is one page of a listing plus the service's pagination block,
// when the response carried one.
type Page[T any] struct {
	Items      []T
	Pagination *api.Pagination
}
