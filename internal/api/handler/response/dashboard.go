package response

import (
	"time"

	"analytics/internal/api/models"
)

type Dashboard struct {
	ID          uint                   `json:"id"`
	Title       string                 `json:"title"`
	Description *string                `json:"description,omitempty"`
	Owner       string                 `json:"owner"`
	Layout      models.DashboardLayout `json:"layout"`
	SharedWith  []string               `json:"shared_with"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

type Comment struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
