package request

type ChatQuery struct {
	Question string `json:"question" validate:"required"`
}
