package request

// LoginRequest represents an admin PIN login request
type LoginRequest struct {
	PIN string `json:"pin" binding:"required,min=4,max=12"`
}
