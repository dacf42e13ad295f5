package request

// StartGameRequest is the request body for starting a solo game
type StartGameRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Level       string `json:"level"`
}

// GuessRequest is the request body for submitting a guess
type GuessRequest struct {
	UserID string `json:"user_id"`
	Value  int    `json:"value"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Level       string `json:"level"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
}

// StartRoomRequest is the request body for starting a room
type StartRoomRequest struct {
	UserID string `json:"user_id"`
}

// CancelRoomRequest is the request body for cancelling a room
type CancelRoomRequest struct {
	UserID string `json:"user_id"`
}
