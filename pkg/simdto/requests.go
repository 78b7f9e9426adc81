package simdto

type CreateGameResponse struct {
	GameID string `json:"game_id"`
}

type ResignRequest struct {
	GameID      string `json:"game_id"`
	PlayerColor Color  `json:"player_color"`
}

type ResignResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type JoinRequest struct {
	GameID string `json:"game_id"`
}

type SubmitMoveRequest struct {
	GameID       string        `json:"game_id"`
	Color        Color         `json:"color"`
	Move         string        `json:"move"`
	ClockSeconds *ClockSeconds `json:"clock_seconds,omitempty"`
}

type StartClocksRequest struct {
	GameID string `json:"game_id"`
}

type TimeOutRequest struct {
	GameID string `json:"game_id"`
	Color  Color  `json:"color"`
}

// Push payloads.

type JoinedPayload struct {
	Color     Color     `json:"color"`
	GameState GameState `json:"game_state"`
}

type PlayerJoinedPayload struct {
	Color     Color     `json:"color,omitempty"`
	GameState GameState `json:"game_state"`
}

type MoveSubmittedPayload struct {
	Color     Color     `json:"color"`
	GameState GameState `json:"game_state"`
}

type MovesProcessedPayload struct {
	Result    MoveResult `json:"result"`
	GameState GameState  `json:"game_state"`
}

type GameStateUpdatePayload struct {
	GameState *GameState `json:"game_state"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
