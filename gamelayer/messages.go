package gamelayer

// Game endpoints, relative to the API base URL.
const (
	PathNewGame   = "/game/new"
	PathStartGame = "/game/start"
	PathEndGame   = "/game/end"
	PathGameInfo  = "/game/info"
	PathGameState = "/game/state"
	PathScore     = "/game/score"
)

type NewGameResponse struct {
	GameID string `json:"gameId"`
}

// GameInfo describes a game without its full state. An info request without
// a game id describes the caller's most recent game.
type GameInfo struct {
	GameID   string `json:"gameId"`
	MapName  string `json:"mapName"`
	Turn     int    `json:"turn"`
	MaxTurns int    `json:"maxTurns"`
	Started  bool   `json:"started"`
	Ended    bool   `json:"ended"`
}
