package gamelayer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LazyTarget/Considition-2020/model"
)

// Session plays one game. It keeps the state returned by the last call so
// State is free to call any number of times. A session is not safe for
// concurrent use; run one per game.
type Session struct {
	client *Client
	state  *model.GameState
	ended  bool
}

func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// New creates and starts a game on mapName.
func (s *Session) New(ctx context.Context, mapName string) error {
	gameID, err := s.client.NewGame(ctx, mapName)
	if err != nil {
		return fmt.Errorf("new game on %q: %w", mapName, err)
	}
	slog.Info("new game", "map", mapName, "game", gameID)

	if err := s.client.StartGame(ctx, gameID); err != nil {
		return fmt.Errorf("start game %s: %w", gameID, err)
	}
	slog.Info("game started", "game", gameID)
	s.ended = false
	return s.load(ctx, gameID)
}

// Resume attaches to gameID, or to the most recent game when gameID is empty.
func (s *Session) Resume(ctx context.Context, gameID string) error {
	info, err := s.client.GameInfo(ctx, gameID)
	if err != nil {
		return fmt.Errorf("game info: %w", err)
	}
	if info.GameID == "" {
		return ErrNoGame
	}
	if err := s.load(ctx, info.GameID); err != nil {
		return err
	}
	s.ended = info.Ended
	if s.ended {
		slog.Info("game was already ended", "game", info.GameID, "turn", s.state.Turn)
	}
	if gameID == "" {
		slog.Info("resuming previous game", "game", info.GameID, "turn", s.state.Turn)
	} else {
		slog.Info("resuming specified game", "game", info.GameID, "turn", s.state.Turn)
	}
	return nil
}

// Refresh re-reads the state of the current game.
func (s *Session) Refresh(ctx context.Context) error {
	if s.state == nil {
		return ErrNoGame
	}
	return s.load(ctx, s.state.GameID)
}

func (s *Session) load(ctx context.Context, gameID string) error {
	gs, err := s.client.GameState(ctx, gameID)
	if err != nil {
		return fmt.Errorf("game state %s: %w", gameID, err)
	}
	if gs.GameID == "" {
		gs.GameID = gameID
	}
	s.state = &gs
	return nil
}

// State returns the latest known state, or nil before New or Resume.
func (s *Session) State() *model.GameState {
	return s.state
}

// GameID returns the current game id, or "" before New or Resume.
func (s *Session) GameID() string {
	if s.state == nil {
		return ""
	}
	return s.state.GameID
}

// Ended reports whether the server has closed the current game, either by an
// EndGame call or before it was resumed.
func (s *Session) Ended() bool {
	return s.ended
}

func (s *Session) EndGame(ctx context.Context, gameID string) error {
	if err := s.client.EndGame(ctx, gameID); err != nil {
		return err
	}
	if gameID == s.GameID() {
		s.ended = true
	}
	return nil
}

func (s *Session) Score(ctx context.Context, gameID string) (model.Score, error) {
	score, err := s.client.Score(ctx, gameID)
	if err != nil {
		return model.Score{}, fmt.Errorf("score %s: %w", gameID, err)
	}
	if score.GameID == "" {
		score.GameID = gameID
	}
	return score, nil
}

func (s *Session) StartBuild(ctx context.Context, pos model.Position, buildingName string) error {
	return s.act(ctx, PathStartBuild, StartBuildCommand{Position: pos, BuildingName: buildingName})
}

func (s *Session) Build(ctx context.Context, pos model.Position) error {
	return s.act(ctx, PathBuild, PositionCommand{Position: pos})
}

func (s *Session) Maintenance(ctx context.Context, pos model.Position) error {
	return s.act(ctx, PathMaintenance, PositionCommand{Position: pos})
}

func (s *Session) BuyUpgrade(ctx context.Context, pos model.Position, upgradeName string) error {
	return s.act(ctx, PathBuyUpgrade, BuyUpgradeCommand{Position: pos, UpgradeAction: upgradeName})
}

func (s *Session) AdjustEnergy(ctx context.Context, pos model.Position, value float64) error {
	return s.act(ctx, PathAdjustEnergy, AdjustEnergyCommand{Position: pos, Value: value})
}

func (s *Session) Wait(ctx context.Context) error {
	return s.act(ctx, PathWait, nil)
}

// act submits one action and adopts the returned state. When the submission
// fails the state is re-read so the next turn does not act on a stale view.
func (s *Session) act(ctx context.Context, path string, cmd any) error {
	if s.state == nil {
		return ErrNoGame
	}
	gameID := s.state.GameID
	gs, err := s.client.Action(ctx, gameID, path, cmd)
	if err != nil {
		if rerr := s.load(ctx, gameID); rerr != nil {
			slog.Warn("state refresh after failed action", "game", gameID, "error", rerr)
		}
		return fmt.Errorf("action %s: %w", path, err)
	}
	if gs.GameID == "" {
		gs.GameID = gameID
	}
	s.state = &gs
	return nil
}
