package gamelayer

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LazyTarget/Considition-2020/agent"
	"github.com/LazyTarget/Considition-2020/model"
)

func TestSession_NewStartsAndLoadsGame(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathNewGame, NewGameResponse{GameID: "g1"})
	f.reply(PathStartGame, struct{}{})
	f.reply(PathGameState, model.GameState{Turn: 0, MaxTurns: 700})

	s := NewSession(f.client())
	require.NoError(t, s.New(context.Background(), "training1"))

	assert.Equal(t, "g1", s.GameID())
	assert.Equal(t, "g1", s.State().GameID, "state adopts the game id when the server omits it")
	assert.Equal(t, 700, s.State().MaxTurns)
	assert.Equal(t, "g1", f.last(PathStartGame).GameID)
}

func TestSession_NewFailsWhenStartFails(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathNewGame, NewGameResponse{GameID: "g1"})
	f.handle(PathStartGame, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "map locked", http.StatusForbidden)
	})

	s := NewSession(f.client())
	err := s.New(context.Background(), "training1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start game g1")
	assert.Nil(t, s.State())
}

func TestSession_ResumeLatest(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathGameInfo, GameInfo{GameID: "g7", Turn: 12})
	f.reply(PathGameState, model.GameState{GameID: "g7", Turn: 12, MaxTurns: 700})

	s := NewSession(f.client())
	require.NoError(t, s.Resume(context.Background(), ""))
	assert.Equal(t, "g7", s.GameID())
	assert.Equal(t, 12, s.State().Turn)
	assert.Equal(t, "g7", f.last(PathGameState).GameID)
}

func TestSession_ResumeWithoutGame(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathGameInfo, GameInfo{})

	err := NewSession(f.client()).Resume(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoGame)
}

func TestSession_ActionsBeforeGame(t *testing.T) {
	f := newFakeServer(t)
	s := NewSession(f.client())

	assert.ErrorIs(t, s.Wait(context.Background()), ErrNoGame)
	assert.ErrorIs(t, s.Refresh(context.Background()), ErrNoGame)
	assert.Equal(t, "", s.GameID())
	assert.Empty(t, f.requests)
}

func TestSession_ActionAdoptsReturnedState(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathGameInfo, GameInfo{GameID: "g1"})
	f.reply(PathGameState, model.GameState{GameID: "g1", Turn: 3})
	f.reply(PathBuyUpgrade, model.GameState{GameID: "g1", Turn: 4, Funds: 10})

	s := NewSession(f.client())
	require.NoError(t, s.Resume(context.Background(), "g1"))
	require.NoError(t, s.BuyUpgrade(context.Background(), model.Position{X: 1, Y: 1}, "SolarPanel"))

	assert.Equal(t, 4, s.State().Turn)
	assert.JSONEq(t, `{"position":{"x":1,"y":1},"upgradeAction":"SolarPanel"}`, f.last(PathBuyUpgrade).Body)
}

func TestSession_FailedActionRefreshesState(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathGameInfo, GameInfo{GameID: "g1"})
	f.reply(PathGameState, model.GameState{GameID: "g1", Turn: 3})
	f.handle(PathAdjustEnergy, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	s := NewSession(f.client())
	require.NoError(t, s.Resume(context.Background(), "g1"))

	err := s.AdjustEnergy(context.Background(), model.Position{}, 4.2)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, f.count(PathAdjustEnergy))
	assert.Equal(t, 2, f.count(PathGameState), "state is re-read after the failed action")
}

func TestSession_Score(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathScore, model.Score{FinalScore: 1500, TotalCo2: 20, FinalPopulation: 90, TotalHappiness: 300})

	score, err := NewSession(f.client()).Score(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, model.Score{GameID: "g1", FinalScore: 1500, TotalCo2: 20, FinalPopulation: 90, TotalHappiness: 300}, score)
}

func TestSession_ResumeEndedGame(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathGameInfo, GameInfo{GameID: "g1", Turn: 5, MaxTurns: 700, Ended: true})
	f.reply(PathGameState, model.GameState{GameID: "g1", Turn: 5, MaxTurns: 700})
	f.reply(PathScore, model.Score{FinalScore: 75})

	s := NewSession(f.client())
	require.NoError(t, s.Resume(context.Background(), "g1"))
	assert.True(t, s.Ended())

	r := agent.NewRunner(s, nil, nil)
	assert.Equal(t, agent.PhaseEnded, r.Phase())
	score, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 75.0, score.FinalScore)
	require.NoError(t, r.EndGame(context.Background()))

	for _, path := range []string{PathStartBuild, PathBuild, PathMaintenance, PathBuyUpgrade, PathAdjustEnergy, PathWait, PathEndGame} {
		assert.Zero(t, f.count(path), "no request to %s", path)
	}
}

func TestSession_EndGameMarksEnded(t *testing.T) {
	f := newFakeServer(t)
	f.reply(PathGameInfo, GameInfo{GameID: "g1", Turn: 5, MaxTurns: 700})
	f.reply(PathGameState, model.GameState{GameID: "g1", Turn: 5, MaxTurns: 700})
	f.reply(PathEndGame, struct{}{})

	s := NewSession(f.client())
	require.NoError(t, s.Resume(context.Background(), ""))
	assert.False(t, s.Ended())

	require.NoError(t, s.EndGame(context.Background(), "g1"))
	assert.True(t, s.Ended())
	assert.Equal(t, "g1", f.last(PathEndGame).GameID)
}
