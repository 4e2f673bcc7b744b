package gamelayer

import "github.com/LazyTarget/Considition-2020/model"

// Action endpoints, relative to the API base URL.
const (
	PathStartBuild   = "/action/startBuild"
	PathBuild        = "/action/build"
	PathMaintenance  = "/action/maintenance"
	PathBuyUpgrade   = "/action/buyUpgrade"
	PathAdjustEnergy = "/action/adjustEnergy"
	PathWait         = "/action/wait"
)

type PositionCommand struct {
	Position model.Position `json:"position"`
}

type StartBuildCommand struct {
	Position     model.Position `json:"position"`
	BuildingName string         `json:"buildingName"`
}

type BuyUpgradeCommand struct {
	Position      model.Position `json:"position"`
	UpgradeAction string         `json:"upgradeAction"`
}

type AdjustEnergyCommand struct {
	Position model.Position `json:"position"`
	Value    float64        `json:"value"`
}
