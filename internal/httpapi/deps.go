package httpapi

import (
	"database/sql"
	"sync/atomic"

	"feedbackradar-engine/internal/config"
	"feedbackradar-engine/internal/events"
	"feedbackradar-engine/internal/jobs"
)

type Deps struct {
	DB *sql.DB

	Manager *jobs.Manager
	Hub     *events.Hub

	// CfgVal stores config.Config and supports hot reload.
	CfgVal *atomic.Value

	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
