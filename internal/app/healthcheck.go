package app

import (
	"context"
	"net/http"
	"time"

	"github.com/metinatakli/movie-search/api"
	"github.com/metinatakli/movie-search/internal/vcs"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "UP"

	if app.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.contextGetLogger(r).Warn("redis ping failed", "error", err)
			status = "DEGRADED"
		}
	}

	systemInfo := api.SystemInfo{
		Version:     vcs.Version(),
		Environment: app.config.Env,
	}

	resp := api.HealthcheckResponse{
		Status:     status,
		SystemInfo: systemInfo,
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
