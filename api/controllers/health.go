package controllers

import (
	"net/http"

	"github.com/pulppixels/pulppixels-backend/api/responses"
	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/redis"
	"github.com/pulppixels/pulppixels-backend/pkg/storage/supastore"
)

const envHeader = "X-PulpPixels-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing dependency before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, storageP supastore.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := []struct {
			name string
			ping func() error
		}{
			{"database", func() error {
				if dbP == nil {
					return nil
				}
				return dbP.Ping(r.Context())
			}},
			{"redis", func() error {
				if redisP == nil {
					return nil
				}
				return redisP.Ping(r.Context())
			}},
			{"storage", func() error {
				if storageP == nil {
					return nil
				}
				return storageP.Ping(r.Context())
			}},
		}

		for _, check := range checks {
			if err := check.ping(); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
