package main

import (
	"log"
	"net/http"

	"github.com/nadmax/timecop/internal/api"
	"github.com/nadmax/timecop/internal/audit"
	"github.com/nadmax/timecop/internal/cache"
	"github.com/nadmax/timecop/internal/clickup"
	"github.com/nadmax/timecop/internal/config"
	"github.com/nadmax/timecop/internal/fraud"
	"github.com/nadmax/timecop/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	client := clickup.NewClient(cfg)
	classifier := fraud.NewClassifier(cfg.ShortTaskThresholdMinutes)
	auditor := audit.NewAuditor(client, classifier)

	var reports *cache.ReportCache
	if cfg.RedisAddr != "" {
		reports, err = cache.New(cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			log.Fatal(err)
		}

		defer func() {
			if err := reports.Close(); err != nil {
				log.Printf("failed to close report cache: %v", err)
			}
		}()

		log.Printf("Report cache enabled at %s (TTL %s)", cfg.RedisAddr, cfg.CacheTTL)
	}

	apiHandler := api.NewAPI(auditor, client, reports, cfg)
	handler := middleware.CORS(middleware.Metrics(apiHandler))

	log.Printf("Server starting on :%s", cfg.Port)
	log.Printf("Auditing team %s", cfg.TeamID)

	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatal(err)
	}
}
