package main

import (
	"log"
	"strconv"
	"strings"

	"github.com/eringen/inkwell"
)

func main() {
	cfg := inkwell.SiteConfig{
		Name:        inkwell.EnvOr("SITE_NAME", "Inkwell"),
		URL:         strings.TrimSuffix(inkwell.EnvOr("SITE_URL", "http://localhost:3000"), "/"),
		Description: inkwell.EnvOr("SITE_DESCRIPTION", ""),

		Addr:         inkwell.EnvOr("LISTEN_ADDR", ":3000"),
		DatabasePath: inkwell.EnvOr("DATABASE_PATH", "data/inkwell.db"),

		ProfileDirectoryURL: inkwell.MustEnv("PROFILE_DIRECTORY_URL"),
		AnalyticsAPIURL:     inkwell.MustEnv("ANALYTICS_API_URL"),
		AnalyticsSiteID:     inkwell.MustEnv("ANALYTICS_SITE_ID"),
		AnalyticsAPIToken:   inkwell.MustEnv("ANALYTICS_API_TOKEN"),

		AdminPassword: inkwell.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: inkwell.MustEnv("ADMIN_SESSION_SECRET"),
		CookieSecure:  strings.EqualFold(inkwell.EnvOr("COOKIE_SECURE", ""), "true"),
	}
	if v := inkwell.EnvOr("ANALYTICS_FETCH_CONCURRENCY", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid ANALYTICS_FETCH_CONCURRENCY: %v", err)
		}
		cfg.AnalyticsFetchConcurrency = n
	}

	app := inkwell.New(cfg, inkwell.ViewFuncs{})
	defer app.Close()
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
