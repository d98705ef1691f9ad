package main

import (
	"context"
	"log"
	"os"

	"carevisits/adapters/charts"
	"carevisits/adapters/excel"
	"carevisits/adapters/postgres"
	"carevisits/app"
	"carevisits/internal/config"
	"carevisits/internal/report"
	"carevisits/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	source, cleanup, err := observationSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize observation source: %v", err)
	}
	defer cleanup()

	observations, err := source.LoadObservations(ctx)
	if err != nil {
		log.Fatalf("Failed to load observations: %v", err)
	}

	builder := charts.NewBuilder()
	service := app.NewAnalysisService(builder)
	bundle, err := service.Analyze(ctx, observations)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if err := builder.Workbook().SaveAs(cfg.Paths.WorkbookOut); err != nil {
		log.Fatalf("Failed to save chart workbook: %v", err)
	}

	gen := report.NewGenerator()
	var out []byte
	if cfg.Paths.ReportFormat == "markdown" {
		out = []byte(gen.Markdown(bundle))
	} else {
		out = gen.HTML(bundle)
	}
	if err := os.WriteFile(cfg.Paths.ReportOut, out, 0o644); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	log.Printf("Run %s: %d observations analyzed, workbook %s, report %s",
		bundle.RunID, len(observations), cfg.Paths.WorkbookOut, cfg.Paths.ReportOut)
}

// observationSource picks Postgres when DATABASE_URL is set, the xlsx
// export otherwise.
func observationSource(ctx context.Context, cfg *config.Config) (ports.ObservationSource, func(), error) {
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db, cfg.Database.ObservationsTable); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewObservationRepository(db, cfg.Database.ObservationsTable), func() { db.Close() }, nil
	}

	if cfg.Paths.SurveyFile == "" {
		log.Fatal("Set SURVEY_FILE or DATABASE_URL to provide the tidy survey table")
	}
	return excel.NewSurveyReader(cfg.Paths.SurveyFile), func() {}, nil
}
