package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/homeenergy/internal/api"
	"github.com/lox/homeenergy/internal/estimator"
	"github.com/lox/homeenergy/internal/features"
	"github.com/lox/homeenergy/internal/household"
	"github.com/lox/homeenergy/internal/insight"
	"github.com/lox/homeenergy/internal/model"
	"github.com/lox/homeenergy/internal/models"
	"github.com/lox/homeenergy/internal/store"
)

type Globals struct {
	DB           string `help:"Path to SQLite database." default:"data/homeenergy.db" env:"HOMEENERGY_DB"`
	Model        string `help:"Model artifact: path, http(s):// or ftp:// URL." default:"models/household.json" env:"HOMEENERGY_MODEL"`
	OpenAIAPIKey string `help:"OpenAI API key for saving tips." name:"openai-api-key" env:"OPENAI_API_KEY"`
	OpenAIModel  string `help:"OpenAI chat model." name:"openai-model" default:"gpt-4o-mini" env:"OPENAI_MODEL"`
}

type CLI struct {
	Globals

	Serve    ServeCmd    `cmd:"" help:"Run the HTTP server."`
	Estimate EstimateCmd `cmd:"" help:"Estimate monthly kWh for one household."`
	Schema   SchemaCmd   `cmd:"" help:"Print the feature order the model expects."`
	History  HistoryCmd  `cmd:"" help:"List recorded estimates."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("homeenergy"),
		kong.Description("Household monthly energy consumption estimator."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

type ServeCmd struct {
	Port      string `help:"HTTP server port." default:"8080" env:"PORT"`
	NoHistory bool   `help:"Do not record estimates."`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := model.Load(ctx, g.Model)
	if err != nil {
		return err
	}

	var st *store.Store
	if !c.NoHistory {
		db, err := openStore(g.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		st = store.New(db)
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Println("database migrated")
	} else {
		log.Println("estimate history disabled (--no-history)")
	}

	server := api.NewServer(estimator.New(m), st, c.Port)
	if gen, err := insight.NewGenerator(g.OpenAIAPIKey, g.OpenAIModel); err == nil {
		server.SetInsightGenerator(gen)
	} else {
		log.Printf("insights disabled: %v", err)
	}

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type EstimateCmd struct {
	Occupants  int                      `help:"Number of occupants." required:""`
	Sqft       float64                  `help:"House size in square feet." required:""`
	Income     float64                  `help:"Monthly household income." required:""`
	Temp       int                      `help:"Outside temperature in Celsius." required:""`
	Year       int                      `help:"Year of the estimate." required:""`
	Month      int                      `help:"Month of the estimate (1-12)." required:""`
	Day        int                      `help:"Day of the month." required:""`
	Heating    household.HeatingType    `help:"Heating type: Electric, Gas or None." required:""`
	Cooling    household.CoolingType    `help:"Cooling type: Ac, Fan or None." required:""`
	Override   household.ManualOverride `help:"Manual thermostat override: Y or N." default:"N"`
	EnergyStar bool                     `help:"Home is Energy Star certified."`

	Insight bool `help:"Ask OpenAI for a saving tip."`
	Save    bool `help:"Record the estimate in the database."`
	JSON    bool `help:"Print the result as JSON." name:"json"`
}

type estimateOutput struct {
	ID       string          `json:"id,omitempty"`
	Model    string          `json:"model"`
	KWh      float64         `json:"kwh"`
	Features features.Vector `json:"features"`
	Insight  string          `json:"insight,omitempty"`
}

func (c *EstimateCmd) input() household.Input {
	return household.Input{
		NumOccupants:       c.Occupants,
		HouseSizeSqft:      c.Sqft,
		MonthlyIncome:      c.Income,
		OutsideTempCelsius: c.Temp,
		Year:               c.Year,
		Month:              c.Month,
		Day:                c.Day,
		HeatingType:        c.Heating,
		CoolingType:        c.Cooling,
		ManualOverride:     c.Override,
		EnergyStarHome:     c.EnergyStar,
	}
}

func (c *EstimateCmd) Run(g *Globals) error {
	ctx := context.Background()

	m, err := model.Load(ctx, g.Model)
	if err != nil {
		return err
	}
	pipeline := estimator.New(m)

	in := c.input()
	res, err := pipeline.Estimate(in)
	if err != nil {
		return err
	}

	e := models.Estimate{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		ModelName: pipeline.ModelName(),
		Input:     in,
		KWh:       res.KWh,
		Features:  res.Features,
	}

	if c.Insight {
		gen, err := insight.NewGenerator(g.OpenAIAPIKey, g.OpenAIModel)
		if err != nil {
			return err
		}
		text, err := gen.Generate(ctx, in, res.KWh)
		if err != nil {
			log.Printf("insight: %v", err)
		} else {
			e.Insight = sql.NullString{String: text, Valid: true}
		}
	}

	if c.Save {
		db, err := openStore(g.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		st := store.New(db)
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := st.InsertEstimate(e); err != nil {
			return err
		}
	}

	if c.JSON {
		out := estimateOutput{
			Model:    e.ModelName,
			KWh:      e.KWh,
			Features: e.Features,
			Insight:  e.Insight.String,
		}
		if c.Save {
			out.ID = e.ID
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("%.1f kWh/month (model %s)\n", e.KWh, e.ModelName)
	if e.Insight.Valid {
		fmt.Println(e.Insight.String)
	}
	if c.Save {
		fmt.Printf("saved as %s\n", e.ID)
	}
	return nil
}

type SchemaCmd struct{}

func (c *SchemaCmd) Run(g *Globals) error {
	for i, name := range features.Names() {
		fmt.Printf("%2d  %s\n", i, name)
	}
	return nil
}

type HistoryCmd struct {
	Limit int `help:"Number of estimates to show." default:"20"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	db, err := openStore(g.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	estimates, err := st.ListEstimates(c.Limit)
	if err != nil {
		return err
	}
	stats, err := st.EstimateStats()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tMODEL\tOCCUPANTS\tSQFT\tKWH")
	for _, e := range estimates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.0f\t%.1f\n",
			e.ID, e.CreatedAt.Local().Format(time.DateTime), e.ModelName,
			e.Input.NumOccupants, e.Input.HouseSizeSqft, e.KWh)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if stats.AvgKWh.Valid {
		fmt.Printf("\n%d estimates, avg %.1f kWh (min %.1f, max %.1f)\n",
			stats.Count, stats.AvgKWh.Float64, stats.MinKWh.Float64, stats.MaxKWh.Float64)
	}
	return nil
}

func openStore(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	return db, nil
}
