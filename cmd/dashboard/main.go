package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"go-stats-dashboard/internal/config"
	"go-stats-dashboard/internal/pipeline"
	"go-stats-dashboard/internal/store"
	"go-stats-dashboard/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries what every subcommand shares
type app struct {
	cfg    *config.Config
	store  *store.Store
	output *utils.OutputManager
	loader *pipeline.SourceLoader

	exports []pipeline.ExportResult
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ No .env file found, using environment")
	}

	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Render the livestock and penguin dashboards to files",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store != nil {
				return a.store.Close()
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newLivestockCmd(a),
		newPenguinsCmd(a),
		newPreviewCmd(a),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.store = st
	a.output = utils.NewOutputManager(cfg.Output.Dir)
	a.loader = &pipeline.SourceLoader{
		Client: &http.Client{Timeout: cfg.Server.HTTPTimeout},
		Livestock: pipeline.Source{
			Location:  cfg.Livestock.File,
			Encoding:  cfg.Livestock.Encoding,
			Delimiter: cfg.Livestock.Delimiter,
		},
		ReferenceURL: cfg.Livestock.ReferenceURL,
		PenguinsURL:  cfg.Penguins.URL,
	}
	return nil
}
