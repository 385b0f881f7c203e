package main

import (
	"fmt"
	"log"
	"os"

	"pigbot/internal/container"
	"pigbot/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "analyze",
		Commands: []*cli.Command{
			commandAnalyze(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandAnalyze() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "print the ticker consistency report of one account",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			username := c.Args().First()
			if username == "" {
				return cli.Exit("username is required", 1)
			}

			vs, err := env.EnvsRequired(
				"TWITTER_BEARER_TOKEN",
				"REDIS_URL",
			)
			if err != nil {
				return err
			}

			injector := container.New(vs)

			analysis, err := do.Invoke[*services.ServiceAnalysis](injector)
			if err != nil {
				return err
			}

			report, err := analysis.RunConsistencyAnalysis(c.Context, username)
			if err != nil {
				return err
			}

			fmt.Println(report)
			return nil
		},
	}
}
