package main

import (
	"log"
	"os"

	"pigbot/internal/container"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
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
		Name: "bot",
		Commands: []*cli.Command{
			commandRun(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandRun() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "start the mention, engagement, corpus and oracle cronjobs",
		Action: func(c *cli.Context) error {
			vs, err := env.EnvsRequired(
				"TWITTER_BEARER_TOKEN",
				"GEMINI_API_KEY",
				"REDIS_URL",
			)
			if err != nil {
				return err
			}

			injector := container.New(vs)
			provideJobs(injector)
			cronRunner := cron.New()

			dispatchJob, err := do.Invoke[*DispatchJob](injector)
			if err != nil {
				return err
			}
			dispatchJob.Start(cronRunner)

			engagementJob, err := do.Invoke[*EngagementJob](injector)
			if err != nil {
				return err
			}
			engagementJob.Start(cronRunner)

			corpusJob, err := do.Invoke[*CorpusJob](injector)
			if err != nil {
				return err
			}
			corpusJob.Start(cronRunner)

			oracleJob, err := do.Invoke[*OracleJob](injector)
			if err != nil {
				return err
			}
			oracleJob.Start(cronRunner)

			log.Println("Start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}

func provideJobs(injector *do.Injector) {
	do.Provide(injector, NewDispatchJob)
	do.Provide(injector, NewEngagementJob)
	do.Provide(injector, NewCorpusJob)
	do.Provide(injector, NewOracleJob)
}
