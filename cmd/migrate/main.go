package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"pigbot/internal/datastore"
	"pigbot/internal/models"
	"pigbot/internal/services"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
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
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableProcessedMention(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableInventory(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableEngagementFlag(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableCachedPost(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// insert default configs to db
func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := []models.Config{
				{Key: services.CONFIG_CRONJOB_TIME_DISPATCH, Value: services.DEFAULT_CRONJOB_TIME_DISPATCH},
				{Key: services.CONFIG_CRONJOB_TIME_ENGAGEMENT, Value: services.DEFAULT_CRONJOB_TIME_ENGAGEMENT},
				{Key: services.CONFIG_CRONJOB_TIME_CORPUS, Value: services.DEFAULT_CRONJOB_TIME_CORPUS},
				{Key: services.CONFIG_CRONJOB_TIME_ORACLE, Value: services.DEFAULT_CRONJOB_TIME_ORACLE},
				{Key: services.CONFIG_ENGAGEMENT_TOTAL_TARGET, Value: strconv.Itoa(services.DEFAULT_ENGAGEMENT_TOTAL_TARGET)},
				{Key: services.CONFIG_MENTION_LOOKBACK_MINUTES, Value: strconv.Itoa(services.DEFAULT_MENTION_LOOKBACK_MINUTES)},
				{Key: services.CONFIG_MENTION_BATCH_LIMIT, Value: strconv.Itoa(services.DEFAULT_MENTION_BATCH_LIMIT)},
				{Key: services.CONFIG_INVENTORY_DELIVERY, Value: services.DELIVERY_REPLY},
				{Key: services.CONFIG_ENGAGEMENT_RESOLVER, Value: services.RESOLVER_INTERACTIONS},
				{Key: services.CONFIG_TRACKED_ACCOUNTS, Value: services.DEFAULT_TRACKED_ACCOUNTS},
			}

			for _, config := range configs {
				err = datastore.InsertConfig(ctx, db, config)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "pigbot.db"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
