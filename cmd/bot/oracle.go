package main

import (
	"context"
	"log"
	"time"

	"pigbot/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// OracleJob publishes the bot's own scheduled persona posts.
type OracleJob struct {
	oracle *services.ServiceOracle
	config *services.ServiceConfig
	logger *zap.Logger
}

func NewOracleJob(i *do.Injector) (*OracleJob, error) {
	oracle, err := do.Invoke[*services.ServiceOracle](i)
	if err != nil {
		return nil, err
	}

	config, err := do.Invoke[*services.ServiceConfig](i)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](i)
	if err != nil {
		return nil, err
	}

	return &OracleJob{oracle, config, logger}, nil
}

func (j *OracleJob) Start(cronRunner *cron.Cron) {
	schedule, _ := j.config.GetStringConfig(context.Background(),
		services.CONFIG_CRONJOB_TIME_ORACLE, services.DEFAULT_CRONJOB_TIME_ORACLE)

	_, err := cronRunner.AddFunc(schedule, j.run)
	log.Println("Oracle cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", schedule, err)
}

func (j *OracleJob) run() {
	if err := j.oracle.RunScheduledPost(context.Background()); err != nil {
		j.logger.Error("scheduled post failed", zap.Error(err))
	}
}
