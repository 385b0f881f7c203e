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

// DispatchJob polls mentions and answers them on a schedule read from the
// config table.
type DispatchJob struct {
	dispatcher *services.ServiceDispatcher
	config     *services.ServiceConfig
	logger     *zap.Logger
}

func NewDispatchJob(i *do.Injector) (*DispatchJob, error) {
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](i)
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

	return &DispatchJob{dispatcher, config, logger}, nil
}

func (j *DispatchJob) Start(cronRunner *cron.Cron) {
	schedule, _ := j.config.GetStringConfig(context.Background(),
		services.CONFIG_CRONJOB_TIME_DISPATCH, services.DEFAULT_CRONJOB_TIME_DISPATCH)

	_, err := cronRunner.AddFunc(schedule, j.run)
	log.Println("Dispatch cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", schedule, err)
}

func (j *DispatchJob) run() {
	if err := j.dispatcher.RunDispatchCycle(context.Background()); err != nil {
		j.logger.Error("dispatch cycle failed", zap.Error(err))
	}
}
