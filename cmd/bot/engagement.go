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

// EngagementJob checks recent posts against the engagement target and hands
// out rewards when a post crosses it.
type EngagementJob struct {
	engagement *services.ServiceEngagement
	config     *services.ServiceConfig
	logger     *zap.Logger
}

func NewEngagementJob(i *do.Injector) (*EngagementJob, error) {
	engagement, err := do.Invoke[*services.ServiceEngagement](i)
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

	return &EngagementJob{engagement, config, logger}, nil
}

func (j *EngagementJob) Start(cronRunner *cron.Cron) {
	schedule, _ := j.config.GetStringConfig(context.Background(),
		services.CONFIG_CRONJOB_TIME_ENGAGEMENT, services.DEFAULT_CRONJOB_TIME_ENGAGEMENT)

	_, err := cronRunner.AddFunc(schedule, j.run)
	log.Println("Engagement cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", schedule, err)
}

func (j *EngagementJob) run() {
	if err := j.engagement.RunEngagementPoll(context.Background()); err != nil {
		j.logger.Error("engagement poll failed", zap.Error(err))
	}
}
