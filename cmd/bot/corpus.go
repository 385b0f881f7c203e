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

// CorpusJob refreshes the cached posts of the tracked accounts.
type CorpusJob struct {
	corpus *services.ServiceCorpus
	config *services.ServiceConfig
	logger *zap.Logger
}

func NewCorpusJob(i *do.Injector) (*CorpusJob, error) {
	corpus, err := do.Invoke[*services.ServiceCorpus](i)
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

	return &CorpusJob{corpus, config, logger}, nil
}

func (j *CorpusJob) Start(cronRunner *cron.Cron) {
	schedule, _ := j.config.GetStringConfig(context.Background(),
		services.CONFIG_CRONJOB_TIME_CORPUS, services.DEFAULT_CRONJOB_TIME_CORPUS)

	_, err := cronRunner.AddFunc(schedule, j.run)
	log.Println("Corpus cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", schedule, err)

	// warm the corpus before the first tick
	j.run()
}

func (j *CorpusJob) run() {
	if err := j.corpus.RefreshTrackedAccounts(context.Background()); err != nil {
		j.logger.Error("corpus refresh failed", zap.Error(err))
	}
}
