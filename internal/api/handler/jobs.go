package handler

import (
	"pigbot/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupJobs struct {
	container *do.Injector
}

func (gr *groupJobs) RunDispatch(c echo.Context) error {
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := dispatcher.RunDispatchCycle(c.Request().Context()); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, "ok", nil)
}

func (gr *groupJobs) RunEngagement(c echo.Context) error {
	engagement, err := do.Invoke[*services.ServiceEngagement](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := engagement.RunEngagementPoll(c.Request().Context()); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, "ok", nil)
}

func (gr *groupJobs) RunOracle(c echo.Context) error {
	oracle, err := do.Invoke[*services.ServiceOracle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := oracle.RunScheduledPost(c.Request().Context()); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, "ok", nil)
}

func (gr *groupJobs) RunCorpus(c echo.Context) error {
	corpus, err := do.Invoke[*services.ServiceCorpus](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := corpus.RefreshTrackedAccounts(c.Request().Context()); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, "ok", nil)
}
