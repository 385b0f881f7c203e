package handler

import (
	"errors"

	"pigbot/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAnalysis struct {
	container *do.Injector
}

func (gr *groupAnalysis) Show(c echo.Context) error {
	analysis, err := do.Invoke[*services.ServiceAnalysis](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	username := c.Param("username")
	if username == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("username is required"), errorx.Invalid))
	}

	result, err := analysis.Analyze(c.Request().Context(), username)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, result, nil)
}
