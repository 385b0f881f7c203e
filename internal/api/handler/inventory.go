package handler

import (
	"errors"

	"pigbot/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupInventory struct {
	container *do.Injector
}

// Show reads the inventory without touching the query cooldown, so operators
// can inspect a user between mentions.
func (gr *groupInventory) Show(c echo.Context) error {
	reward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	username := c.Param("username")
	if username == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("username is required"), errorx.Invalid))
	}

	entries, err := reward.PeekInventory(c.Request().Context(), username)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, entries, nil)
}
