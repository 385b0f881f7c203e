package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ItemCatalog is the fixed set of items eligible for rotation and awarding.
var ItemCatalog = []string{"Wood", "Bacon", "Stone", "Iron", "Water"}

type InventoryEntry struct {
	bun.BaseModel `bun:"table:inventory"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Username      string     `bun:"username,notnull" json:"username"`
	Item          string     `bun:"item,notnull" json:"item"`
	Quantity      int        `bun:"quantity,notnull,default:0" json:"quantity"`
	LastChecked   *time.Time `bun:"last_checked" json:"last_checked"`
}
