package db

import (
	"database/sql"
)

type ManagerStat struct {
	Date      string
	Cash      int64
	TeamValue int64
}

type Player struct {
	Name     string
	Position string
	Value    int64
	Points   int64
	Date     string
}

type PlayerInfo struct {
	ID        int64
	Name      string
	BuyValue  int64
	SellValue sql.NullInt64
}
