// Package database handles postgres connections, historical data loading,
// and session history persistence.
package database

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/tantralabs/mantra/models"
	"github.com/tantralabs/mantra/utils"
)

var (
	host     = "localhost"
	port     = 5432
	user     = "mantrauser"
	password = "password"
	dbname   = "mantra"
	ENV      = ""
)

var knownSessionTicks = make(map[string]map[int]bool)

// Setup points the package at a database. With env "remote" the connection
// details come from MANTRA_DB_HOST, MANTRA_DB_USER and MANTRA_DB_PASSWORD,
// which LoadENV populates from the secrets manager.
func Setup(env ...string) {
	if env != nil && env[0] != ENV {
		ENV = env[0]
	}
	if ENV == "remote" {
		host = os.Getenv("MANTRA_DB_HOST")
		user = os.Getenv("MANTRA_DB_USER")
		password = os.Getenv("MANTRA_DB_PASSWORD")
		if host == "" || user == "" || password == "" {
			log.Fatalln("Missing MANTRA_DB_HOST, MANTRA_DB_USER or MANTRA_DB_PASSWORD in environment")
		}
		port = 5432
		dbname = "mantra"
	}
}

func connect() *sqlx.DB {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sqlx.Connect("postgres", psqlInfo)
	if err != nil {
		if host == "localhost" {
			log.Println("Failed to connect to local database, attempting to connect to cloud database.")
			Setup("remote")
			return connect()
		}
		log.Fatal(err)
	}
	return db
}

// GetCandlesByTime fetches bars for a symbol between two timestamps.
func GetCandlesByTime(symbol string, exchange string, interval string, startTimestamp time.Time, endTimestamp time.Time) []*models.Bar {
	db := connect()

	bars := []*models.Bar{}
	cmd := fmt.Sprintf("select timestamp, open, high, low, close, volume from candles where symbol = '%s' and exchange = '%s' and interval = '%s' and timestamp >= '%d' and timestamp <= '%d';",
		symbol, exchange, interval, startTimestamp.Unix()*1000, endTimestamp.Unix()*1000)
	err := db.Select(&bars, cmd)
	if err != nil {
		log.Fatal(err)
	}

	if len(bars) == 0 {
		log.Fatal("There doesn't seem to be any data for ", exchange, " ", symbol, " on the ", interval, " interval in the database. Maybe it was your start and end dates?")
	}

	db.Close()
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return bars
}

// GetCandles fetches the most recent numBars bars for a symbol, oldest
// first.
func GetCandles(symbol string, exchange string, interval string, numBars int) []*models.Bar {
	db := connect()

	bars := []*models.Bar{}
	cmd := fmt.Sprintf("select timestamp, open, high, low, close, volume from candles where symbol = '%s' and exchange = '%s' and interval = '%s' order by timestamp desc limit %s;",
		symbol, exchange, interval, strconv.Itoa(numBars))
	err := db.Select(&bars, cmd)
	if err != nil {
		log.Fatal(err)
	}

	if len(bars) == 0 {
		log.Fatal("There doesn't seem to be any data for ", exchange, " ", symbol, " on the ", interval, " interval in the database.")
	}

	db.Close()
	return utils.ReverseBars(bars)
}

// LoadImpliedVols fetches historical implied vol bars, used as the vol
// signal when replaying recorded data.
func LoadImpliedVols(symbol string, start int, end int) []models.ImpliedVol {
	db := connect()

	ivs := []models.ImpliedVol{}
	cmd := fmt.Sprintf("select symbol, iv, timestamp, interval, indexprice, vwiv, strike, timetoexpiry, volume from impliedvol where symbol = '%s' and timestamp >= %d and timestamp <= %d order by timestamp;",
		symbol, start, end)
	err := db.Select(&ivs, cmd)
	if err != nil {
		log.Fatal(err)
	}

	db.Close()
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Timestamp < ivs[j].Timestamp })
	return ivs
}

// LogSessionHistory upserts per tick account snapshots for a session. Rows
// already written for a tick are skipped, so repeated flushes are cheap.
func LogSessionHistory(maker models.Maker, history []models.History) {
	db := connect()

	sessionID := maker.Account.AccountID
	if knownSessionTicks[sessionID] == nil {
		knownSessionTicks[sessionID] = make(map[int]bool)
	}
	newRecords := make([]SessionRecord, 0)
	for _, h := range history {
		if knownSessionTicks[sessionID][h.Tick] {
			continue
		}
		newRecords = append(newRecords, SessionRecord{
			Timestamp:     utils.TimeToTimestamp(h.Timestamp),
			Tick:          h.Tick,
			SessionID:     sessionID,
			Name:          maker.Name,
			State:         h.State,
			Spot:          h.Spot,
			Cash:          h.Cash,
			Equity:        h.Equity,
			RealizedPnl:   h.RealizedPnl,
			UnrealizedPnl: h.UnrealizedPnl,
			NetDelta:      h.NetDelta,
		})
		knownSessionTicks[sessionID][h.Tick] = true
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range newRecords {
		_, err = db.Exec("insert into session_history(timestamp, tick, session_id, name, state, spot, cash, equity, realized_pnl, unrealized_pnl, net_delta) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) ON CONFLICT DO NOTHING;",
			r.Timestamp, r.Tick, r.SessionID, r.Name, r.State, r.Spot, r.Cash, r.Equity, r.RealizedPnl, r.UnrealizedPnl, r.NetDelta)
		if err != nil {
			fmt.Println("err", err)
		}
	}
	err = tx.Commit()
	if err != nil {
		fmt.Println(err)
	}

	db.Close()
}
