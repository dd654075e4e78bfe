package mantra

import (
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/fatih/structs"
	"github.com/gocarina/gocsv"
	client "github.com/influxdata/influxdb1-client/v2"
	"github.com/tantralabs/mantra/models"
	"github.com/tantralabs/mantra/utils"
	"gonum.org/v1/gonum/stat"
)

// getMinMaxStats walks the history once for the extremes: the best and
// worst single tick pnl and the deepest equity drawdown from a running
// high.
func getMinMaxStats(history []models.History) (minTickPnl float64, maxTickPnl float64, drawdown float64) {
	highestEquity := history[0].Equity
	last := history[0].Equity
	for i, row := range history {
		if i > 0 {
			tickPnl := row.Equity - last
			if tickPnl > maxTickPnl {
				maxTickPnl = tickPnl
			}
			if tickPnl < minTickPnl {
				minTickPnl = tickPnl
			}
		}
		if row.Equity > highestEquity {
			highestEquity = row.Equity
		}
		ddDiff := utils.CalculateDifference(row.Equity, highestEquity)
		if drawdown > ddDiff {
			drawdown = ddDiff
		}
		last = row.Equity
	}
	return
}

// logStats scores a finished session: annualized sharpe and sortino over
// the per tick equity returns, the drawdown extremes, and the csv export
// when configured. Fills in maker.Result.
func logStats(maker *models.Maker, history []models.History, startTime time.Time) {
	historyLength := len(history)
	log.Println("Start tick", history[0].Tick, "End tick", history[historyLength-1].Tick)
	log.Println("historyLength", historyLength, "Start Equity", history[0].Equity, "End Equity", history[historyLength-1].Equity)
	minTickPnl, maxTickPnl, drawdown := getMinMaxStats(history)

	percentReturn := make([]float64, historyLength)
	downsidePercentReturn := make([]float64, 0)
	last := 0.0
	for i := range history {
		if i == 0 {
			percentReturn[i] = 0
		} else {
			percentReturn[i] = utils.CalculateDifference(history[i].Equity, last)
			if math.IsNaN(percentReturn[i]) {
				percentReturn[i] = percentReturn[i-1]
			}
			if percentReturn[i] < 0 {
				downsidePercentReturn = append(downsidePercentReturn, percentReturn[i])
			}
		}
		last = history[i].Equity
	}

	mean, std := stat.MeanStdDev(percentReturn, nil)
	_, downsideStd := stat.MeanStdDev(downsidePercentReturn, nil)
	// One tick is one day, so a year of ticks annualizes the score.
	totalSharpe := mean / std * math.Sqrt(maker.Config.TicksPerYear)
	sortino := mean / downsideStd * math.Sqrt(maker.Config.TicksPerYear)

	if math.IsNaN(totalSharpe) {
		totalSharpe = -100
	}
	if math.IsNaN(sortino) {
		sortino = -100
	}
	if history[historyLength-1].Equity < 0 {
		totalSharpe = -100
	}

	kvparams := utils.CreateKeyValuePairs(maker.Params.GetAllParams(), true)
	log.Printf("Equity %0.4f \n Cash %0.4f \n Net Delta %0.4f \n Max Drawdown %0.4f \n Max Tick Profit %0.4f \n Max Tick Loss %0.4f \n Sharpe %0.3f \n Sortino %0.3f \n Params: %s",
		history[historyLength-1].Equity,
		history[historyLength-1].Cash,
		history[historyLength-1].NetDelta,
		drawdown,
		maxTickPnl,
		minTickPnl,
		totalSharpe,
		sortino,
		kvparams,
	)

	logCloudBacktest(maker, history)

	if maker.LogBacktest {
		// Log balance history
		os.Remove("balance.csv")
		historyFile, err := os.OpenFile("balance.csv", os.O_RDWR|os.O_CREATE, os.ModePerm)
		if err != nil {
			panic(err)
		}
		defer historyFile.Close()

		balances := make([]models.BalanceHistory, historyLength)
		for i, row := range history {
			balances[i] = models.BalanceHistory{
				Timestamp: row.Timestamp.UTC().Format(time.RFC3339),
				Tick:      row.Tick,
				Balance:   row.Cash,
				UBalance:  row.Equity,
			}
		}
		err = gocsv.MarshalFile(&balances, historyFile)
		if err != nil {
			panic(err)
		}
	}

	maker.Result = models.Result{
		Balance:     history[historyLength-1].Equity,
		DailyReturn: utils.ToFixed(mean*100, 6),
		MaxDD:       drawdown,
		Score:       utils.ToFixed(totalSharpe, 3),
		Sortino:     utils.ToFixed(sortino, 3),
		Params:      kvparams,
	}

	if maker.LogStats {
		statsMap := structs.Map(maker.Stats)
		kvStats := utils.CreateKeyValuePairs(statsMap, true)
		fmt.Print("Session Stats")
		fmt.Printf("%s", kvStats)
	}

	elapsed := time.Since(startTime)
	fmt.Println("-------------------------------")
	log.Printf("Execution Speed: %v \n", elapsed)
}

// logCloudBacktest publishes the session equity curve to the shared
// backtest db.
func logCloudBacktest(maker *models.Maker, history []models.History) {
	if !maker.LogCloudBacktest {
		return
	}
	influxURL := os.Getenv("MANTRA_BACKTEST_DB_URL")
	if influxURL == "" {
		log.Fatalln("You need to set the `MANTRA_BACKTEST_DB_URL` env variable")
	}
	influxUser := os.Getenv("MANTRA_BACKTEST_DB_USER")
	influxPassword := os.Getenv("MANTRA_BACKTEST_DB_PASSWORD")

	influx, _ := client.NewHTTPClient(client.HTTPConfig{
		Addr:     influxURL,
		Username: influxUser,
		Password: influxPassword,
		Timeout:  (time.Millisecond * 1000 * 10),
	})

	log.Println("LogCloudBacktest")
	bp, _ := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  "cloudtest",
		Precision: "us",
	})

	tags := map[string]string{
		"maker_name":    maker.Name,
		"sample_format": "daily",
	}
	lastEquity := 0.
	for _, row := range history {
		pct := utils.CalculateDifference(row.Equity, lastEquity)
		pt, _ := client.NewPoint(
			"results",
			tags,
			map[string]interface{}{"pct_change": pct},
			row.Timestamp,
		)
		lastEquity = row.Equity
		bp.AddPoint(pt)
	}
	err := client.Client.Write(influx, bp)
	log.Println(maker.Name, err)
}
