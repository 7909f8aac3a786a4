package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"exp/internal/db"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	dbPath := pflag.String("db", "./tmp/fill/results.db", "Path to database file")
	queryType := pflag.String("query", "stats", "Query type: stats, fill, image-sizes, range, raw")
	minFill := pflag.Float64("min-fill", 0, "Minimum fill ratio for the range query")
	maxFill := pflag.Float64("max-fill", 1, "Maximum fill ratio for the range query")
	rawSQL := pflag.String("sql", "", "Raw SQL query to execute")
	asJSON := pflag.Bool("json", false, "Print JSON instead of a table")
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	database, err := db.Open(*dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	switch *queryType {
	case "stats":
		count, err := database.CountResults()
		if err != nil {
			logger.Fatal("failed to count results", zap.Error(err))
		}
		fmt.Printf("Total results: %d\n", count)

	case "fill":
		stats, err := database.GetFillStats()
		if err != nil {
			logger.Fatal("failed to get fill stats", zap.Error(err))
		}
		if *asJSON {
			printJSON(logger, stats)
			break
		}
		data := make([][]string, 0, len(stats))
		for _, s := range stats {
			data = append(data, []string{
				s.Codec,
				fmt.Sprintf("%.0f%%", s.Fill*100),
				strconv.Itoa(s.TotalTests),
				fmt.Sprintf("%.1f%%", s.SuccessRate*100),
				fmt.Sprintf("%.2f", s.AvgPSNR),
				fmt.Sprintf("%.2f%%", s.AvgChangedRatio*100),
				strconv.Itoa(s.JPEGSurvived),
			})
		}
		report([]string{"codec", "fill", "tests", "success", "psnr", "changed", "jpeg"}, data)

	case "image-sizes":
		stats, err := database.GetImageSizeStats()
		if err != nil {
			logger.Fatal("failed to get image size stats", zap.Error(err))
		}
		if *asJSON {
			printJSON(logger, stats)
			break
		}
		data := make([][]string, 0, len(stats))
		for _, s := range stats {
			data = append(data, []string{
				fmt.Sprintf("%dx%d", s.Width, s.Height),
				strconv.Itoa(s.TotalTests),
				fmt.Sprintf("%.1f%%", s.SuccessRate*100),
				fmt.Sprintf("%.2f", s.AvgPSNR),
			})
		}
		report([]string{"size", "tests", "success", "psnr"}, data)

	case "range":
		results, err := database.GetResultsByFill(*minFill, *maxFill)
		if err != nil {
			logger.Fatal("failed to get results", zap.Error(err))
		}
		// PSNR of identical images is +Inf, which JSON cannot carry
		for _, r := range results {
			if math.IsInf(r.PSNR, 1) {
				r.PSNR = 0
			}
		}
		if *asJSON {
			printJSON(logger, results)
			break
		}
		data := make([][]string, 0, len(results))
		for _, r := range results {
			data = append(data, []string{
				r.ImageURI,
				fmt.Sprintf("%dx%dx%d", r.Width, r.Height, r.Channels),
				r.Codec,
				fmt.Sprintf("%.0f%%", r.Fill*100),
				bytefmt.ByteSize(uint64(r.PayloadBytes)),
				bytefmt.ByteSize(uint64(r.Capacity)),
				fmt.Sprintf("%.2f", r.PSNR),
				strconv.FormatBool(r.Success),
			})
		}
		report([]string{"image", "size", "codec", "fill", "payload", "capacity", "psnr", "success"}, data)

	case "raw":
		if *rawSQL == "" {
			logger.Fatal("please provide SQL query with --sql flag")
		}
		rows, err := database.ExecuteRawQuery(*rawSQL)
		if err != nil {
			logger.Fatal("failed to execute query", zap.Error(err))
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			logger.Fatal("failed to get columns", zap.Error(err))
		}

		fmt.Println("Columns:", cols)
		for rows.Next() {
			values := make([]any, len(cols))
			valuePtrs := make([]any, len(cols))
			for i := range values {
				valuePtrs[i] = &values[i]
			}
			if err := rows.Scan(valuePtrs...); err != nil {
				logger.Fatal("failed to scan row", zap.Error(err))
			}
			for i, col := range cols {
				fmt.Printf("%s: %v\n", col, values[i])
			}
			fmt.Println("---")
		}

	default:
		logger.Fatal("unknown query type", zap.String("query", *queryType))
	}
}

func report(header []string, data [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()
}

func printJSON(logger *zap.Logger, v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logger.Fatal("failed to encode JSON", zap.Error(err))
	}
}
