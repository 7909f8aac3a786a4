package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"exp/internal/db"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// renderChart draws average PSNR (left axis) and the changed-sample and
// success rates (right axis) against the fill ratio, one series per codec.
func renderChart(outputPath string, stats []*db.FillStats) error {
	var fills []float64
	byCodec := make(map[string]map[float64]*db.FillStats)
	var codecs []string
	for _, s := range stats {
		if !slices.Contains(fills, s.Fill) {
			fills = append(fills, s.Fill)
		}
		if _, ok := byCodec[s.Codec]; !ok {
			byCodec[s.Codec] = make(map[float64]*db.FillStats)
			codecs = append(codecs, s.Codec)
		}
		byCodec[s.Codec][s.Fill] = s
	}
	slices.Sort(fills)
	slices.Sort(codecs)

	xAxisData := make([]string, len(fills))
	for i, f := range fills {
		xAxisData[i] = fmt.Sprintf("%.0f%%", f*100)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Distortion vs Fill Ratio",
			Subtitle: "Average PSNR and changed samples of LSB embedding",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "payload / capacity",
			Type: "category",
			Data: xAxisData,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "PSNR (dB)",
			Type: "value",
			AxisLabel: &opts.AxisLabel{
				Formatter: "{value}",
			},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)
	line.SetXAxis(xAxisData)

	// Extend Y-axis for dual axis (must be done before adding the rate series)
	line.ExtendYAxis(opts.YAxis{
		Name: "Rate (%)",
		Type: "value",
		Min:  0,
		Max:  100,
		AxisLabel: &opts.AxisLabel{
			Formatter: "{value}%",
		},
	})

	for _, codec := range codecs {
		var psnrData, changedData, successData []opts.LineData
		for _, f := range fills {
			s, ok := byCodec[codec][f]
			if !ok {
				psnrData = append(psnrData, opts.LineData{Value: "-"})
				changedData = append(changedData, opts.LineData{Value: "-"})
				successData = append(successData, opts.LineData{Value: "-"})
				continue
			}
			psnrData = append(psnrData, opts.LineData{
				Value: s.AvgPSNR,
				Name:  fmt.Sprintf("PSNR=%.2f (n=%d)", s.AvgPSNR, s.TotalTests),
			})
			changedData = append(changedData, opts.LineData{
				Value: s.AvgChangedRatio * 100,
				Name:  fmt.Sprintf("Changed=%.2f%% (n=%d)", s.AvgChangedRatio*100, s.TotalTests),
			})
			successData = append(successData, opts.LineData{
				Value: s.SuccessRate * 100,
				Name:  fmt.Sprintf("Success=%.1f%% (n=%d)", s.SuccessRate*100, s.TotalTests),
			})
		}

		line.AddSeries("PSNR "+codec, psnrData,
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(true),
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)
		line.AddSeries("Changed samples "+codec, changedData,
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(true),
				YAxisIndex: 1,
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)
		line.AddSeries("Success "+codec, successData,
			charts.WithLineChartOpts(opts.LineChart{
				YAxisIndex: 1,
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return line.Render(f)
}
