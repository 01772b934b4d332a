package bench

import (
	"fmt"
	"math"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ValentinKolb/dRec/cmd/util"
	"github.com/ValentinKolb/dRec/lib/channel"
	"github.com/ValentinKolb/dRec/lib/common"
	"github.com/ValentinKolb/dRec/lib/sink"
)

var (
	benchValues   = 250
	benchSamples  = 10000
	benchInterval = 100 * time.Microsecond
	benchSink     = "null"
	benchOut      = "bench.drec"

	BenchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Recording throughput benchmark",
		Long:    "Registers a set of numeric values on one channel and takes snapshots at high frequency, reporting the latency distribution of TakeSnapshot and the achieved data rate.",
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	key := "values"
	BenchCmd.Flags().Int(key, 250, util.WrapString("Number of values to register on the benchmark channel (each registered four times: float64, float32, int32, int16)"))

	key = "samples"
	BenchCmd.Flags().Int(key, 10000, util.WrapString("Number of snapshots to take"))

	key = "interval"
	BenchCmd.Flags().Duration(key, 100*time.Microsecond, util.WrapString("Pause between snapshots (0 for a tight loop)"))

	key = "sink"
	BenchCmd.Flags().String(key, "null", util.WrapString("Sink to record into (null, file)"))

	key = "out"
	BenchCmd.Flags().String(key, "bench.drec", util.WrapString("Output path for the file sink"))

	key = "log-level"
	BenchCmd.Flags().String(key, "info", util.WrapString("Log level (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	benchValues = viper.GetInt("values")
	benchSamples = viper.GetInt("samples")
	benchInterval = viper.GetDuration("interval")
	benchSink = viper.GetString("sink")
	benchOut = viper.GetString("out")

	common.InitLoggers(viper.GetString("log-level"))
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	registry := channel.NewChannelsRegistry()

	// attach the requested sink before creating the channel
	var (
		recordSink sink.ISink
		err        error
	)
	switch benchSink {
	case "null":
		recordSink = sink.NewDummySink()
	case "file":
		recordSink, err = sink.NewLogFileSink(benchOut)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid sink %s (expected null or file)", benchSink)
	}
	registry.AddDefaultSink(recordSink)

	c := registry.GetChannel("bench")

	// bind the live variables, four flavors per index
	vect64 := make([]float64, benchValues)
	vect32 := make([]float32, benchValues)
	int32s := make([]int32, benchValues)
	int16s := make([]int16, benchValues)
	for i := 0; i < benchValues; i++ {
		num := fmt.Sprintf("%d", i)
		if err := channel.RegisterValue(c, "vect64_"+num, &vect64[i]); err != nil {
			return err
		}
		if err := channel.RegisterValue(c, "vect32_"+num, &vect32[i]); err != nil {
			return err
		}
		if err := channel.RegisterValue(c, "int32_"+num, &int32s[i]); err != nil {
			return err
		}
		if err := channel.RegisterValue(c, "int16_"+num, &int16s[i]); err != nil {
			return err
		}
	}

	timer := metrics.NewTimer()
	var rejected int

	start := time.Now()
	t := 0.0
	for count := 0; count < benchSamples; count++ {
		// simulate changing signals
		s := math.Sin(t)
		for i := 0; i < benchValues; i++ {
			vect64[i] = float64(i) + s
			vect32[i] = float32(float64(i) + s)
			int32s[i] = int32(10 * (float64(i) + s))
			int16s[i] = int16(i % math.MaxInt16)
		}

		timer.Time(func() {
			if !c.TakeSnapshot() {
				rejected++
			}
		})

		if benchInterval > 0 {
			time.Sleep(benchInterval)
		}
		t += 0.001
	}
	elapsed := time.Since(start)

	if err := recordSink.Close(); err != nil {
		return err
	}

	// report
	recordSize := benchValues * (8 + 4 + 4 + 2)
	totalMB := float64(recordSize*benchSamples) / (1024 * 1024)
	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})

	fmt.Printf("\nRESULTS\n")
	fmt.Printf("  %-22s: %d\n", "Snapshots", benchSamples)
	fmt.Printf("  %-22s: %d\n", "Rejected", rejected)
	fmt.Printf("  %-22s: %d bytes\n", "Record size", recordSize)
	fmt.Printf("  %-22s: %.1f MB\n", "Data volume", totalMB)
	fmt.Printf("  %-22s: %.1f MB/s\n", "Throughput", totalMB/elapsed.Seconds())
	fmt.Printf("  %-22s: %.0f ns\n", "Snapshot mean", timer.Mean())
	fmt.Printf("  %-22s: %.0f ns\n", "Snapshot p50", ps[0])
	fmt.Printf("  %-22s: %.0f ns\n", "Snapshot p95", ps[1])
	fmt.Printf("  %-22s: %.0f ns\n", "Snapshot p99", ps[2])
	if benchSink == "file" {
		fmt.Printf("  %-22s: %s\n", "Log file", benchOut)
	}
	return nil
}
