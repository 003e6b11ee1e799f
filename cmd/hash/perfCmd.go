package hash

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/dTT/cmd/util"
	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/pipeline"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for Tokyo Tyrant hash databases",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix   = "__test"
	perfValueSize   = 16
	perfNumThreads  = 10
	perfOpsPerTest  = 10000
	perfKeySpread   = 100
	perfSkip        = make([]string, 0)
	perfShowMetrics = false
)

// perfResult is the outcome of one benchmark
type perfResult struct {
	name    string
	timer   gometrics.Timer
	errors  gometrics.Counter
	elapsed time.Duration
	skipped bool
}

// perfOp performs a single operation against the key with the given index
type perfOp func(ctx context.Context, i int) error

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines sharing the connection"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("Number of operations per benchmark"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 16, util.WrapString("The size of the stored values (in bytes)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics"
	perfTestCmd.Flags().Bool(key, false, util.WrapString("Print the request metrics of the client in Prometheus format after the run"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfValueSize = max(viper.GetInt("value-size"), 0)
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfOpsPerTest = max(viper.GetInt("ops"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	perfShowMetrics = viper.GetBool("metrics")

	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for Tokyo Tyrant hash databases")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Operations: %s\n", humanize.Comma(int64(perfOpsPerTest)))
	fmt.Printf("Value Size: %s\n", humanize.IBytes(uint64(perfValueSize)))
	fmt.Println()

	fmt.Println("starting tests...")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	registry := gometrics.NewRegistry()
	value := make([]byte, perfValueSize)

	var results []perfResult

	// put
	getKey, iter := getKeys("put")
	results = append(results, benchmark(ctx, registry, "put", func(ctx context.Context, i int) error {
		return rpcHash.Put(ctx, getKey(i), value)
	}))
	cleanup(ctx, "put", iter)

	// putnr
	getKey, iter = getKeys("putnr")
	results = append(results, benchmark(ctx, registry, "putnr", func(ctx context.Context, i int) error {
		return rpcHash.PutNR(ctx, getKey(i), value)
	}))
	cleanup(ctx, "putnr", iter)

	// get
	getKey, iter = getKeys("get")
	prepare(ctx, "get", iter, value)
	results = append(results, benchmark(ctx, registry, "get", func(ctx context.Context, i int) error {
		_, err := rpcHash.Get(ctx, getKey(i))
		return err
	}))
	cleanup(ctx, "get", iter)

	// get-missing
	results = append(results, benchmark(ctx, registry, "get-missing", func(ctx context.Context, i int) error {
		_, err := rpcHash.Get(ctx, fmt.Sprintf("%s-missing-%d", perfKeyPrefix, i%perfKeySpread))
		if errors.Is(err, common.ErrNoRecord) {
			return nil
		}
		return err
	}))

	// mget
	getKey, iter = getKeys("mget")
	prepare(ctx, "mget", iter, value)
	batch := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		batch = append(batch, getKey(i))
	}
	results = append(results, benchmark(ctx, registry, "mget", func(ctx context.Context, _ int) error {
		_, err := rpcHash.MGet(ctx, batch)
		return err
	}))
	cleanup(ctx, "mget", iter)

	// addint
	getKey, iter = getKeys("addint")
	results = append(results, benchmark(ctx, registry, "addint", func(ctx context.Context, i int) error {
		_, err := rpcHash.AddInt(ctx, getKey(i), 1)
		return err
	}))
	cleanup(ctx, "addint", iter)

	// mixed
	getKey, iter = getKeys("mixed")
	prepare(ctx, "mixed", iter, value)
	results = append(results, benchmark(ctx, registry, "mixed", func(ctx context.Context, i int) error {
		var err error
		key := getKey(i)
		switch i % 4 {
		case 0:
			err = rpcHash.Put(ctx, key, value)
		case 1:
			_, err = rpcHash.Get(ctx, key)
		case 2:
			err = rpcHash.Out(ctx, key)
		case 3:
			_, err = rpcHash.VSiz(ctx, key)
		}
		if errors.Is(err, common.ErrNoRecord) {
			return nil
		}
		return err
	}))
	cleanup(ctx, "mixed", iter)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	if perfShowMetrics {
		fmt.Println()
		pipeline.Metrics.WritePrometheus(os.Stdout)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// benchmark runs perfOpsPerTest operations spread over perfNumThreads goroutines
func benchmark(ctx context.Context, registry gometrics.Registry, test string, op perfOp) perfResult {
	result := perfResult{
		name:    test,
		timer:   gometrics.GetOrRegisterTimer(test, registry),
		errors:  gometrics.GetOrRegisterCounter(test+".errors", registry),
		skipped: shouldSkip(test),
	}
	if result.skipped {
		printResult(result)
		return result
	}

	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < perfNumThreads; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := worker; i < perfOpsPerTest; i += perfNumThreads {
				begin := time.Now()
				err := op(ctx, i)
				result.timer.UpdateSince(begin)
				if err != nil {
					result.errors.Inc(1)
					util.Logger.Warningf("(%s) - operation failed: %v", test, err)
				}
			}
		}(w)
	}
	wg.Wait()
	result.elapsed = time.Since(start)

	printResult(result)
	return result
}

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// prepare stores a value for every test key
func prepare(ctx context.Context, test string, iter func(func(string)), value []byte) {
	if shouldSkip(test) {
		return
	}
	iter(func(k string) {
		if err := rpcHash.Put(ctx, k, value); err != nil {
			util.Logger.Warningf("(%s) - error setting key: %v", test, err)
		}
	})
}

// cleanup removes every test key, missing keys are ignored
func cleanup(ctx context.Context, test string, iter func(func(string))) {
	if shouldSkip(test) {
		return
	}
	iter(func(k string) {
		if err := rpcHash.Out(ctx, k); err != nil && !errors.Is(err, common.ErrNoRecord) {
			util.Logger.Warningf("(%s) - error deleting key: %v", test, err)
		}
	})
}

// opsPerSec returns the throughput of a benchmark
func (r perfResult) opsPerSec() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.timer.Count()) / r.elapsed.Seconds()
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(r perfResult) {
	if r.skipped {
		fmt.Printf("%-14sskipped\n", r.name)
		return
	}

	ps := r.timer.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-14s%s/op (p50 %s, p95 %s, p99 %s)\t%.0f ops/sec\t%d errors\n",
		r.name,
		time.Duration(r.timer.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
		r.opsPerSec(),
		r.errors.Count(),
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "Ops", "Errors", "MeanNs", "P50Ns", "P95Ns", "P99Ns", "OpsPerSec", "Skipped",
		"Endpoint", "TimeoutSec", "Transport", "Threads", "ValueSize", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, r := range results {
		ps := r.timer.Percentiles([]float64{0.5, 0.95, 0.99})
		row := []string{
			r.name,
			strconv.FormatInt(r.timer.Count(), 10),
			strconv.FormatInt(r.errors.Count(), 10),
			fmt.Sprintf("%.0f", r.timer.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			fmt.Sprintf("%.0f", r.opsPerSec()),
			strconv.FormatBool(r.skipped),
			config.Transport.Endpoint,
			strconv.Itoa(config.TimeoutSecond),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfValueSize),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", r.name, err)
		}
	}

	return nil
}
