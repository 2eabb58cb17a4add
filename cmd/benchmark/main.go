// ABOUTME: Command-line benchmark runner for projection and clustering quality
// ABOUTME: Executes synthetic scenarios and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harper/flowscope/benchmarks/clustering"
	"github.com/harper/flowscope/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	testID := flag.String("test", "", "Run specific test (separated, overlap, highdim). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	// Projection settings come from the same env vars as the server
	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("========================================")
	fmt.Println("flowscope Clustering Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner := clustering.NewBenchmarkRunner(cfg.Projection(), *verbose)
	ctx := context.Background()

	var results []clustering.TestResult
	if *testID == "" {
		fmt.Println("Running all clustering benchmark tests...")
		fmt.Println()
		results, err = runner.RunAllTests(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		var scenario clustering.TestScenario
		switch *testID {
		case "separated":
			scenario = clustering.GetWellSeparated()
		case "overlap":
			scenario = clustering.GetOverlapping()
		case "highdim":
			scenario = clustering.GetHighDimensional()
		default:
			log.Fatalf("Unknown test ID: %s (valid options: separated, overlap, highdim)", *testID)
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)
		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			log.Fatalf("Test failed: %v", err)
		}
		results = []clustering.TestResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	passed := 0
	failed := 0
	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		if result.ErrorMessage != "" {
			fmt.Printf("  Error: %s\n", result.ErrorMessage)
		}
		fmt.Printf("  Clusters found: %d\n", result.ClustersFound)
		fmt.Printf("  ARI: %.3f\n", result.ARI)
		fmt.Printf("  Purity: %.3f\n", result.Purity)
		fmt.Printf("  Noise: %.1f%%\n", result.NoiseFraction*100)
		fmt.Printf("  Time: %s\n", result.Duration)
		fmt.Printf("  Status: %s\n", result.Status)

		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("Results exported to: %s\n", *outputPath)

	if failed > 0 {
		os.Exit(1)
	}
}
