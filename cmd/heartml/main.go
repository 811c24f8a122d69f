// Command heartml runs the heart-failure survival analysis end to end: it
// loads the clinical-records CSV, builds a stratified train/test split,
// preprocesses and validates the training data, cross-validates the candidate
// models and evaluates the selected logistic regression on the held-out
// partition, writing all report artifacts to the output directory.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/heartml/heartml/pkg/log"
	"github.com/heartml/heartml/report"
)

func main() {
	cfg := report.DefaultConfig()

	flag.StringVar(&cfg.DataPath, "data", "heart_failure_clinical_records_dataset.csv", "path to the clinical-records CSV file")
	flag.StringVar(&cfg.OutputDir, "out", "output", "directory for generated artifacts")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for the split, folds and models")
	flag.Float64Var(&cfg.TestFraction, "test-fraction", cfg.TestFraction, "held-out fraction of the dataset")
	flag.IntVar(&cfg.Folds, "folds", cfg.Folds, "number of cross-validation folds")
	loglevel := flag.String("loglevel", "info", "log level: debug, info, warn, error")
	flag.Parse()

	log.SetupLogger(*loglevel)

	result, err := report.Run(cfg)
	if err != nil {
		slog.Error("analysis failed", log.ErrAttrKey, err)
		os.Exit(1)
	}

	fmt.Printf("selected C=%g (cv accuracy %.4f)\n", result.BestC, result.Selected.BestScore)
	fmt.Printf("test accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f\n",
		result.Scores.Accuracy, result.Scores.Precision, result.Scores.Recall, result.Scores.F1)
}
