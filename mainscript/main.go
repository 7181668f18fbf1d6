// Command mainscript runs one pressure/wear regression experiment from a
// measurement spreadsheet and writes the report workbook and figures.
package main

import (
	"flag"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	mlpe "github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/dataloader"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/plots"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/report"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/scale"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/search"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/settings"
)

func main() {
	var (
		dataPath  string
		sheet     string
		target    string
		outDir    string
		mode      string
		trainName string
		spaceName string
		scaleName string
		folds     int
		seed      int64
		testFrac  float64
		workers   int
		verbose   bool
	)
	flag.StringVar(&dataPath, "data", "", "measurement spreadsheet (.xlsx) or CSV file")
	flag.StringVar(&sheet, "sheet", "", "workbook sheet to read (default: first sheet)")
	flag.StringVar(&target, "target", "", "target column heading (default: last column)")
	flag.StringVar(&outDir, "out", "results", "output directory for the report and figures")
	flag.StringVar(&mode, "mode", "fit", "fit: train once; search: grid search with cross-validation")
	flag.StringVar(&trainName, "train", settings.StandardTraining, "training preset")
	flag.StringVar(&spaceName, "space", settings.SmallSpace, "search space preset (search mode)")
	flag.StringVar(&scaleName, "scale", scale.NameStandard, "feature scaling: none, minmax or standard")
	flag.IntVar(&folds, "folds", 5, "cross-validation folds (search mode)")
	flag.Int64Var(&seed, "seed", 1, "seed for every stochastic choice in the run")
	flag.Float64Var(&testFrac, "test", 0.2, "fraction of rows held out for testing")
	flag.IntVar(&workers, "workers", 0, "parallel candidate evaluations, 0 for GOMAXPROCS")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if dataPath == "" {
		logrus.Fatal("no data file specified (-data)")
	}

	var source mlpe.DataSource
	switch strings.ToLower(filepath.Ext(dataPath)) {
	case ".xlsx", ".xlsm":
		source = &dataloader.Excel{Path: dataPath, Sheet: sheet, Target: target}
	default:
		source = &dataloader.CSV{Path: dataPath, Target: target}
	}

	inScaler, err := scale.FromString(scaleName)
	if err != nil {
		logrus.Fatal(err)
	}
	outScaler, err := scale.FromString(scaleName)
	if err != nil {
		logrus.Fatal(err)
	}

	cfg, err := settings.Training(trainName)
	if err != nil {
		logrus.Fatal(err)
	}

	var space *search.Space
	switch mode {
	case "fit":
	case "search":
		sp, err := settings.Space(spaceName)
		if err != nil {
			logrus.Fatal(err)
		}
		space = &sp
	default:
		logrus.Fatalf("unknown mode %q (want fit or search)", mode)
	}

	set := &mlpe.Settings{
		Source:       source,
		InputScaler:  inScaler,
		OutputScaler: outScaler,
		TestFraction: testFrac,
		Seed:         seed,
		Net:          cfg,
		Search:       space,
		Folds:        folds,
		Workers:      workers,
		Report:       &report.Workbook{Path: filepath.Join(outDir, "results.xlsx")},
		Plots:        &plots.Dir{Dir: filepath.Join(outDir, "figures")},
	}

	res, err := mlpe.Run(set)
	if err != nil {
		logrus.Fatal(err)
	}
	if !res.SinkErrors.AllNil() {
		logrus.Warn("run finished, but writing some outputs failed:" + res.SinkErrors.Error())
		return
	}
	logrus.WithField("out", outDir).Info("run finished")
}
