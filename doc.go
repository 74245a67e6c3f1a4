// Package statlearn provides a statistical learning toolkit for Go,
// covering the classic regression workflow: polynomial regression,
// regression and smoothing splines, generalized additive models,
// random forests and gradient boosting.
//
// statlearn offers a scikit-learn-like API built on gonum, with
// structured errors and logging suitable for reproducible experiments.
//
// # Quick Start
//
// Fit a degree-4 polynomial of age on the wage data:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/statlearn/dataset"
//	    "github.com/YuminosukeSato/statlearn/linear"
//	)
//
//	func main() {
//	    wage := dataset.LoadWage()
//
//	    model := linear.NewPolynomialRegression(4)
//	    if err := model.FitColumn(wage.ColumnData("age"), wage.ColumnData("wage")); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    grid := dataset.Grid(18, 80, 63)
//	    fit, se, err := model.PredictWithSE(grid)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(fit[0], se[0])
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - dataset: the wage and housing tables, grids and train/test splits
//   - basis: polynomial and spline basis construction
//   - linear: least squares, ANOVA, polynomial and logistic regression
//   - gam: smoothing splines and backfitting additive models
//   - ensemble: regression trees, random forests, gradient boosting
//   - sweep: hyperparameter sweep evaluation (OOB and held-out error)
//   - interval: confidence band construction and the logistic transform
//   - metrics: evaluation metrics (MSE, RMSE, MAE, R²)
//   - plot: gonum/plot rendering of fits, bands and error curves
//   - core/model: core interfaces and base types
//   - core/parallel: parallel processing utilities
//
// # License
//
// statlearn is released under the MIT License.
package statlearn
