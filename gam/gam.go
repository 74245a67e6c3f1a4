package gam

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
	"github.com/YuminosukeSato/statlearn/pkg/log"
)

// TermKind は加法モデルの項の種類
type TermKind int

const (
	// SmoothTerm は平滑化スプラインによる非線形項
	SmoothTerm TermKind = iota
	// LinearTerm は線形項（カテゴリを序数として扱う場合もこちら）
	LinearTerm
)

// Term はGAMの1つの項の仕様
type Term struct {
	Kind   TermKind
	Lambda float64 // SmoothTermの平滑化パラメータ
}

// Smooth は平滑化パラメータlambdaの非線形項を指定する
func Smooth(lambda float64) Term {
	return Term{Kind: SmoothTerm, Lambda: lambda}
}

// Linear は線形項を指定する
func Linear() Term {
	return Term{Kind: LinearTerm}
}

// GAM はバックフィッティングで学習する加法モデル:
//
//	y = α + f₁(x₁) + f₂(x₂) + … + ε
//
// 各fⱼは平滑化スプラインまたは線形項。収束するまで各項を
// 部分残差に対して繰り返し当てはめ直す。
type GAM struct {
	model.BaseEstimator

	Terms   []Term
	MaxIter int
	Tol     float64

	intercept float64
	smoothers []componentSmoother
	fitted    []*mat.VecDense // 各項の訓練データ上の成分値（中心化済み）
	offsets   []float64       // 各項の中心化オフセット
	NIter     int
}

// GAMOption はGAMのオプション
type GAMOption func(*GAM)

// WithBackfitMaxIter はバックフィッティングの最大反復回数を設定する
func WithBackfitMaxIter(n int) GAMOption {
	return func(g *GAM) { g.MaxIter = n }
}

// WithBackfitTol は収束判定の許容誤差を設定する
func WithBackfitTol(tol float64) GAMOption {
	return func(g *GAM) { g.Tol = tol }
}

// NewGAM は項の仕様からGAMを作成する
func NewGAM(terms []Term, opts ...GAMOption) *GAM {
	g := &GAM{Terms: terms, MaxIter: 20, Tol: 1e-4}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// componentSmoother は1変数の成分関数を部分残差に当てはめる内部インターフェース
type componentSmoother interface {
	fit(x, r []float64) error
	eval(x []float64) ([]float64, error)
}

// Fit はモデルをバックフィッティングで学習させる。
// Xの列数はTermsの数と一致していなければならない。
func (g *GAM) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("GAM.Fit", "empty data", errors.ErrEmptyData)
	}
	if p != len(g.Terms) {
		return errors.NewDimensionError("GAM.Fit", len(g.Terms), p, 1)
	}
	if ry != n || cy != 1 {
		return errors.NewDimensionError("GAM.Fit", n, ry, 0)
	}

	logger := log.GetLogger().With(
		log.ModelNameKey, "GAM",
		log.ComponentKey, "gam",
	)

	// 列をスライスに展開
	cols := make([][]float64, p)
	for j := 0; j < p; j++ {
		cols[j] = make([]float64, n)
		for i := 0; i < n; i++ {
			cols[j][i] = X.At(i, j)
		}
	}

	yv := make([]float64, n)
	var yMean float64
	for i := 0; i < n; i++ {
		yv[i] = y.At(i, 0)
		yMean += yv[i]
	}
	yMean /= float64(n)
	g.intercept = yMean

	g.smoothers = make([]componentSmoother, p)
	g.fitted = make([]*mat.VecDense, p)
	g.offsets = make([]float64, p)
	for j := range g.smoothers {
		switch g.Terms[j].Kind {
		case SmoothTerm:
			g.smoothers[j] = &splineComponent{lambda: g.Terms[j].Lambda}
		case LinearTerm:
			g.smoothers[j] = &linearComponent{}
		default:
			return errors.NewValidationError("term", "unknown term kind", g.Terms[j].Kind)
		}
		g.fitted[j] = mat.NewVecDense(n, nil)
	}

	// バックフィッティング: 各項を部分残差に当てはめ、成分を中心化する
	residual := make([]float64, n)
	converged := false
	iter := 0
	for ; iter < g.MaxIter; iter++ {
		maxDelta := 0.0

		for j := 0; j < p; j++ {
			// 部分残差 r = y - α - Σ_{k≠j} f_k
			for i := 0; i < n; i++ {
				r := yv[i] - g.intercept
				for k := 0; k < p; k++ {
					if k != j {
						r -= g.fitted[k].AtVec(i)
					}
				}
				residual[i] = r
			}

			if err := g.smoothers[j].fit(cols[j], residual); err != nil {
				return errors.Wrapf(err, "GAM.Fit: term %d", j)
			}

			comp, err := g.smoothers[j].eval(cols[j])
			if err != nil {
				return errors.Wrapf(err, "GAM.Fit: term %d", j)
			}

			// 識別性のため成分を平均0に中心化
			var m float64
			for _, v := range comp {
				m += v
			}
			m /= float64(n)
			g.offsets[j] = m

			for i := 0; i < n; i++ {
				newVal := comp[i] - m
				d := math.Abs(newVal - g.fitted[j].AtVec(i))
				if d > maxDelta {
					maxDelta = d
				}
				g.fitted[j].SetVec(i, newVal)
			}
		}

		if maxDelta < g.Tol {
			converged = true
			iter++
			break
		}
	}

	g.NIter = iter
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("Backfitting", g.MaxIter, ""))
	}

	logger.Debug("backfitting finished",
		log.OperationKey, "fit",
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.IterationsKey, iter,
	)

	g.SetFitted()
	return nil
}

// Predict は各成分関数の和として予測を行う
func (g *GAM) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GAM", "Predict")
	}

	n, p := X.Dims()
	if p != len(g.Terms) {
		return nil, errors.NewDimensionError("GAM.Predict", len(g.Terms), p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			col[i] = X.At(i, j)
		}
		comp, err := g.Component(j, col)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out.Set(i, 0, out.At(i, 0)+comp[i])
		}
	}
	for i := 0; i < n; i++ {
		out.Set(i, 0, out.At(i, 0)+g.intercept)
	}
	return out, nil
}

// Component は第j項の成分関数をグリッド上で評価する（成分プロット用）。
// 訓練時と同じ中心化オフセットを適用する。
func (g *GAM) Component(j int, grid []float64) ([]float64, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GAM", "Component")
	}
	if j < 0 || j >= len(g.smoothers) {
		return nil, errors.NewValidationError("j", "term index out of range", j)
	}

	raw, err := g.smoothers[j].eval(grid)
	if err != nil {
		return nil, err
	}

	// 訓練時と同じ中心化オフセットを引く
	out := make([]float64, len(raw))
	for i := range raw {
		out[i] = raw[i] - g.offsets[j]
	}
	return out, nil
}

// Intercept は学習された切片αを返す
func (g *GAM) Intercept() float64 { return g.intercept }

// splineComponent は平滑化スプラインによる成分
type splineComponent struct {
	lambda float64
	ss     *SmoothingSpline
}

func (c *splineComponent) fit(x, r []float64) error {
	c.ss = NewSmoothingSpline(WithLambda(c.lambda))
	return c.ss.FitColumn(x, r)
}

func (c *splineComponent) eval(x []float64) ([]float64, error) {
	return c.ss.PredictColumn(x)
}

// linearComponent は線形項による成分
type linearComponent struct {
	slope, xMean float64
}

func (c *linearComponent) fit(x, r []float64) error {
	n := len(x)
	if n == 0 {
		return errors.NewModelError("linearComponent.fit", "empty data", errors.ErrEmptyData)
	}

	var xMean, rMean float64
	for i := range x {
		xMean += x[i]
		rMean += r[i]
	}
	xMean /= float64(n)
	rMean /= float64(n)

	var num, den float64
	for i := range x {
		num += (x[i] - xMean) * (r[i] - rMean)
		den += (x[i] - xMean) * (x[i] - xMean)
	}
	if den == 0 {
		return errors.NewModelError("linearComponent.fit", "constant predictor", errors.ErrSingularMatrix)
	}

	c.slope = num / den
	c.xMean = xMean
	return nil
}

func (c *linearComponent) eval(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = c.slope * (v - c.xMean)
	}
	return out, nil
}

