// Package gam は平滑化スプラインとバックフィッティングによる一般化加法モデルを提供します。
// 平滑化は罰則付きBスプライン回帰（Pスプライン）で行い、数値計算はgonumに委譲します。
package gam

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/basis"
	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// SmoothingSpline は1変数の平滑化スプライン。
// 分位点に配置した節点によるBスプライン基底と、隣接係数の2階差分に対する
// リッジ罰則でなめらかさを制御する。罰則行列は λ·D₂ᵀD₂。
type SmoothingSpline struct {
	model.BaseEstimator

	Lambda   float64 // 平滑化パラメータ（大きいほどなめらか）
	NumKnots int     // 内部節点の数（データ量に応じて自動で減る）

	spline    *basis.Spline
	intercept float64
	coef      *mat.VecDense
}

// SmoothOption はSmoothingSplineのオプション
type SmoothOption func(*SmoothingSpline)

// WithLambda は平滑化パラメータを設定する
func WithLambda(lambda float64) SmoothOption {
	return func(s *SmoothingSpline) { s.Lambda = lambda }
}

// WithNumKnots は内部節点の数を設定する
func WithNumKnots(k int) SmoothOption {
	return func(s *SmoothingSpline) { s.NumKnots = k }
}

// NewSmoothingSpline は新しい平滑化スプラインを作成する
func NewSmoothingSpline(opts ...SmoothOption) *SmoothingSpline {
	s := &SmoothingSpline{Lambda: 1.0, NumKnots: 20}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FitColumn は1変数xと応答yで平滑化スプラインを学習させる
func (s *SmoothingSpline) FitColumn(x, y []float64) error {
	if len(x) != len(y) {
		return errors.NewDimensionError("SmoothingSpline.FitColumn", len(x), len(y), 0)
	}
	if len(x) == 0 {
		return errors.NewModelError("SmoothingSpline.FitColumn", "empty data", errors.ErrEmptyData)
	}
	if s.Lambda < 0 {
		return errors.NewValidationError("lambda", "must be non-negative", s.Lambda)
	}

	knots, err := quantileKnots(x, s.NumKnots)
	if err != nil {
		return err
	}

	sp, err := basis.NewBSpline(x, knots)
	if err != nil {
		return err
	}
	s.spline = sp

	B := sp.Transform(x)
	n, k := B.Dims()

	// 応答を中心化して切片を分離する
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)
	s.intercept = yMean

	// (BᵀB + λD₂ᵀD₂)c = Bᵀ(y - ȳ) を解く
	var BtB mat.Dense
	BtB.Mul(B.T(), B)

	P := secondDiffPenalty(k)
	A := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			A.SetSym(i, j, BtB.At(i, j)+s.Lambda*P.At(i, j))
		}
	}

	rhs := mat.NewVecDense(k, nil)
	for j := 0; j < k; j++ {
		var v float64
		for i := 0; i < n; i++ {
			v += B.At(i, j) * (y[i] - yMean)
		}
		rhs.SetVec(j, v)
	}

	var chol mat.Cholesky
	if !chol.Factorize(A) {
		return errors.NewModelError("SmoothingSpline.FitColumn", "penalized normal matrix not positive definite", errors.ErrSingularMatrix)
	}

	coef := mat.NewVecDense(k, nil)
	if err := chol.SolveVecTo(coef, rhs); err != nil {
		return errors.NewModelError("SmoothingSpline.FitColumn", "solve failed", err)
	}
	s.coef = coef

	s.SetFitted()
	return nil
}

// PredictColumn はグリッド上の平滑化関数の値を返す
func (s *SmoothingSpline) PredictColumn(x []float64) ([]float64, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SmoothingSpline", "PredictColumn")
	}

	B := s.spline.Transform(x)
	out := make([]float64, len(x))
	for i := range x {
		v := s.intercept
		for j := 0; j < s.coef.Len(); j++ {
			v += B.At(i, j) * s.coef.AtVec(j)
		}
		out[i] = v
	}
	return out, nil
}

// quantileKnots はxの分位点にnumKnots個の内部節点を配置する。
// ユニークな値が少ない場合は節点数を自動的に減らす。
func quantileKnots(x []float64, numKnots int) ([]float64, error) {
	sorted := append([]float64{}, x...)
	sort.Float64s(sorted)

	unique := sorted[:0:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			unique = append(unique, v)
		}
	}
	if len(unique) < 4 {
		return nil, errors.NewValueError("quantileKnots", "need at least 4 distinct values")
	}

	k := numKnots
	if max := len(unique) - 2; k > max {
		k = max
	}

	knots := make([]float64, 0, k)
	for i := 1; i <= k; i++ {
		q := float64(i) / float64(k+1)
		idx := int(q * float64(len(unique)-1))
		if idx == 0 {
			idx = 1
		}
		if idx >= len(unique)-1 {
			idx = len(unique) - 2
		}
		v := unique[idx]
		if len(knots) == 0 || v > knots[len(knots)-1] {
			knots = append(knots, v)
		}
	}
	return knots, nil
}

// secondDiffPenalty は係数ベクトルの2階差分罰則行列 D₂ᵀD₂ を返す
func secondDiffPenalty(k int) *mat.Dense {
	P := mat.NewDense(k, k, nil)
	if k < 3 {
		return P
	}

	// D₂ は (k-2)×k の2階差分行列
	for r := 0; r < k-2; r++ {
		row := []float64{1, -2, 1}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				P.Set(r+a, r+b, P.At(r+a, r+b)+row[a]*row[b])
			}
		}
	}
	return P
}
