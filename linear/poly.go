package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/basis"
	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// PolynomialRegression は1変数の多項式回帰。
// デフォルトでは直交多項式基底を使い、次数ごとの係数検定が独立になる。
// WithRawBasisを指定すると生のべき乗基底 x, x², … を使う。
// どちらの基底でも張る空間は同一なので、当てはめ値は浮動小数点精度の範囲で一致する。
type PolynomialRegression struct {
	model.BaseEstimator

	Degree int
	Reg    *Regression

	raw   bool
	ortho *basis.OrthoPoly
}

// PolyOption はPolynomialRegressionのオプション
type PolyOption func(*PolynomialRegression)

// WithRawBasis は直交基底の代わりに生のべき乗基底を使う
func WithRawBasis() PolyOption {
	return func(p *PolynomialRegression) { p.raw = true }
}

// NewPolynomialRegression は次数degreeの多項式回帰モデルを作成する
func NewPolynomialRegression(degree int, opts ...PolyOption) *PolynomialRegression {
	p := &PolynomialRegression{Degree: degree, Reg: NewRegression()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FitColumn は1変数xと応答yでモデルを学習させる
func (p *PolynomialRegression) FitColumn(x, y []float64) error {
	if len(x) != len(y) {
		return errors.NewDimensionError("PolynomialRegression.FitColumn", len(x), len(y), 0)
	}

	X, err := p.transform(x, true)
	if err != nil {
		return err
	}

	yMat := mat.NewDense(len(y), 1, append([]float64{}, y...))
	if err := p.Reg.Fit(X, yMat); err != nil {
		return err
	}

	p.SetFitted()
	return nil
}

// PredictColumn はグリッド上の予測値を返す
func (p *PolynomialRegression) PredictColumn(x []float64) ([]float64, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialRegression", "PredictColumn")
	}

	X, err := p.transform(x, false)
	if err != nil {
		return nil, err
	}

	pred, err := p.Reg.Predict(X)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i := range out {
		out[i] = pred.At(i, 0)
	}
	return out, nil
}

// PredictWithSE はグリッド上の予測値と標準誤差を返す（信頼バンド用）
func (p *PolynomialRegression) PredictWithSE(x []float64) (fit, se []float64, err error) {
	if !p.IsFitted() {
		return nil, nil, errors.NewNotFittedError("PolynomialRegression", "PredictWithSE")
	}

	X, err := p.transform(x, false)
	if err != nil {
		return nil, nil, err
	}
	return p.Reg.PredictWithSE(X)
}

// Summary は係数表を返す
func (p *PolynomialRegression) Summary() (string, error) {
	if !p.IsFitted() {
		return "", errors.NewNotFittedError("PolynomialRegression", "Summary")
	}
	return p.Reg.Summary()
}

// transform は基底行列を構築する。fit=trueの場合は基底そのものを学習する。
func (p *PolynomialRegression) transform(x []float64, fit bool) (*mat.Dense, error) {
	if p.raw {
		return basis.Raw(x, p.Degree)
	}

	if fit {
		ob, err := basis.NewOrthoPoly(x, p.Degree)
		if err != nil {
			return nil, err
		}
		p.ortho = ob
	}
	if p.ortho == nil {
		return nil, errors.NewNotFittedError("PolynomialRegression", "transform")
	}
	return p.ortho.Transform(x), nil
}
