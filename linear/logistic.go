package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// Logistic は二値ロジスティック回帰。IRLS（反復再重み付け最小二乗法）で学習する。
// 収束時の (XᵀWX)⁻¹ を保持するため、ロジットスケールでの予測標準誤差を計算できる。
// 信頼バンドはロジットスケールで構築してから逆ロジット変換で確率スケールへ写す。
type Logistic struct {
	model.BaseEstimator

	MaxIter int
	Tol     float64

	Weights   *mat.VecDense
	Intercept float64
	NFeatures int
	NIter     int

	cov *mat.Dense // (XᵀWX)⁻¹（切片を含む）
}

// LogisticOption はLogisticのオプション
type LogisticOption func(*Logistic)

// WithMaxIter はIRLSの最大反復回数を設定する
func WithMaxIter(n int) LogisticOption {
	return func(l *Logistic) { l.MaxIter = n }
}

// WithTol はIRLSの収束判定の許容誤差を設定する
func WithTol(tol float64) LogisticOption {
	return func(l *Logistic) { l.Tol = tol }
}

// NewLogistic は新しいロジスティック回帰モデルを作成する
func NewLogistic(opts ...LogisticOption) *Logistic {
	l := &Logistic{MaxIter: 100, Tol: 1e-8}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fit はモデルをIRLSで学習させる。yは0/1の列ベクトル。
func (l *Logistic) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("Logistic.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("Logistic.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Logistic.Fit", "y must be a column vector")
	}
	for i := 0; i < n; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return errors.NewValidationError("y", "labels must be 0 or 1", v)
		}
	}

	l.NFeatures = p

	// 切片込みの計画行列
	Xd := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		Xd.Set(i, 0, 1.0)
		for j := 0; j < p; j++ {
			Xd.Set(i, j+1, X.At(i, j))
		}
	}

	beta := mat.NewVecDense(p+1, nil)
	eta := mat.NewVecDense(n, nil)
	w := make([]float64, n)
	z := mat.NewVecDense(n, nil)

	converged := false
	iter := 0
	for ; iter < l.MaxIter; iter++ {
		eta.MulVec(Xd, beta)

		// 作業重みと作業応答
		for i := 0; i < n; i++ {
			mu := sigmoid(eta.AtVec(i))
			wi := mu * (1 - mu)
			if wi < 1e-10 {
				wi = 1e-10
			}
			w[i] = wi
			z.SetVec(i, eta.AtVec(i)+(y.At(i, 0)-mu)/wi)
		}

		// 重み付き正規方程式 (XᵀWX)β = XᵀWz を解く
		XtW := mat.NewDense(p+1, n, nil)
		for j := 0; j <= p; j++ {
			for i := 0; i < n; i++ {
				XtW.Set(j, i, Xd.At(i, j)*w[i])
			}
		}

		var XtWX mat.Dense
		XtWX.Mul(XtW, Xd)

		var XtWXInv mat.Dense
		if err := XtWXInv.Inverse(&XtWX); err != nil {
			return errors.NewModelError("Logistic.Fit", "singular weighted normal matrix", errors.ErrSingularMatrix)
		}

		var XtWz mat.VecDense
		XtWz.MulVec(XtW, z)

		newBeta := mat.NewVecDense(p+1, nil)
		newBeta.MulVec(&XtWXInv, &XtWz)

		// 収束判定: 係数の最大変化量
		maxDelta := 0.0
		for j := 0; j <= p; j++ {
			d := math.Abs(newBeta.AtVec(j) - beta.AtVec(j))
			if d > maxDelta {
				maxDelta = d
			}
		}
		beta.CopyVec(newBeta)
		l.cov = &XtWXInv

		if maxDelta < l.Tol {
			converged = true
			iter++
			break
		}
	}

	l.NIter = iter
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("IRLS", l.MaxIter, ""))
	}

	l.Intercept = beta.AtVec(0)
	l.Weights = mat.NewVecDense(p, nil)
	for j := 0; j < p; j++ {
		l.Weights.SetVec(j, beta.AtVec(j+1))
	}

	l.SetFitted()
	return nil
}

// PredictLogitWithSE はロジットスケールでの予測値と標準誤差を返す。
// 信頼バンドはこのスケールで構築し、表示前に逆ロジット変換する。
func (l *Logistic) PredictLogitWithSE(X mat.Matrix) (fit, se []float64, err error) {
	if !l.IsFitted() {
		return nil, nil, errors.NewNotFittedError("Logistic", "PredictLogitWithSE")
	}

	n, p := X.Dims()
	if p != l.NFeatures {
		return nil, nil, errors.NewDimensionError("Logistic.PredictLogitWithSE", l.NFeatures, p, 1)
	}

	fit = make([]float64, n)
	se = make([]float64, n)

	xi := mat.NewVecDense(p+1, nil)
	var tmp mat.VecDense
	for i := 0; i < n; i++ {
		xi.SetVec(0, 1.0)
		eta := l.Intercept
		for j := 0; j < p; j++ {
			v := X.At(i, j)
			xi.SetVec(j+1, v)
			eta += v * l.Weights.AtVec(j)
		}
		fit[i] = eta

		tmp.MulVec(l.cov, xi)
		se[i] = math.Sqrt(mat.Dot(xi, &tmp))
	}
	return fit, se, nil
}

// PredictProba は各行の陽性クラス確率を列ベクトルとして返す
func (l *Logistic) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !l.IsFitted() {
		return nil, errors.NewNotFittedError("Logistic", "PredictProba")
	}

	n, p := X.Dims()
	if p != l.NFeatures {
		return nil, errors.NewDimensionError("Logistic.PredictProba", l.NFeatures, p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		eta := l.Intercept
		for j := 0; j < p; j++ {
			eta += X.At(i, j) * l.Weights.AtVec(j)
		}
		out.Set(i, 0, sigmoid(eta))
	}
	return out, nil
}

// Predict は確率0.5を閾値として0/1のクラスを返す
func (l *Logistic) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := l.PredictProba(X)
	if err != nil {
		return nil, err
	}

	n, _ := proba.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if proba.At(i, 0) > 0.5 {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
