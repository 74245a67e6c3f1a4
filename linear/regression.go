package linear

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// Regression は最小二乗法による線形回帰モデル。
// 係数に加えて共分散行列 σ̂²(XᵀX)⁻¹ を保持するため、
// 係数の標準誤差・t値と、予測値の標準誤差（信頼バンド用）を計算できる。
type Regression struct {
	model.BaseEstimator

	Names     []string      // 係数の名前（Summary用、省略可）
	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数

	cov        *mat.Dense // (XᵀX)⁻¹（切片を含む (p+1)×(p+1)）
	sigma2     float64    // 残差分散 RSS / (n - p - 1)
	rss        float64    // 残差平方和
	dfResidual int        // 残差自由度
	nSamples   int
}

// NewRegression は新しい線形回帰モデルを作成する
func NewRegression() *Regression {
	return &Regression{}
}

// SetNames は係数の表示名を設定する（Summaryで使用）
func (r *Regression) SetNames(names ...string) {
	r.Names = names
}

// Fit はモデルを訓練データで学習させる。
// 正規方程式 w = (XᵀX)⁻¹Xᵀy を解き、共分散行列と残差分散も保存する。
func (r *Regression) Fit(X, y mat.Matrix) error {
	// 入力の検証
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("Regression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("Regression.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Regression.Fit", "y must be a column vector")
	}
	if n <= p+1 {
		return errors.NewValueError("Regression.Fit", "need more samples than coefficients")
	}

	r.NFeatures = p

	// 切片項のために X に 1 の列を追加
	XWithIntercept := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		XWithIntercept.Set(i, 0, 1.0)
		for j := 0; j < p; j++ {
			XWithIntercept.Set(i, j+1, X.At(i, j))
		}
	}

	var XT mat.Dense
	XT.CloneFrom(XWithIntercept.T())

	var XTX mat.Dense
	XTX.Mul(&XT, XWithIntercept)

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return errors.NewModelError("Regression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	weights := mat.NewVecDense(p+1, nil)
	weights.MulVec(&XTXInv, &XTy)

	// 切片と重みを分離
	r.Intercept = weights.AtVec(0)
	r.Weights = mat.NewVecDense(p, nil)
	for i := 0; i < p; i++ {
		r.Weights.SetVec(i, weights.AtVec(i+1))
	}

	// 残差分散と共分散行列
	var rss float64
	for i := 0; i < n; i++ {
		pred := r.Intercept
		for j := 0; j < p; j++ {
			pred += X.At(i, j) * r.Weights.AtVec(j)
		}
		diff := y.At(i, 0) - pred
		rss += diff * diff
	}

	r.rss = rss
	r.nSamples = n
	r.dfResidual = n - p - 1
	r.sigma2 = rss / float64(r.dfResidual)
	r.cov = &XTXInv

	r.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (r *Regression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "Predict")
	}

	n, p := X.Dims()
	if p != r.NFeatures {
		return nil, errors.NewDimensionError("Regression.Predict", r.NFeatures, p, 1)
	}

	predictions := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		pred := r.Intercept
		for j := 0; j < p; j++ {
			pred += X.At(i, j) * r.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// PredictWithSE は予測値と、その標準誤差 sqrt(σ̂² xᵢᵀ(XᵀX)⁻¹xᵢ) を返す。
// 標準誤差は回帰曲線（平均応答）に対するもので、信頼バンドの構築に使う。
func (r *Regression) PredictWithSE(X mat.Matrix) (fit, se []float64, err error) {
	if !r.IsFitted() {
		return nil, nil, errors.NewNotFittedError("Regression", "PredictWithSE")
	}

	n, p := X.Dims()
	if p != r.NFeatures {
		return nil, nil, errors.NewDimensionError("Regression.PredictWithSE", r.NFeatures, p, 1)
	}

	fit = make([]float64, n)
	se = make([]float64, n)

	xi := mat.NewVecDense(p+1, nil)
	var tmp mat.VecDense
	for i := 0; i < n; i++ {
		xi.SetVec(0, 1.0)
		pred := r.Intercept
		for j := 0; j < p; j++ {
			v := X.At(i, j)
			xi.SetVec(j+1, v)
			pred += v * r.Weights.AtVec(j)
		}
		fit[i] = pred

		// xᵢᵀ(XᵀX)⁻¹xᵢ
		tmp.MulVec(r.cov, xi)
		se[i] = math.Sqrt(r.sigma2 * mat.Dot(xi, &tmp))
	}
	return fit, se, nil
}

// StdErrors は係数（切片を先頭に含む）の標準誤差を返す
func (r *Regression) StdErrors() ([]float64, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "StdErrors")
	}

	p := r.NFeatures
	out := make([]float64, p+1)
	for j := 0; j <= p; j++ {
		out[j] = math.Sqrt(r.sigma2 * r.cov.At(j, j))
	}
	return out, nil
}

// RSS は残差平方和を返す
func (r *Regression) RSS() float64 { return r.rss }

// DFResidual は残差自由度を返す
func (r *Regression) DFResidual() int { return r.dfResidual }

// Score はモデルの決定係数（R²）を計算する
func (r *Regression) Score(X, y mat.Matrix) (float64, error) {
	if !r.IsFitted() {
		return 0, errors.NewNotFittedError("Regression", "Score")
	}

	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}

	n, _ := y.Dims()

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrue := y.At(i, 0)
		yPredVal := yPred.At(i, 0)
		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += (yTrue - yPredVal) * (yTrue - yPredVal)
	}

	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// Summary は係数・標準誤差・t値・p値の表を人間可読な形式で返す
func (r *Regression) Summary() (string, error) {
	if !r.IsFitted() {
		return "", errors.NewNotFittedError("Regression", "Summary")
	}

	se, err := r.StdErrors()
	if err != nil {
		return "", err
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(r.dfResidual)}

	names := make([]string, r.NFeatures+1)
	names[0] = "(Intercept)"
	for j := 1; j <= r.NFeatures; j++ {
		if len(r.Names) >= j {
			names[j] = r.Names[j-1]
		} else {
			names[j] = fmt.Sprintf("x%d", j)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %12s %12s %9s %10s\n", "", "Estimate", "Std. Error", "t value", "Pr(>|t|)")

	coef := func(j int) float64 {
		if j == 0 {
			return r.Intercept
		}
		return r.Weights.AtVec(j - 1)
	}

	for j := 0; j <= r.NFeatures; j++ {
		est := coef(j)
		tval := est / se[j]
		pval := 2 * (1 - tDist.CDF(math.Abs(tval)))
		fmt.Fprintf(&b, "%-14s %12.5f %12.5f %9.3f %10.2e\n", names[j], est, se[j], tval, pval)
	}
	fmt.Fprintf(&b, "\nResidual standard error: %.4f on %d degrees of freedom\n",
		math.Sqrt(r.sigma2), r.dfResidual)

	return b.String(), nil
}
