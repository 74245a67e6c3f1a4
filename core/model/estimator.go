package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// FitPredictor は学習と予測の両方が可能なモデルのインターフェース
type FitPredictor interface {
	Fitter
	Predictor
}

// OOBReporter はリサンプリングに基づく内部誤差推定（out-of-bag誤差）を
// 報告できるアンサンブルモデルのインターフェース。
// ブースティングのようにリサンプリングを行わない手法はこのインターフェースを
// 実装しない。内部誤差はその場合「存在しない」のであって、代替値で捏造しない。
type OOBReporter interface {
	// OOBError は学習データに対するout-of-bag誤差（MSE）を返す
	OOBError() (float64, error)
}

// Summarizer は係数表などの人間可読なサマリを出力できるモデルのインターフェース
type Summarizer interface {
	// Summary はモデルのサマリ文字列を返す
	Summary() (string, error)
}
