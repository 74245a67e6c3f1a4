package model

// EstimatorState は推定器の学習状態を表す
type EstimatorState int

const (
	// NotFitted は未学習の状態。この状態でのPredictはNotFittedErrorになる
	NotFitted EstimatorState = iota
	// Fitted は学習済みの状態
	Fitted
)

// BaseEstimator は学習状態の管理を提供する埋め込み用の基底構造体。
// Regression・Logistic・RandomForest・GradientBoosting・GAMなどの
// 推定器が埋め込み、Fitの末尾でSetFittedを呼び、PredictやSummaryの
// 先頭でIsFittedを確認する。
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted は推定器が学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted は推定器を学習済み状態に設定する。Fitの成功時のみ呼ぶこと
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset は推定器を未学習状態に戻す
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
