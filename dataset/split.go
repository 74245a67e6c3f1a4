package dataset

import (
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// TrainTestSplit は0..n-1の行インデックスを訓練とテストに分割する。
// 訓練行は非復元の一様サンプリングで一度だけ選び、残りがテスト行になる。
// 2つのインデックス列は必ず全体の完全な分割になる（重複なし、サイズの和はn）。
func TrainTestSplit(n, trainSize int, seed uint64) (trainIdx, testIdx []int, err error) {
	if n <= 0 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "n must be positive")
	}
	if trainSize <= 0 || trainSize >= n {
		return nil, nil, errors.NewValidationError("trainSize", "must be in (0, n)", trainSize)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	trainIdx = append([]int{}, perm[:trainSize]...)
	testIdx = append([]int{}, perm[trainSize:]...)
	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	return trainIdx, testIdx, nil
}

// Take は行インデックスで指定した部分行列を新しい行列として返す
func Take(m mat.Matrix, idx []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, row := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(row, j))
		}
	}
	return out
}

// TakeVec は行インデックスで指定した部分ベクトルを新しい列ベクトルとして返す
func TakeVec(v *mat.VecDense, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, row := range idx {
		out.SetVec(i, v.AtVec(row))
	}
	return out
}

// TakeSlice は行インデックスで指定した部分スライスを返す
func TakeSlice(x []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, row := range idx {
		out[i] = x[row]
	}
	return out
}
