package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWageDeterministic(t *testing.T) {
	a := LoadWage()
	b := LoadWage()

	require.Equal(t, 3000, a.NumRows())
	require.Equal(t, []string{"year", "age", "education", "wage"}, a.Names())

	// 固定シードなので2回のロードは完全に一致する
	wa := a.ColumnData("wage")
	wb := b.ColumnData("wage")
	assert.Equal(t, wa, wb)
}

func TestWageRanges(t *testing.T) {
	wage := LoadWage()

	year := wage.ColumnData("year")
	age := wage.ColumnData("age")
	edu := wage.ColumnData("education")
	w := wage.ColumnData("wage")

	highEarners := 0
	for i := range w {
		assert.GreaterOrEqual(t, year[i], 2003.0)
		assert.LessOrEqual(t, year[i], 2009.0)
		assert.GreaterOrEqual(t, age[i], 18.0)
		assert.LessOrEqual(t, age[i], 80.0)
		assert.GreaterOrEqual(t, edu[i], 1.0)
		assert.LessOrEqual(t, edu[i], 5.0)
		assert.Greater(t, w[i], 0.0)
		if w[i] > HighEarnerThreshold {
			highEarners++
		}
	}

	// 高所得者は存在するが少数派でなければ、ロジスティックの例が成立しない
	assert.Greater(t, highEarners, 10)
	assert.Less(t, highEarners, 3000/4)
}

func TestHighEarner(t *testing.T) {
	labels := HighEarner([]float64{100, 250, 251, 300})
	assert.Equal(t, []float64{0, 0, 1, 1}, labels)
}

func TestLoadHousing(t *testing.T) {
	h := LoadHousing()

	require.Equal(t, 506, h.NumRows())
	require.Len(t, h.Names(), 14)

	medv := h.ColumnData("medv")
	for _, v := range medv {
		assert.GreaterOrEqual(t, v, 5.0)
		assert.LessOrEqual(t, v, 50.0)
	}

	// 13個の説明変数すべてを行列として取り出せる
	X, err := h.Matrix(HousingPredictors...)
	require.NoError(t, err)
	r, c := X.Dims()
	assert.Equal(t, 506, r)
	assert.Equal(t, 13, c)
}

func TestTrainTestSplitPartition(t *testing.T) {
	trainIdx, testIdx, err := TrainTestSplit(506, 253, 7)
	require.NoError(t, err)

	assert.Len(t, trainIdx, 253)
	assert.Len(t, testIdx, 253)

	// 完全な分割: 重複なし、全行をカバー
	seen := make(map[int]bool, 506)
	for _, i := range trainIdx {
		seen[i] = true
	}
	for _, i := range testIdx {
		assert.False(t, seen[i], "row %d appears in both subsets", i)
		seen[i] = true
	}
	assert.Len(t, seen, 506)

	// 同じシードは同じ分割を返す
	trainIdx2, _, err := TrainTestSplit(506, 253, 7)
	require.NoError(t, err)
	assert.Equal(t, trainIdx, trainIdx2)
}

func TestTrainTestSplitValidation(t *testing.T) {
	_, _, err := TrainTestSplit(0, 0, 1)
	assert.Error(t, err)

	_, _, err = TrainTestSplit(10, 10, 1)
	assert.Error(t, err)
}

func TestGrid(t *testing.T) {
	g := Grid(18, 80, 63)
	require.Len(t, g, 63)
	assert.Equal(t, 18.0, g[0])
	assert.Equal(t, 80.0, g[62])
	assert.InDelta(t, 1.0, g[1]-g[0], 1e-12)
}
