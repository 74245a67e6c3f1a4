// Package dataset は賃金データと住宅データの2つの固定テーブルを提供します。
// どちらも固定シードから決定的に生成され、ロード後は不変の参照データとして扱います。
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// Table は名前付きカラムを持つ不変のテーブルデータ
type Table struct {
	names []string
	index map[string]int
	data  *mat.Dense
}

// NewTable は名前付きカラムを持つテーブルを作成する
func NewTable(names []string, data *mat.Dense) (*Table, error) {
	_, c := data.Dims()
	if c != len(names) {
		return nil, errors.NewDimensionError("NewTable", len(names), c, 1)
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	return &Table{names: names, index: index, data: data}, nil
}

// NumRows は行数を返す
func (t *Table) NumRows() int {
	r, _ := t.data.Dims()
	return r
}

// Names はカラム名の一覧を返す
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column は指定カラムを列ベクトルとして返す
func (t *Table) Column(name string) (*mat.VecDense, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, errors.NewValueError("Table.Column", "unknown column: "+name)
	}

	r := t.NumRows()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, t.data.At(i, j))
	}
	return v, nil
}

// ColumnData は指定カラムをスライスとして返す。
// 既知のカラム名で使う前提の簡易アクセサで、未知のカラムはpanicする。
func (t *Table) ColumnData(name string) []float64 {
	j, ok := t.index[name]
	if !ok {
		panic("dataset: unknown column: " + name)
	}

	r := t.NumRows()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = t.data.At(i, j)
	}
	return out
}

// Matrix は指定したカラム群をn×k行列として返す
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	r := t.NumRows()
	m := mat.NewDense(r, len(names), nil)

	for k, name := range names {
		j, ok := t.index[name]
		if !ok {
			return nil, errors.NewValueError("Table.Matrix", "unknown column: "+name)
		}
		for i := 0; i < r; i++ {
			m.Set(i, k, t.data.At(i, j))
		}
	}
	return m, nil
}

// Grid はlowからhighまでn点の等間隔な予測グリッドを生成する
func Grid(low, high float64, n int) []float64 {
	if n <= 1 {
		return []float64{low}
	}

	out := make([]float64, n)
	step := (high - low) / float64(n-1)
	for i := range out {
		out[i] = low + float64(i)*step
	}
	return out
}
