package dataset

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	housingRows = 506
	housingSeed = 1
)

// HousingPredictors は住宅テーブルの13個の数値説明変数のカラム名
var HousingPredictors = []string{
	"crim", "zn", "indus", "chas", "nox", "rm", "age",
	"dis", "rad", "tax", "ptratio", "lstat", "b",
}

// LoadHousing は郊外ごとの住宅統計テーブル（506行）を返す。
// 13個の数値説明変数と連続目的変数medv（住宅価格の中央値、千ドル）を持つ。
// 固定シードから生成されるため、すべての実行で同一のテーブルが得られる。
// medvは主にrm（部屋数、正の効果）とlstat（低所得世帯割合、負の効果）で駆動される。
func LoadHousing() *Table {
	src := rand.NewSource(housingSeed)
	rng := rand.New(src)

	stdNorm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: 2.8, Src: src}

	names := append(append([]string{}, HousingPredictors...), "medv")
	data := mat.NewDense(housingRows, len(names), nil)

	for i := 0; i < housingRows; i++ {
		// 都心度を潜在変数として共有させ、予測変数間に相関を持たせる
		urban := rng.Float64()

		crim := math.Exp(stdNorm.Rand()*1.6 - 1.5 + 3.5*urban)
		zn := 0.0
		if urban < 0.3 {
			zn = float64(rng.Intn(9)) * 12.5
		}
		indus := 2.0 + 20.0*urban + 2.0*stdNorm.Rand()
		chas := 0.0
		if rng.Float64() < 0.07 {
			chas = 1.0
		}
		nox := 0.40 + 0.35*urban + 0.03*stdNorm.Rand()
		rm := 6.28 + 0.70*stdNorm.Rand() - 0.45*urban
		age := 100 * math.Pow(rng.Float64(), 0.45)
		dis := 1.1 + 9.0*(1-urban)*rng.Float64()
		rad := math.Floor(1 + 23*urban*rng.Float64())
		tax := 187 + 520*urban + 25*stdNorm.Rand()
		ptratio := 12.6 + 9.0*rng.Float64()
		lstat := clamp(12.65+7.0*stdNorm.Rand()+6.0*urban-4.0*(rm-6.28), 1.7, 38.0)
		b := clamp(396.9-160.0*urban*rng.Float64(), 0.3, 396.9)

		medv := 22.5 +
			6.2*(rm-6.28) -
			0.62*(lstat-12.65) -
			12.0*(nox-0.55) +
			0.9*chas -
			0.35*(ptratio-17.0) -
			0.05*crim +
			noise.Rand()
		medv = clamp(medv, 5.0, 50.0)

		row := []float64{crim, zn, indus, chas, nox, rm, age, dis, rad, tax, ptratio, lstat, b, medv}
		data.SetRow(i, row)
	}

	t, err := NewTable(names, data)
	if err != nil {
		panic(err) // 固定スキーマなので起こらない
	}
	return t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
