package dataset

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// HighEarnerThreshold は高所得者の二値化に使う賃金の閾値（千ドル単位）
const HighEarnerThreshold = 250.0

const (
	wageRows = 3000
	wageSeed = 42
)

// 教育水準（序数カテゴリ 1〜5）
const (
	EduNoHS       = 1.0 // 高卒未満
	EduHSGrad     = 2.0 // 高卒
	EduSomeCol    = 3.0 // 大学中退
	EduCollege    = 4.0 // 大卒
	EduAdvanced   = 5.0 // 大学院卒
	NumEducations = 5
)

// LoadWage は賃金テーブルを返す。
// カラム: year（2003〜2009）、age（18〜80）、education（1〜5）、wage（千ドル）。
// 固定シードから生成されるため、すべての実行で同一のテーブルが得られる。
// 賃金はageに対して凹型（40〜60歳付近でピーク）、educationに対して単調、
// yearに対して緩やかに増加し、右に裾を引くノイズが乗る。
func LoadWage() *Table {
	src := rand.NewSource(wageSeed)
	rng := rand.New(src)

	noise := distuv.Normal{Mu: 0, Sigma: 0.28, Src: src}

	data := mat.NewDense(wageRows, 4, nil)
	for i := 0; i < wageRows; i++ {
		year := float64(2003 + rng.Intn(7))
		age := float64(18 + rng.Intn(63))
		education := sampleEducation(rng)

		// 年齢効果: 18歳で0、50歳前後でピークの凹カーブ
		x := age - 18
		ageEffect := 2.1*x - 0.024*x*x

		base := 38.0 +
			1.1*(year-2003) +
			15.5*education +
			ageEffect

		wage := base * math.Exp(noise.Rand())
		if wage < 15 {
			wage = 15
		}

		data.Set(i, 0, year)
		data.Set(i, 1, age)
		data.Set(i, 2, education)
		data.Set(i, 3, wage)
	}

	t, err := NewTable([]string{"year", "age", "education", "wage"}, data)
	if err != nil {
		panic(err) // 固定スキーマなので起こらない
	}
	return t
}

// sampleEducation は教育水準を現実的な比率でサンプリングする
func sampleEducation(rng *rand.Rand) float64 {
	u := rng.Float64()
	switch {
	case u < 0.09:
		return EduNoHS
	case u < 0.42:
		return EduHSGrad
	case u < 0.64:
		return EduSomeCol
	case u < 0.86:
		return EduCollege
	default:
		return EduAdvanced
	}
}

// HighEarner はwage列を閾値250で二値化したラベル（0/1）を返す
func HighEarner(wage []float64) []float64 {
	out := make([]float64, len(wage))
	for i, w := range wage {
		if w > HighEarnerThreshold {
			out[i] = 1
		}
	}
	return out
}
