package linear

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// AnovaRow は入れ子になったモデル間の逐次F検定の1行
type AnovaRow struct {
	ResDF    int     // 残差自由度
	RSS      float64 // 残差平方和
	DF       int     // 追加されたパラメータ数（先頭モデルでは0）
	SumOfSq  float64 // RSSの減少量
	F        float64 // F統計量（先頭モデルではNaN扱いで0）
	PValue   float64 // p値（先頭モデルでは1）
	HasFTest bool    // F検定が定義される行かどうか
}

// Anova は入れ子になった線形モデルの列に対して逐次F検定を行う。
// モデルは単純なものから複雑なものへ順に並んでいる必要があり、
// 各行は直前のモデルとの比較になる。
func Anova(models ...*Regression) ([]AnovaRow, error) {
	if len(models) < 2 {
		return nil, errors.NewValueError("Anova", "need at least two models")
	}

	for i, m := range models {
		if !m.IsFitted() {
			return nil, errors.NewNotFittedError(fmt.Sprintf("Anova model %d", i+1), "Anova")
		}
		if i > 0 && m.DFResidual() >= models[i-1].DFResidual() {
			return nil, errors.NewValueError("Anova", "models must be ordered from simplest to most complex")
		}
	}

	rows := make([]AnovaRow, len(models))
	rows[0] = AnovaRow{ResDF: models[0].DFResidual(), RSS: models[0].RSS()}

	for i := 1; i < len(models); i++ {
		prev, cur := models[i-1], models[i]

		deltaDF := prev.DFResidual() - cur.DFResidual()
		deltaRSS := prev.RSS() - cur.RSS()

		// F = (ΔRSS/Δdf) / (RSS_full/df_full)。分母は比較中の大きい方のモデル。
		f := (deltaRSS / float64(deltaDF)) / (cur.RSS() / float64(cur.DFResidual()))

		fDist := distuv.F{D1: float64(deltaDF), D2: float64(cur.DFResidual())}
		p := 1 - fDist.CDF(f)

		rows[i] = AnovaRow{
			ResDF:    cur.DFResidual(),
			RSS:      cur.RSS(),
			DF:       deltaDF,
			SumOfSq:  deltaRSS,
			F:        f,
			PValue:   p,
			HasFTest: true,
		}
	}

	return rows, nil
}

// FormatAnova はANOVA表を人間可読な形式に整形する
func FormatAnova(rows []AnovaRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%5s %9s %12s %4s %12s %9s %10s\n",
		"Model", "Res.Df", "RSS", "Df", "Sum of Sq", "F", "Pr(>F)")
	for i, row := range rows {
		if row.HasFTest {
			fmt.Fprintf(&b, "%5d %9d %12.1f %4d %12.1f %9.4f %10.2e\n",
				i+1, row.ResDF, row.RSS, row.DF, row.SumOfSq, row.F, row.PValue)
		} else {
			fmt.Fprintf(&b, "%5d %9d %12.1f\n", i+1, row.ResDF, row.RSS)
		}
	}
	return b.String()
}
