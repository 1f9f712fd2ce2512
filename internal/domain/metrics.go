package domain

import (
	m "solseed.dev/pkg/solseed/internal/model"
)

// ComputeMetrics derives precision, recall and F1 from match results.
// A zero denominator yields an undefined ratio, which callers must surface
// distinctly from a true 0.0 score.
func ComputeMetrics(results []m.MatchResult) m.Metrics {
	var metrics m.Metrics

	for _, r := range results {
		switch r.Verdict {
		case m.TruePositive:
			metrics.TP++
		case m.FalsePositive:
			metrics.FP++
		case m.FalseNegative:
			metrics.FN++
		}
	}

	metrics.Precision = ratio(metrics.TP, metrics.TP+metrics.FP)
	metrics.Recall = ratio(metrics.TP, metrics.TP+metrics.FN)
	metrics.F1 = f1(metrics.Precision, metrics.Recall)

	return metrics
}

// MetricsByBugType partitions results by bug type and computes per-type
// metrics. FP results keyed by the finding's type, FN by the injection's.
func MetricsByBugType(results []m.MatchResult) map[m.BugType]m.Metrics {
	byType := make(map[m.BugType][]m.MatchResult)

	for _, r := range results {
		var bt m.BugType

		switch {
		case r.Injection != nil:
			bt = r.Injection.BugType
		case r.Finding != nil:
			bt = r.Finding.BugType
		default:
			continue
		}

		byType[bt] = append(byType[bt], r)
	}

	out := make(map[m.BugType]m.Metrics, len(byType))
	for bt, rs := range byType {
		out[bt] = ComputeMetrics(rs)
	}

	return out
}

func ratio(num, den int) m.Ratio {
	if den == 0 {
		return m.Ratio{}
	}

	return m.Ratio{Value: float64(num) / float64(den), Defined: true}
}

func f1(precision, recall m.Ratio) m.Ratio {
	if !precision.Defined || !recall.Defined {
		return m.Ratio{}
	}

	if precision.Value+recall.Value == 0 {
		return m.Ratio{Value: 0, Defined: true}
	}

	value := 2 * precision.Value * recall.Value / (precision.Value + recall.Value)

	return m.Ratio{Value: value, Defined: true}
}
