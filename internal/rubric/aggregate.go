package rubric

// AbsentItemPolicy decides how an item the model did not score affects its
// dimension.
type AbsentItemPolicy int

const (
	// ExcludeAbsent averages only the items that were scored. A dimension
	// with no scored item is left out. A model can raise a dimension score
	// by omitting its weakest items.
	ExcludeAbsent AbsentItemPolicy = iota

	// ScoreAbsentAsZero counts every unscored item as 0, so all five
	// dimensions are always present.
	ScoreAbsentAsZero
)

func (p AbsentItemPolicy) String() string {
	switch p {
	case ExcludeAbsent:
		return "exclude-absent"
	case ScoreAbsentAsZero:
		return "score-absent-as-zero"
	}
	return "unknown"
}

// Scores is the locally computed part of an evaluation.
type Scores struct {
	// Dimensions holds the mean item score (0-2) per dimension code.
	Dimensions map[string]float64

	// FullScore is the sum of the dimension scores (0-10).
	FullScore float64
}

// Aggregate computes dimension and full scores with ExcludeAbsent.
func Aggregate(items map[string]float64) Scores {
	return AggregateWith(items, ExcludeAbsent)
}

// AggregateWith computes dimension scores as the mean of each dimension's
// item scores and the full score as their sum. Unknown item codes are
// ignored and scores are clamped to the item range.
func AggregateWith(items map[string]float64, policy AbsentItemPolicy) Scores {
	out := Scores{Dimensions: make(map[string]float64, len(dimensions))}

	for _, d := range dimensions {
		var sum float64
		var n int
		for _, it := range d.Items {
			score, ok := items[it.Code]
			if !ok {
				if policy == ScoreAbsentAsZero {
					n++
				}
				continue
			}
			sum += clamp(score)
			n++
		}
		if n == 0 {
			continue
		}
		mean := sum / float64(n)
		out.Dimensions[d.Code] = mean
		out.FullScore += mean
	}
	return out
}

func clamp(score float64) float64 {
	if score < MinItemScore {
		return MinItemScore
	}
	if score > MaxItemScore {
		return MaxItemScore
	}
	return score
}
