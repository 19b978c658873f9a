package stats

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"ordstat/domain/analysis"
	"ordstat/domain/core"
)

// UnclassifiedDomain labels repositories absent from the external mapping.
// They keep their consistency scores but never enter the ANOVA.
const UnclassifiedDomain = "unclassified"

// DomainComparator runs the one-way ANOVA of consistency scores across
// externally assigned domain labels.
type DomainComparator struct{}

// NewDomainComparator creates a domain comparator.
func NewDomainComparator() *DomainComparator {
	return &DomainComparator{}
}

// Compare groups defined scores by domain label and tests whether mean
// consistency differs across domains. Undefined scores never enter; domains
// with fewer than two scored repositories are reported as insufficient.
func (c *DomainComparator) Compare(scores []analysis.ConsistencyScore, domains map[core.RepositoryID]string) analysis.DomainComparison {
	grouped := make(map[string][]float64)
	unclassified := 0
	for _, s := range scores {
		if !s.Defined {
			continue
		}
		label, ok := domains[s.RepositoryID]
		if !ok || label == UnclassifiedDomain {
			unclassified++
			continue
		}
		grouped[label] = append(grouped[label], s.Score)
	}

	comparison := analysis.DomainComparison{Unclassified: unclassified}

	labels := make([]string, 0, len(grouped))
	for label := range grouped {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var usable []string
	for _, label := range labels {
		stat := describeDomain(label, grouped[label])
		if stat.Repositories < 2 {
			comparison.Insufficient = append(comparison.Insufficient, stat)
			continue
		}
		comparison.Domains = append(comparison.Domains, stat)
		usable = append(usable, label)
	}

	k := len(usable)
	if k < 2 {
		return comparison
	}

	// Grand mean over usable groups.
	var grandSum float64
	var n int
	for _, label := range usable {
		for _, v := range grouped[label] {
			grandSum += v
			n++
		}
	}
	grand := grandSum / float64(n)

	var ssBetween, ssWithin float64
	for _, label := range usable {
		group := grouped[label]
		mean, _ := stats.Mean(group)
		diff := mean - grand
		ssBetween += float64(len(group)) * diff * diff
		for _, v := range group {
			d := v - mean
			ssWithin += d * d
		}
	}

	betweenDF := k - 1
	withinDF := n - k
	if withinDF < 1 {
		return comparison
	}

	msWithin := ssWithin / float64(withinDF)
	if msWithin == 0 {
		// All within-group scores identical: F is undefined. Explicit
		// degeneracy rule, same policy as zero-observation entropy.
		return comparison
	}

	f := (ssBetween / float64(betweenDF)) / msWithin
	fDist := distuv.F{D1: float64(betweenDF), D2: float64(withinDF)}

	comparison.Tested = true
	comparison.FStatistic = f
	comparison.PValue = 1 - fDist.CDF(f)
	comparison.BetweenDF = betweenDF
	comparison.WithinDF = withinDF
	return comparison
}

func describeDomain(label string, scores []float64) analysis.DomainStat {
	stat := analysis.DomainStat{Domain: label, Repositories: len(scores)}
	if len(scores) == 0 {
		return stat
	}
	stat.MeanScore, _ = stats.Mean(scores)
	if len(scores) > 1 {
		stat.Variance, _ = stats.SampleVariance(scores)
	}
	return stat
}
