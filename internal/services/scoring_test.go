package services_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"noelserdna/cyber-cv-analyzer/internal/models"
	"noelserdna/cyber-cv-analyzer/internal/services"
)

// allParameters fills every parameter with the same raw score.
func allParameters(score float64) map[string]services.RawParameter {
	raw := make(map[string]services.RawParameter)
	for _, ref := range (&models.DetailedScores{}).Ordered() {
		raw[ref.Name] = services.RawParameter{Score: score, Justification: "uniform fixture"}
	}
	return raw
}

func TestBuildDetailedScores(t *testing.T) {
	Convey("Given agent output with no parameters at all", t, func() {
		scores := services.BuildDetailedScores(nil)

		Convey("Then every parameter exists with defaults", func() {
			refs := scores.Ordered()
			So(refs, ShouldHaveLength, 24)
			for _, ref := range refs {
				So(ref.Param.Score, ShouldEqual, 0.0)
				So(ref.Param.Justification, ShouldEqual, "No data provided")
				So(ref.Param.Evidence, ShouldNotBeNil)
				So(ref.Param.Evidence, ShouldBeEmpty)
			}
		})

		Convey("And weights come from the fixed table, not the agent", func() {
			So(scores.Certifications.Weight, ShouldEqual, 1.2)
			So(scores.Experience.Weight, ShouldEqual, 1.2)
			So(scores.OffensiveSkills.Weight, ShouldEqual, 1.1)
			So(scores.DefensiveSkills.Weight, ShouldEqual, 1.1)
			So(scores.CloudSecurity.Weight, ShouldEqual, 1.1)
			So(scores.Crisis.Weight, ShouldEqual, 1.1)
			So(scores.Education.Weight, ShouldEqual, 0.9)
			So(scores.Contributions.Weight, ShouldEqual, 0.9)
			So(scores.Publications.Weight, ShouldEqual, 0.9)
			So(scores.Languages.Weight, ShouldEqual, 0.8)
			So(scores.Governance.Weight, ShouldEqual, 1.0)
			So(scores.Tools.Weight, ShouldEqual, 1.0)
		})
	})

	Convey("Given agent output covering a single parameter", t, func() {
		scores := services.BuildDetailedScores(map[string]services.RawParameter{
			"certifications": {
				Score:         9.0,
				Justification: "CISSP and OSCP, both current",
				Evidence:      []string{"CISSP (2021)", "OSCP (2023)"},
			},
		})

		Convey("Then that parameter carries the agent's data", func() {
			So(scores.Certifications.Score, ShouldEqual, 9.0)
			So(scores.Certifications.Justification, ShouldEqual, "CISSP and OSCP, both current")
			So(scores.Certifications.Evidence, ShouldHaveLength, 2)
			So(scores.Certifications.Weight, ShouldEqual, 1.2)
		})

		Convey("And the other 23 keep their defaults", func() {
			So(scores.OffensiveSkills.Score, ShouldEqual, 0.0)
			So(scores.OffensiveSkills.Justification, ShouldEqual, "No data provided")
			So(scores.Experience.Score, ShouldEqual, 0.0)
		})
	})

	Convey("Given agent output with gaps inside a parameter", t, func() {
		scores := services.BuildDetailedScores(map[string]services.RawParameter{
			"tools": {Score: 5.5},
		})

		Convey("Then the score is kept but the missing fields default", func() {
			So(scores.Tools.Score, ShouldEqual, 5.5)
			So(scores.Tools.Justification, ShouldEqual, "No data provided")
			So(scores.Tools.Evidence, ShouldNotBeNil)
			So(scores.Tools.Evidence, ShouldBeEmpty)
		})
	})

	Convey("Given agent output with an unknown parameter name", t, func() {
		scores := services.BuildDetailedScores(map[string]services.RawParameter{
			"basket_weaving": {Score: 10.0, Justification: "impressive but irrelevant"},
		})

		Convey("Then it is ignored and the shape stays at 24 entries", func() {
			So(scores.Ordered(), ShouldHaveLength, 24)
			for _, ref := range scores.Ordered() {
				So(ref.Param.Score, ShouldEqual, 0.0)
			}
		})
	})
}

func TestParameterWeight(t *testing.T) {
	Convey("Given the weight table", t, func() {
		Convey("Then known parameters return their table weight", func() {
			So(services.ParameterWeight("certifications"), ShouldEqual, 1.2)
			So(services.ParameterWeight("experience"), ShouldEqual, 1.2)
			So(services.ParameterWeight("languages"), ShouldEqual, 0.8)
			So(services.ParameterWeight("niche_specialties"), ShouldEqual, 1.0)
		})

		Convey("And unknown names fall back to neutral weight", func() {
			So(services.ParameterWeight("underwater_basket_weaving"), ShouldEqual, 1.0)
		})
	})
}

func TestWeightedTotalScore(t *testing.T) {
	Convey("Given a fully zero score set", t, func() {
		scores := services.BuildDetailedScores(nil)

		Convey("Then the total is zero", func() {
			So(services.WeightedTotalScore(scores), ShouldEqual, 0.0)
		})
	})

	Convey("Given a uniform score set", t, func() {
		scores := services.BuildDetailedScores(allParameters(8.0))

		Convey("Then weighting cancels out and the total equals the input", func() {
			So(services.WeightedTotalScore(scores), ShouldAlmostEqual, 8.0, 0.001)
		})
	})

	Convey("Given a perfect score set", t, func() {
		scores := services.BuildDetailedScores(allParameters(10.0))

		Convey("Then the total stays within the scale", func() {
			total := services.WeightedTotalScore(scores)
			So(total, ShouldAlmostEqual, 10.0, 0.001)
			So(total, ShouldBeLessThanOrEqualTo, 10.0)
		})
	})

	Convey("Given a single scored parameter among defaults", t, func() {
		scores := services.BuildDetailedScores(map[string]services.RawParameter{
			"certifications": {Score: 9.0, Justification: "CISSP current"},
		})

		Convey("Then the total is its weighted share of the full set", func() {
			// 9.0 * 1.2 over the summed weight of all 24 parameters (24.3).
			So(services.WeightedTotalScore(scores), ShouldAlmostEqual, 0.44, 0.001)
		})
	})

	Convey("Given a score set whose weights are all zero", t, func() {
		scores := &models.DetailedScores{}

		Convey("Then the total is zero instead of dividing by zero", func() {
			So(services.WeightedTotalScore(scores), ShouldEqual, 0.0)
		})
	})
}

func TestPercentile(t *testing.T) {
	Convey("Given the percentile projection", t, func() {
		Convey("Then it scales the total score onto 0-100", func() {
			So(services.Percentile(0.0), ShouldEqual, 0)
			So(services.Percentile(7.23), ShouldEqual, 72)
			So(services.Percentile(8.0), ShouldEqual, 80)
			So(services.Percentile(10.0), ShouldEqual, 100)
		})

		Convey("And it rounds to the nearest point", func() {
			So(services.Percentile(7.25), ShouldEqual, 73)
			So(services.Percentile(7.24), ShouldEqual, 72)
		})

		Convey("And out-of-range totals clamp to the bounds", func() {
			So(services.Percentile(-1.0), ShouldEqual, 0)
			So(services.Percentile(10.4), ShouldEqual, 100)
		})
	})
}
