package services_test

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"noelserdna/cyber-cv-analyzer/internal/services"
)

const cvSample = "Professional experience: senior security engineer with twelve years in cybersecurity. " +
	"Education: university degree in computer science. " +
	"Skills: penetration testing, incident response, cloud security. " +
	"Certifications held include CISSP and OSCP. "

func TestCalculateParsingConfidence(t *testing.T) {
	Convey("Given empty or whitespace-only text", t, func() {
		Convey("Then confidence is exactly zero", func() {
			So(services.CalculateParsingConfidence("", 1), ShouldEqual, 0.0)
			So(services.CalculateParsingConfidence("   \n\t  ", 3), ShouldEqual, 0.0)
		})
	})

	Convey("Given a long, realistic CV text", t, func() {
		text := strings.Repeat(cvSample, 10)

		Convey("Then confidence is high but never above one", func() {
			confidence := services.CalculateParsingConfidence(text, 1)
			So(confidence, ShouldBeGreaterThan, 0.7)
			So(confidence, ShouldBeLessThanOrEqualTo, 1.0)
		})
	})

	Convey("Given a very short extraction", t, func() {
		short := services.CalculateParsingConfidence("John Doe", 1)
		long := services.CalculateParsingConfidence(strings.Repeat(cvSample, 10), 1)

		Convey("Then the short-text penalty pulls it down hard", func() {
			So(short, ShouldBeLessThan, 0.1)
			So(short, ShouldBeLessThan, long)
		})
	})

	Convey("Given a multi-page document with sparse text", t, func() {
		text := strings.Repeat(cvSample, 10)
		onePage := services.CalculateParsingConfidence(text, 1)
		tenPages := services.CalculateParsingConfidence(text, 10)

		Convey("Then the per-page sparsity penalty applies", func() {
			So(tenPages, ShouldBeLessThan, onePage)
		})
	})

	Convey("Given the same text across page counts with enough density", t, func() {
		// ~2400 chars over 2 pages is above the sparsity cutoff.
		text := strings.Repeat(cvSample, 10)

		Convey("Then dense multi-page documents are not penalized", func() {
			So(services.CalculateParsingConfidence(text, 2), ShouldEqual,
				services.CalculateParsingConfidence(text, 1))
		})
	})

	Convey("Given low-quality symbol noise", t, func() {
		noise := strings.Repeat("@@##%%&&((]][[", 60)

		Convey("Then confidence stays low and inside the bounds", func() {
			confidence := services.CalculateParsingConfidence(noise, 1)
			So(confidence, ShouldBeGreaterThanOrEqualTo, 0.0)
			So(confidence, ShouldBeLessThan, 0.5)
		})
	})
}

func TestDetectLanguage(t *testing.T) {
	Convey("Given a Spanish CV", t, func() {
		text := "Experiencia profesional: ingeniero de ciberseguridad con diez años de experiencia. " +
			"Educación: universidad politécnica, maestría en seguridad. " +
			"Conocimientos técnicos y proyectos de desarrollo seguro. " +
			"Trabajé como analista y después como gerente de seguridad."

		Convey("Then Spanish is detected", func() {
			So(services.DetectLanguage(text), ShouldEqual, "es")
		})
	})

	Convey("Given an English CV", t, func() {
		text := strings.Repeat(cvSample, 2)

		Convey("Then English is detected", func() {
			So(services.DetectLanguage(text), ShouldEqual, "en")
		})
	})

	Convey("Given a tie in keyword hits", t, func() {
		Convey("Then English wins", func() {
			So(services.DetectLanguage("experiencia years"), ShouldEqual, "en")
		})
	})

	Convey("Given empty text", t, func() {
		Convey("Then English is the default", func() {
			So(services.DetectLanguage(""), ShouldEqual, "en")
			So(services.DetectLanguage("  \n "), ShouldEqual, "en")
		})
	})
}
