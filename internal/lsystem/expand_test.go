package lsystem_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fractal/internal/fractal"
	"github.com/san-kum/fractal/internal/lsystem"
)

var _ = Describe("Expand", func() {
	catalog := lsystem.NewCatalog()

	Describe("catalog entries", func() {
		for _, id := range catalog.IDs() {
			def, err := catalog.Lookup(id)
			if err != nil {
				panic(err)
			}

			Context(def.Name, func() {
				It("is internally consistent", func() {
					Expect(def.Validate()).To(Succeed())
				})

				It("returns the axiom for zero iterations", func() {
					Expect(lsystem.Expand(def, 0)).To(Equal(def.Axiom))
				})

				It("matches the computed length and is deterministic", func() {
					limit := def.MaxIterations
					// keep the suite quick for the systems that grow fastest
					if limit > 6 {
						limit = 6
					}
					for n := 1; n <= limit; n++ {
						first, err := lsystem.Expand(def, n)
						Expect(err).NotTo(HaveOccurred())
						second, err := lsystem.Expand(def, n)
						Expect(err).NotTo(HaveOccurred())
						Expect(first).To(Equal(second))

						want, err := lsystem.Length(def, n)
						Expect(err).NotTo(HaveOccurred())
						Expect(first).To(HaveLen(want), "iteration %d", n)
					}
				})

				It("rejects one iteration past the ceiling", func() {
					_, err := lsystem.Expand(def, def.MaxIterations+1)
					Expect(err).To(MatchError(fractal.ErrIterationLimitExceeded))
				})

				It("rejects negative iteration counts", func() {
					_, err := lsystem.Expand(def, -1)
					Expect(err).To(MatchError(fractal.ErrIterationLimitExceeded))
				})
			})
		}
	})

	Describe("rule semantics", func() {
		eraser := &fractal.Definition{
			Name:          "eraser",
			Variables:     "AB",
			Axiom:         "A",
			Rules:         map[byte]string{'A': "AB", 'B': ""},
			TurnAngle:     90,
			MaxIterations: 5,
		}

		It("deletes symbols whose rule is empty", func() {
			Expect(lsystem.Expand(eraser, 1)).To(Equal("AB"))
			Expect(lsystem.Expand(eraser, 2)).To(Equal("AB"))
			Expect(lsystem.Expand(eraser, 5)).To(Equal("AB"))
		})

		It("copies constants through unchanged", func() {
			def := &fractal.Definition{
				Name:          "constants",
				Variables:     "F",
				Axiom:         "F+[F]-G",
				Rules:         map[byte]string{'F': "FF"},
				MaxIterations: 2,
			}
			Expect(lsystem.Expand(def, 1)).To(Equal("FF+[FF]-G"))
			Expect(lsystem.Expand(def, 2)).To(Equal("FFFF+[FFFF]-G"))
		})

		It("reports a variable without a rule", func() {
			broken := &fractal.Definition{
				Name:          "broken",
				Variables:     "FX",
				Axiom:         "X",
				Rules:         map[byte]string{'F': "FF"},
				MaxIterations: 3,
			}
			_, err := lsystem.Expand(broken, 1)
			Expect(err).To(MatchError(fractal.ErrInconsistentDefinition))
			Expect(broken.Validate()).To(MatchError(fractal.ErrInconsistentDefinition))
		})

		It("expands the dragon curve as published", func() {
			id, err := catalog.LookupName("dragon-curve")
			Expect(err).NotTo(HaveOccurred())
			def, err := catalog.Lookup(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(lsystem.Expand(def, 1)).To(Equal("FX+YF+"))
			Expect(lsystem.Expand(def, 2)).To(Equal("FX+YF++-FX-YF+"))
		})

		It("never erases F in the Frec fractal", func() {
			id, err := catalog.LookupName("frec-fractal")
			Expect(err).NotTo(HaveOccurred())
			def, err := catalog.Lookup(id)
			Expect(err).NotTo(HaveOccurred())
			seq, err := lsystem.Expand(def, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(seq, "F")).To(BeNumerically(">", 0))
		})
	})

	Describe("Growth", func() {
		It("lists one length per iteration count", func() {
			def, err := catalog.Lookup(5)
			Expect(err).NotTo(HaveOccurred())
			growth, err := lsystem.Growth(def)
			Expect(err).NotTo(HaveOccurred())
			Expect(growth).To(HaveLen(def.MaxIterations + 1))
			Expect(growth[0]).To(Equal(len(def.Axiom)))
			// Koch island: F -> 8 F and 6 turns, 4 F and 3 turns in the axiom
			Expect(growth[1]).To(Equal(4*14 + 3))
		})
	})
})

var _ = Describe("Catalog", func() {
	catalog := lsystem.NewCatalog()

	It("holds twelve entries numbered from one", func() {
		Expect(catalog.Len()).To(Equal(12))
		Expect(catalog.IDs()[0]).To(Equal(1))
		Expect(catalog.IDs()[11]).To(Equal(12))
	})

	It("fails lookups of unknown ids with a distinct error", func() {
		_, err := catalog.Lookup(0)
		Expect(err).To(MatchError(fractal.ErrUnknownFractal))
		_, err = catalog.Lookup(13)
		Expect(err).To(MatchError(fractal.ErrUnknownFractal))
		Expect(err).NotTo(MatchError(fractal.ErrIterationLimitExceeded))
	})

	It("hands out copies that cannot alter the catalog", func() {
		def, err := catalog.Lookup(2)
		Expect(err).NotTo(HaveOccurred())
		def.Rules['X'] = ""
		def.Axiom = "F"

		again, err := catalog.Lookup(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Axiom).To(Equal("FX"))
		Expect(again.Rules['X']).NotTo(BeEmpty())
	})

	DescribeTable("Resolve",
		func(ref string, want int, wantErr error) {
			id, err := catalog.Resolve(ref)
			if wantErr != nil {
				Expect(err).To(MatchError(wantErr))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(want))
		},
		Entry("numeric id", "7", 7, nil),
		Entry("slug", "koch-snowflake", 12, nil),
		Entry("unknown number", "99", 0, fractal.ErrUnknownFractal),
		Entry("unknown slug", "mandelbrot", 0, fractal.ErrUnknownFractal),
	)
})
