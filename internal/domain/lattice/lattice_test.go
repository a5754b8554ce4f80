package lattice_test

import (
	"testing"

	"github.com/okian/brokengap/internal/domain/lattice"
	"github.com/okian/brokengap/internal/domain/material"
	"github.com/okian/brokengap/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFit(t *testing.T) {
	Convey("Given pairs of lattice components", t, func() {
		Convey("When one is zero", func() {
			So(lattice.Fit(0, 3.2), ShouldEqual, 0)
			So(lattice.Fit(-4.1, 0), ShouldEqual, 0)
		})

		Convey("When one is an integer multiple of the other", func() {
			So(lattice.Fit(2, 6), ShouldEqual, 0)
			So(lattice.Fit(-3.25, 6.5), ShouldEqual, 0)
		})

		Convey("When the larger is just above a multiple", func() {
			So(lattice.Fit(2, 6.5), ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("When the larger is just below a multiple", func() {
			So(lattice.Fit(2, 7.5), ShouldAlmostEqual, 0.5, 1e-12)
			So(lattice.Fit(4, 7), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("When the larger sits halfway", func() {
			So(lattice.Fit(2, 5), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("When the arguments are swapped", func() {
			So(lattice.Fit(3.1, 7.7), ShouldEqual, lattice.Fit(7.7, 3.1))
		})
	})
}

func TestScore(t *testing.T) {
	Convey("Given standardized lattices", t, func() {
		a := material.Lattice{{3.19, 0, 0}, {-1.595, 2.763, 0}, {0, 0, 18.1}}

		Convey("When compared with itself", func() {
			So(lattice.Score(a, a), ShouldEqual, 0)
			So(lattice.Score(material.Identity(), material.Identity()), ShouldEqual, 0)
		})

		Convey("When one lattice is an integer supercell of the other", func() {
			var b material.Lattice
			for i := range a {
				for j := range a[i] {
					b[i][j] = 2 * a[i][j]
				}
			}
			So(lattice.Score(a, b), ShouldEqual, 0)
			So(lattice.Score(b, a), ShouldEqual, 0)
		})

		Convey("When the lattices differ", func() {
			b := material.Lattice{{3.3, 0, 0}, {-1.65, 2.858, 0}, {0, 0, 20}}
			want := lattice.Fit(3.19, 3.3) + lattice.Fit(-1.595, -1.65) + lattice.Fit(2.763, 2.858) + lattice.Fit(18.1, 20)

			So(lattice.Score(a, b), ShouldAlmostEqual, want, 1e-12)
			So(lattice.Score(a, b), ShouldEqual, lattice.Score(b, a))
			So(lattice.Score(a, b), ShouldBeGreaterThan, 0)
		})

		Convey("When comparing a generated catalogue pairwise", func() {
			records := synth.New(synth.WithSeed(7), synth.WithCount(25)).Records()

			Convey("Then the score should be symmetric, non-negative and zero on the diagonal", func() {
				for i := range records {
					li, err := material.ParseLattice(records[i].StdLattice)
					So(err, ShouldBeNil)
					So(lattice.Score(li, li), ShouldEqual, 0)
					for j := range records {
						lj, err := material.ParseLattice(records[j].StdLattice)
						So(err, ShouldBeNil)
						s := lattice.Score(li, lj)
						So(s, ShouldBeGreaterThanOrEqualTo, 0)
						So(s, ShouldEqual, lattice.Score(lj, li))
					}
				}
			})
		})
	})
}
