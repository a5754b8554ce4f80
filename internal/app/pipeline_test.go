package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/brokengap/internal/adapters/cache"
	"github.com/okian/brokengap/internal/adapters/mq/worker"
	"github.com/okian/brokengap/internal/adapters/source"
	"github.com/okian/brokengap/internal/app"
	"github.com/okian/brokengap/internal/domain/material"
	"github.com/okian/brokengap/internal/domain/rules"
	"github.com/okian/brokengap/internal/domain/screening"
	"github.com/okian/brokengap/internal/synth"
	"github.com/okian/brokengap/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func record(uid string, vbm, cbm, area float64) material.Record {
	return material.Record{
		UID:            uid,
		Formula:        uid + "2",
		Class:          material.Ptr("X"),
		SpaceGroup:     "P2/m",
		SpgNum:         10,
		CrystalType:    material.Ptr("AB"),
		HSE:            material.Band{VBM: material.Ptr(vbm), CBM: material.Ptr(cbm)},
		StabilityLevel: material.Ptr(3),
		IsMagnetic:     material.Ptr(0),
		CellArea:       material.Ptr(area),
		StdLattice:     material.Identity().Rows(),
	}
}

func catalogue() *source.Static {
	broken := record("B", -6, -5, 10)
	broken.CellArea = nil
	return &source.Static{
		Name:    "fixture",
		Records: []material.Record{record("L", -5, -4, 10), record("R", -3, -1, 20), broken},
	}
}

type failingSource struct{}

func (failingSource) ID() string { return "failing" }

func (failingSource) Load(context.Context) ([]material.Record, error) {
	return nil, source.ErrUnavailable
}

type failingCache struct {
	loads, stores int
}

func (f *failingCache) Load(context.Context, string) ([]screening.Candidate, bool, error) {
	f.loads++
	return nil, false, cache.ErrLoad
}

func (f *failingCache) Store(context.Context, string, []screening.Candidate) error {
	f.stores++
	return cache.ErrStore
}

func TestPipelineRun(t *testing.T) {
	Convey("Given a catalogue with one type III pair and one broken record", t, func() {
		ctx := context.Background()

		Convey("When running the strict rule set without a cache", func() {
			p, err := app.New(catalogue(), rules.NewStrict())
			So(err, ShouldBeNil)
			res, err := p.Run(ctx)

			Convey("Then the pair should be ranked and the broken record excluded", func() {
				So(err, ShouldBeNil)
				So(res.RuleSet, ShouldEqual, "strict")
				So(res.SourceID, ShouldEqual, "static:fixture")
				So(res.Records, ShouldEqual, 3)
				So(res.Subjects(), ShouldEqual, 2)
				So(res.Excluded, ShouldHaveLength, 1)
				So(res.Excluded[0].UID, ShouldEqual, "B")
				So(res.Candidates, ShouldHaveLength, 1)
				So(res.Candidates[0].LeftUID, ShouldEqual, "L")
				So(res.Candidates[0].RightUID, ShouldEqual, "R")
				So(res.Tally.Total(), ShouldEqual, 4)
				So(res.Tally.Count(screening.StageAccepted), ShouldEqual, 1)
				So(res.FromCache, ShouldBeFalse)
				So(res.CacheErr, ShouldBeNil)
				So(res.Key, ShouldNotBeEmpty)
				So(res.SpaceGroups(), ShouldEqual, 1)
			})
		})

		Convey("When running twice against a memory cache", func() {
			mem := cache.NewMemory()
			p, err := app.New(catalogue(), rules.NewTopInsulators(), app.WithCache(mem))
			So(err, ShouldBeNil)

			first, err := p.Run(ctx)
			So(err, ShouldBeNil)
			second, err := p.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then the second run should be served from the cache", func() {
				So(first.FromCache, ShouldBeFalse)
				So(second.FromCache, ShouldBeTrue)
				So(second.Key, ShouldEqual, first.Key)
				So(second.Candidates, ShouldResemble, first.Candidates)
				So(second.RunID, ShouldNotEqual, first.RunID)
				So(mem.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the cache fails on both load and store", func() {
			fc := &failingCache{}
			p, err := app.New(catalogue(), rules.NewStrict(), app.WithCache(fc))
			So(err, ShouldBeNil)
			res, err := p.Run(ctx)

			Convey("Then the run should still compute the ranking and report the cache errors", func() {
				So(err, ShouldBeNil)
				So(res.Candidates, ShouldHaveLength, 1)
				So(res.FromCache, ShouldBeFalse)
				So(errors.Is(res.CacheErr, cache.ErrLoad), ShouldBeTrue)
				So(errors.Is(res.CacheErr, cache.ErrStore), ShouldBeTrue)
				So(fc.loads, ShouldEqual, 1)
				So(fc.stores, ShouldEqual, 1)
			})
		})

		Convey("When the rule set changes between runs", func() {
			mem := cache.NewMemory()
			strict, err := app.New(catalogue(), rules.NewStrict(), app.WithCache(mem))
			So(err, ShouldBeNil)
			loose, err := app.New(catalogue(), rules.NewTopInsulators(), app.WithCache(mem))
			So(err, ShouldBeNil)

			a, err := strict.Run(ctx)
			So(err, ShouldBeNil)
			b, err := loose.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then the cache entries should not be shared", func() {
				So(a.Key, ShouldNotEqual, b.Key)
				So(b.FromCache, ShouldBeFalse)
				So(mem.Len(), ShouldEqual, 2)
			})
		})
	})
}

func TestPipelineFailures(t *testing.T) {
	Convey("Given pipelines that cannot complete", t, func() {
		Convey("When the record source fails", func() {
			p, err := app.New(failingSource{}, rules.NewStrict())
			So(err, ShouldBeNil)
			res, err := p.Run(context.Background())

			Convey("Then the run should fail with the source error", func() {
				So(res, ShouldBeNil)
				So(errors.Is(err, source.ErrUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			p, err := app.New(catalogue(), rules.NewStrict())
			So(err, ShouldBeNil)
			_, err = p.Run(ctx)

			Convey("Then the run should report the cancellation", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When the rule set is invalid", func() {
			rs := rules.NewStrict()
			rs.AllowedFunctionals = 0
			_, err := app.New(catalogue(), rs)

			Convey("Then construction should fail", func() {
				So(errors.Is(err, rules.ErrInvalidRuleSet), ShouldBeTrue)
			})
		})

		Convey("When no source is given", func() {
			_, err := app.New(nil, rules.NewStrict())

			Convey("Then construction should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestPipelineWorkerPool(t *testing.T) {
	Convey("Given a synthetic catalogue", t, func() {
		src := &source.Static{
			Name:    "synth",
			Records: synth.New(synth.WithSeed(11), synth.WithCount(60)).Records(),
		}

		Convey("When ranking sequentially and with a worker pool", func() {
			seq, err := app.New(src, rules.NewTopInsulators())
			So(err, ShouldBeNil)
			par, err := app.New(src, rules.NewTopInsulators(), app.WithExecutor(worker.NewPool(4)))
			So(err, ShouldBeNil)

			a, err := seq.Run(context.Background())
			So(err, ShouldBeNil)
			b, err := par.Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then both runs should produce the same ranked list", func() {
				So(b.Candidates, ShouldResemble, a.Candidates)
				So(b.Tally, ShouldResemble, a.Tally)
				So(b.Key, ShouldEqual, a.Key)
			})
		})
	})
}

const blobRowsJSON = `[
  {"uid": "L", "formula": "L2", "class": "X", "spacegroup": "P2/m", "spgnum": 10, "crystal_type": "AB",
   "evac": 0, "vbm_hse": -5, "cbm_hse": -4, "thermodynamic_stability_level": 3, "is_magnetic": 0, "cell_area": 10,
   "data": {"results-asr.structureinfo.json": {"kwargs": {"data": {"spglib_dataset": {"std_lattice": [[1,0,0],[0,1,0],[0,0,1]]}}}}}},
  {"uid": "R", "formula": "R2", "class": "X", "spacegroup": "P2/m", "spgnum": 10, "crystal_type": "AB",
   "evac": 0, "vbm_hse": -3, "cbm_hse": -1, "thermodynamic_stability_level": 3, "is_magnetic": 0, "cell_area": 20,
   "data": {"results-asr.structureinfo.json": {"kwargs": {"data": {"spglib_dataset": {"std_lattice": [[1,0,0],[0,1,0],[0,0,1]]}}}}}},
  {"uid": "BAD", "formula": "B2", "class": "X", "spacegroup": "P2/m", "spgnum": 10, "crystal_type": "AB",
   "evac": 0, "vbm_hse": -6, "cbm_hse": -5.5, "thermodynamic_stability_level": 3, "is_magnetic": 0, "cell_area": 10,
   "data": {"results-asr.structureinfo.json": {"kwargs": {"data": {"spglib_dataset": {"std_lattice": "not-a-matrix"}}}}}}
]`

func TestPipelineUnreadableLattice(t *testing.T) {
	Convey("Given a row export where one record has an unreadable lattice", t, func() {
		path := filepath.Join(t.TempDir(), "c2db.json")
		So(os.WriteFile(path, []byte(blobRowsJSON), 0o600), ShouldBeNil)
		src := source.NewFile(path)

		Convey("When running the strict rule set", func() {
			p, err := app.New(src, rules.NewStrict())
			So(err, ShouldBeNil)
			res, err := p.Run(context.Background())

			Convey("Then only that record should be excluded and the rest ranked", func() {
				So(err, ShouldBeNil)
				So(res.Records, ShouldEqual, 3)
				So(res.Excluded, ShouldHaveLength, 1)
				So(res.Excluded[0].UID, ShouldEqual, "BAD")
				So(res.Excluded[0].Field, ShouldEqual, "std_lattice")
				So(errors.Is(res.Excluded[0], material.ErrMalformedLattice), ShouldBeTrue)
				So(res.Candidates, ShouldHaveLength, 1)
				So(res.Candidates[0].LeftUID, ShouldEqual, "L")
				So(res.Candidates[0].RightUID, ShouldEqual, "R")
			})
		})

		Convey("When running the topinsulators rule set", func() {
			p, err := app.New(src, rules.NewTopInsulators())
			So(err, ShouldBeNil)
			res, err := p.Run(context.Background())

			Convey("Then the lattice should not matter and every record should pair", func() {
				So(err, ShouldBeNil)
				So(res.Excluded, ShouldBeEmpty)
				So(res.Candidates, ShouldHaveLength, 3)
				pairs := make([]string, 0, len(res.Candidates))
				for _, c := range res.Candidates {
					pairs = append(pairs, c.LeftUID+"/"+c.RightUID)
				}
				So(pairs, ShouldContain, "L/R")
				So(pairs, ShouldContain, "BAD/L")
				So(pairs, ShouldContain, "BAD/R")
			})
		})
	})
}
