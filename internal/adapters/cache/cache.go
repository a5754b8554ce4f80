// Package cache persists ranked candidate lists between runs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"time"

	"github.com/okian/brokengap/internal/domain/material"
	"github.com/okian/brokengap/internal/domain/rules"
	"github.com/okian/brokengap/internal/domain/screening"
)

// formatVersion is mixed into every key so that entries written with an
// older layout are never read back.
const formatVersion = "brokengap/v1"

// Cache stores ranked candidate lists by key.
type Cache interface {
	// Load returns the list stored under key. ok is false on a miss.
	Load(ctx context.Context, key string) (candidates []screening.Candidate, ok bool, err error)
	// Store saves a complete ranked list under key.
	Store(ctx context.Context, key string, candidates []screening.Candidate) error
}

// Entry is the stored form of one ranked list.
type Entry struct {
	Key        string                `json:"key"`
	RuleSet    string                `json:"rule_set"`
	CreatedAt  time.Time             `json:"created_at"`
	Candidates []screening.Candidate `json:"candidates"`
}

// Key derives the cache key of a ranking from the record source identity, the
// digest of the loaded record set and the rule configuration.
func Key(sourceID, digest string, rs rules.RuleSet) string {
	h := sha256.New()
	for _, part := range []string{formatVersion, sourceID, digest, rs.Fingerprint()} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Digest fingerprints a record set, order included.
func Digest(records []material.Record) string {
	d := digester{h: sha256.New()}
	for i := range records {
		r := &records[i]
		d.putString(r.UID)
		d.putString(r.Formula)
		d.optString(r.Class)
		d.putString(r.SpaceGroup)
		d.putInt(r.SpgNum)
		d.optString(r.CrystalType)
		d.putFloat(r.Evac)
		for _, b := range []material.Band{r.PBE, r.HSE, r.GW} {
			d.optFloat(b.VBM)
			d.optFloat(b.CBM)
		}
		d.optInt(r.StabilityLevel)
		d.optInt(r.IsMagnetic)
		d.optFloat(r.CellArea)
		d.present(r.StdLattice != nil)
		d.putInt(len(r.StdLattice))
		for _, row := range r.StdLattice {
			d.putInt(len(row))
			for _, v := range row {
				d.putFloat(v)
			}
		}
	}
	return hex.EncodeToString(d.h.Sum(nil))
}

type digester struct {
	h   hash.Hash
	buf [8]byte
}

func (d *digester) u64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	d.h.Write(d.buf[:])
}

func (d *digester) putInt(v int) { d.u64(uint64(v)) }
func (d *digester) putFloat(v float64) { d.u64(math.Float64bits(v)) }

func (d *digester) present(ok bool) {
	if ok {
		d.u64(1)
	} else {
		d.u64(0)
	}
}

func (d *digester) putString(s string) {
	d.putInt(len(s))
	d.h.Write([]byte(s))
}

func (d *digester) optString(s *string) {
	d.present(s != nil)
	if s != nil {
		d.putString(*s)
	}
}

func (d *digester) optInt(v *int) {
	d.present(v != nil)
	if v != nil {
		d.putInt(*v)
	}
}

func (d *digester) optFloat(v *float64) {
	d.present(v != nil)
	if v != nil {
		d.putFloat(*v)
	}
}
