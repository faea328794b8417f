// Package journal records every event of a session as compact records and
// packs them into a compressed, digest-protected blob for storage.
//
// Blob layout: lz4 frame of the msgpack-encoded record list. The digest is
// the hex BLAKE3-256 of the blob and is stored next to it.
package journal

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"lukechampine.com/blake3"

	"github.com/vovakirdan/orbital-defense/internal/orbital"
)

// ErrDigestMismatch is returned when a blob does not match its digest.
var ErrDigestMismatch = errors.New("journal: digest mismatch")

// Record is the flattened form of one event. Fields unused by a kind stay
// zero and are omitted from the encoding.
type Record struct {
	At     int64   `msgpack:"t"`
	Kind   string  `msgpack:"k"`
	Ref    uint64  `msgpack:"r,omitempty"` // Defense or enemy the event is about
	Target uint64  `msgpack:"g,omitempty"` // Projectile or hit enemy
	Value  float64 `msgpack:"v,omitempty"` // Amount, damage or reward
	Aux    float64 `msgpack:"a,omitempty"` // Orbit radius or penetration depth
	X      float64 `msgpack:"x,omitempty"`
	Y      float64 `msgpack:"y,omitempty"`
	N      int64   `msgpack:"n,omitempty"` // Wave, level or survival time
	Label  string  `msgpack:"l,omitempty"` // Variant or upgrade name
	Flag   bool    `msgpack:"f,omitempty"`
}

// FromEvent flattens ev into a Record.
func FromEvent(ev orbital.Event) Record {
	r := Record{At: ev.Time(), Kind: string(ev.Kind())}
	switch ev := ev.(type) {
	case orbital.ShotFired:
		r.Ref, r.Target = ev.DefenseID, ev.ProjectileID
	case orbital.ShotHit:
		r.Ref, r.Target, r.Value = ev.DefenseID, ev.EnemyID, ev.Damage
	case orbital.EnemyDefeated:
		r.Ref, r.Value, r.Aux = ev.EnemyID, ev.Reward, ev.PenetrationDepth
		r.N, r.Label = ev.SurvivalTime, ev.EnemyKind.String()
	case orbital.ResourcesCollected:
		r.Ref, r.Value = ev.DefenseID, ev.Amount
	case orbital.DamageTaken:
		r.Ref, r.Value, r.Label = ev.EnemyID, ev.Amount, ev.Source.String()
	case orbital.DefensePlaced:
		r.Ref, r.Value, r.Aux = ev.DefenseID, ev.Cost, ev.OrbitalRadius
		r.X, r.Y, r.Label = ev.Position.X, ev.Position.Y, ev.DefenseKind.String()
	case orbital.WaveStarted:
		r.N, r.Value = int64(ev.Wave), float64(ev.Enemies)
	case orbital.WaveCompleted:
		r.N, r.Flag = int64(ev.Wave), ev.Success
	case orbital.UpgradeChosen:
		r.Ref, r.Value, r.N, r.Label = ev.DefenseID, ev.Cost, int64(ev.Level), ev.Upgrade
	case orbital.GameOver:
		r.N, r.Value = int64(ev.Wave), ev.Score
	}
	return r
}

// Recorder is an orbital.EventSink that keeps every event as a Record.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// HandleEvent appends ev.
func (r *Recorder) HandleEvent(ev orbital.Event) {
	r.mu.Lock()
	r.records = append(r.records, FromEvent(ev))
	r.mu.Unlock()
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Records returns a copy of the recorded events.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Pack encodes the recorded events.
func (r *Recorder) Pack() (blob []byte, digest string, err error) {
	return Pack(r.Records())
}

// Pack encodes records and returns the compressed blob with its digest.
func Pack(records []Record) (blob []byte, digest string, err error) {
	raw, err := msgpack.Marshal(records)
	if err != nil {
		return nil, "", fmt.Errorf("journal: cannot encode records: %w", err)
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, "", fmt.Errorf("journal: cannot compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("journal: cannot compress: %w", err)
	}

	blob = buf.Bytes()
	return blob, Digest(blob), nil
}

// Unpack verifies blob against digest and decodes the records. An empty
// digest skips verification.
func Unpack(blob []byte, digest string) ([]Record, error) {
	if digest != "" && Digest(blob) != digest {
		return nil, ErrDigestMismatch
	}

	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(blob)))
	if err != nil {
		return nil, fmt.Errorf("journal: cannot decompress: %w", err)
	}

	var records []Record
	if err := msgpack.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("journal: cannot decode records: %w", err)
	}
	return records, nil
}

// Digest returns the hex BLAKE3-256 of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CountByKind tallies records per event kind.
func CountByKind(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Kind]++
	}
	return counts
}
