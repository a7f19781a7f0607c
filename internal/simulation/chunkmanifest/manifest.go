// Package chunkmanifest implements the large-scale chunking mode: an
// ordered list of pair-range chunks that can be farmed out to independent
// machine runs and merged back together.
package chunkmanifest

// State is a chunk's lifecycle stage.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateDone       State = "done"
)

// Chunk is one independently-runnable slice of the pair-index space.
type Chunk struct {
	ChunkID    int    `json:"chunk_id"`
	Lo         int    `json:"lo"`
	Hi         int    `json:"hi"` // exclusive
	AssignedTo string `json:"assigned_to"` // worker/machine token, a uuid
	State      State  `json:"state"`
}

// Manifest is the full ordered chunk list for one large-scale run.
type Manifest struct {
	UnitsA int     `json:"units_a"`
	UnitsB int     `json:"units_b"`
	Chunks []Chunk `json:"chunks"`
}

// Plan builds a manifest covering the full pair space [0, unitsA*unitsB)
// in chunkSize-sized ranges, all initially pending and unassigned.
func Plan(unitsA, unitsB, chunkSize int) Manifest {
	total := unitsA * unitsB
	m := Manifest{UnitsA: unitsA, UnitsB: unitsB}
	id := 0
	for lo := 0; lo < total; lo += chunkSize {
		hi := lo + chunkSize
		if hi > total {
			hi = total
		}
		m.Chunks = append(m.Chunks, Chunk{ChunkID: id, Lo: lo, Hi: hi, State: StatePending})
		id++
	}
	return m
}
