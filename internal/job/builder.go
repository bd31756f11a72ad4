package job

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/imageforge/gateway/model"
)

// maxSeed keeps resolved seeds representable without loss inside a JSON
// double (53 bits).
const maxSeed = 1<<53 - 1

// Build finalizes a validated request into a descriptor plus its canonical
// serialization. The returned bytes are serialized exactly once; callers
// must persist and enqueue this same slice so both sides of the system see
// identical job records.
func Build(req model.JobRequest) (model.JobDescriptor, []byte, error) {
	seed := req.Seed
	if seed == 0 {
		s, err := randomSeed()
		if err != nil {
			return model.JobDescriptor{}, nil, fmt.Errorf("unable to resolve seed: %w", err)
		}
		seed = s
	}

	desc := model.JobDescriptor{
		ID:             uuid.NewString(),
		Height:         req.Height,
		Width:          req.Width,
		Steps:          req.Steps,
		Seed:           seed,
		CFG:            req.CFG,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Model:          req.Model,
	}

	body, err := json.Marshal(desc)
	if err != nil {
		return model.JobDescriptor{}, nil, fmt.Errorf("unable to encode descriptor: %w", err)
	}
	return desc, body, nil
}

// randomSeed draws uniformly from [1, 2^53-1]. Zero is excluded so a
// resolved seed can never read as the sentinel again.
func randomSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	n := int64(binary.LittleEndian.Uint64(b[:]) & maxSeed)
	if n == 0 {
		n = 1
	}
	return n, nil
}
