package testutil

// FixedIDGenerator generates the same call ID every time.
//
// This makes ledger rows and golden output byte-identical across runs when
// every handle in a test belongs to one logical call. Use
// wrap.FixedGenerator when distinct IDs per handle are needed.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a new fixed call ID generator.
//
// If id is empty, Generate() returns "test-call-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-call-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed call ID.
//
// Implements wrap.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
