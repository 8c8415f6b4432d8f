package persist

import "context"

// Store is the injected key-value backend. Any keyed string store satisfies
// it: the in-memory, redis, and sqlite implementations under internal/infra
// all do. Get reports presence explicitly so a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// Key prefixes are the persistence wire contract; save and load
// implementations interoperate only through these.
const (
	keyPrefixSession   = "certexam:session:"
	keyPrefixQuestions = "certexam:questions:"
	keyPrefixMetadata  = "certexam:metadata:"
	keyPrefixResults   = "certexam:results:"
	keyPrefixRecovery  = "certexam:recovery:"
	keyIndex           = "certexam:index"
)
