package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs for transfer records and recording sessions.
type IDGenerator interface {
	Generate() string
}

var (
	idGeneratorMutex sync.Mutex
	idGeneratorFixed bool
	idGenerator      IDGenerator
)

// UseSequentialIDGenerator makes GetIDGenerator return deterministic,
// increasing IDs. It must be called before the first ID is generated.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator makes GetIDGenerator return globally unique xid
// IDs. The IDs are not deterministic across runs.
func UseParallelIDGenerator() {
	setIDGenerator(xidGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGeneratorFixed {
		log.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
	idGeneratorFixed = true
}

// GetIDGenerator returns the process-wide ID generator. Sequential IDs are
// used unless UseParallelIDGenerator was called first.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if !idGeneratorFixed {
		idGenerator = &sequentialIDGenerator{}
		idGeneratorFixed = true
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
