package store

import (
	"fmt"
	"math/rand" // nosemgrep
	"sync"
	"sync/atomic"
	"testing"

	"github.com/anishathalye/porcupine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resonatehq/console/internal/metrics"
	"github.com/resonatehq/console/internal/operations"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, sequenced bool) *Store {
	s := New(&Config{Size: 10, Sequenced: sequenced}, metrics.New(prometheus.NewRegistry()))
	s.Start()

	t.Cleanup(func() {
		assert.Nil(t, s.Close())
	})

	return s
}

func TestDispatchIsVisibleOnReturn(t *testing.T) {
	s := setup(t, true)

	_, ok := s.Get(operations.FetchUsers)
	assert.False(t, ok)

	seq := s.NextSeq()
	assert.Nil(t, s.Dispatch(operations.Request(operations.FetchUsers, seq)))

	r, ok := s.Get(operations.FetchUsers)
	assert.True(t, ok)
	assert.True(t, r.Loading)
	assert.Nil(t, r.Data)
	assert.Nil(t, r.Error)

	assert.Nil(t, s.Dispatch(operations.Success(operations.FetchUsers, seq, []string{"a"})))

	r, ok = s.Get(operations.FetchUsers)
	assert.True(t, ok)
	assert.False(t, r.Loading)
	assert.Equal(t, []string{"a"}, r.Data)
	assert.Nil(t, r.Error)
}

func TestNextSeq(t *testing.T) {
	sequenced := setup(t, true)
	assert.Equal(t, uint64(1), sequenced.NextSeq())
	assert.Equal(t, uint64(2), sequenced.NextSeq())

	unsequenced := setup(t, false)
	assert.Equal(t, uint64(0), unsequenced.NextSeq())
	assert.Equal(t, uint64(0), unsequenced.NextSeq())
}

func TestSelect(t *testing.T) {
	s := setup(t, false)

	assert.Nil(t, s.Dispatch(operations.Request(operations.FetchStates, 0)))
	assert.Nil(t, s.Dispatch(operations.Failure(operations.SaveState, 0, "E")))

	keys := Select(s, func(state *State) []operations.Key {
		return state.API.Keys()
	})
	assert.Equal(t, []operations.Key{operations.FetchStates, operations.SaveState}, keys)

	snapshot := s.Snapshot()
	assert.Nil(t, s.Dispatch(operations.Success(operations.FetchStates, 0, "done")))

	r, _ := snapshot.API.Get(operations.FetchStates)
	assert.True(t, r.Loading, "snapshots must not observe later actions")
}

func TestSubscribe(t *testing.T) {
	s := setup(t, true)

	var seen []string
	unsubscribe := s.Subscribe(func(a Action, state *State) {
		r, ok := state.API.Get(operations.SaveUser)
		assert.True(t, ok)
		seen = append(seen, fmt.Sprintf("%s:%t", a.Type(), r.Loading))
	})

	assert.Nil(t, s.Dispatch(operations.Request(operations.SaveUser, 2)))
	assert.Nil(t, s.Dispatch(operations.Failure(operations.SaveUser, 1, "stale")))
	assert.Nil(t, s.Dispatch(operations.Failure(operations.SaveUser, 2, "E")))

	unsubscribe()
	assert.Nil(t, s.Dispatch(operations.Request(operations.SaveUser, 3)))

	// the stale failure is not applied and therefore not observed
	assert.Equal(t, []string{"api/request:true", "api/failure:false"}, seen)
}

func TestClose(t *testing.T) {
	s := New(&Config{Size: 1}, metrics.New(prometheus.NewRegistry()))
	s.Start()

	assert.Nil(t, s.Dispatch(operations.Request(operations.FetchUsers, 0)))
	assert.Nil(t, s.Close())
	assert.Nil(t, s.Close())

	assert.ErrorIs(t, s.Dispatch(operations.Request(operations.FetchUsers, 0)), ErrClosed)

	// state remains readable after close
	r, ok := s.Get(operations.FetchUsers)
	assert.True(t, ok)
	assert.True(t, r.Loading)
}

func TestCloseWithoutStart(t *testing.T) {
	s := New(&Config{Size: 1}, metrics.New(prometheus.NewRegistry()))
	assert.Nil(t, s.Close())
	assert.ErrorIs(t, s.Dispatch(operations.Request(operations.FetchUsers, 0)), ErrClosed)
}

// Linearizability

type register struct {
	exists  bool
	loading bool
	data    string
	err     string
}

type input struct {
	key    operations.Key
	action *operations.Action
}

func toRegister(r operations.Record, ok bool) register {
	reg := register{exists: ok, loading: r.Loading}
	if r.Data != nil {
		reg.data = r.Data.(string)
	}
	if r.Error != nil {
		reg.err = *r.Error
	}
	return reg
}

func model() porcupine.Model {
	return porcupine.Model{
		Init: func() interface{} {
			return register{}
		},
		Partition: func(history []porcupine.Operation) [][]porcupine.Operation {
			partitions := map[operations.Key][]porcupine.Operation{}
			for _, op := range history {
				key := op.Input.(*input).key
				partitions[key] = append(partitions[key], op)
			}

			result := [][]porcupine.Operation{}
			for _, p := range partitions { // nosemgrep: range-over-map
				result = append(result, p)
			}
			return result
		},
		Step: func(state, in, out interface{}) (bool, interface{}) {
			reg := state.(register)
			req := in.(*input)

			if req.action == nil {
				return out.(register) == reg, reg
			}

			switch req.action.Kind {
			case operations.ActionRequest:
				return true, register{exists: true, loading: true}
			case operations.ActionSuccess:
				return true, register{exists: true, data: req.action.Data.(string)}
			case operations.ActionFailure:
				return true, register{exists: true, err: req.action.Error}
			default:
				return false, reg
			}
		},
	}
}

func TestConcurrentDispatchIsLinearizable(t *testing.T) {
	s := setup(t, false)

	keys := []operations.Key{operations.FetchUsers, operations.FetchStates, operations.SaveUser}
	clients := 8
	opsPerClient := 50

	var clock atomic.Int64
	var mu sync.Mutex
	var history []porcupine.Operation

	var wg sync.WaitGroup
	for c := 0; c < clients; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(c)))

			for i := 0; i < opsPerClient; i++ {
				key := keys[r.Intn(len(keys))]
				in := &input{key: key}

				switch r.Intn(4) {
				case 0:
					in.action = operations.Request(key, 0)
				case 1:
					in.action = operations.Success(key, 0, fmt.Sprintf("%d-%d", c, i))
				case 2:
					in.action = operations.Failure(key, 0, fmt.Sprintf("E%d-%d", c, i))
				}

				call := clock.Add(1)
				var out interface{}
				if in.action != nil {
					assert.Nil(t, s.Dispatch(in.action))
				} else {
					out = toRegister(s.Get(key))
				}
				ret := clock.Add(1)

				mu.Lock()
				history = append(history, porcupine.Operation{
					ClientId: c,
					Input:    in,
					Call:     call,
					Output:   out,
					Return:   ret,
				})
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	assert.True(t, porcupine.CheckOperations(model(), history))
}
