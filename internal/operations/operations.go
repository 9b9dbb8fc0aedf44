package operations

import (
	"fmt"
	"sort"

	"github.com/resonatehq/console/internal/util"
)

// Key names one asynchronous operation. Keys are chosen by the service that
// drives the operation and must be unique per operation.
type Key string

const (
	FetchUsers        Key = "fetchUsers"
	SaveUser          Key = "saveUser"
	FetchStates       Key = "fetchStates"
	SaveState         Key = "saveState"
	CheckNodeHealth   Key = "checkNodeHealth"
	CheckPythonHealth Key = "checkPythonHealth"
)

// Record is the status of one operation. Once Loading is false exactly one
// of Data and Error is meaningful; both are nil before the first completion.
type Record struct {
	Loading bool    `json:"loading"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
	Seq     uint64  `json:"-"`
}

func (r *Record) String() string {
	var err string
	if r.Error != nil {
		err = *r.Error
	}

	return fmt.Sprintf("Record(loading=%t, data=%v, error=%s, seq=%d)", r.Loading, r.Data, err, r.Seq)
}

// Completed reports whether the operation has finished at least once since
// its last request.
func (r *Record) Completed() bool {
	return !r.Loading && (r.Data != nil || r.Error != nil)
}

type Kind int

const (
	ActionRequest Kind = iota
	ActionSuccess
	ActionFailure
)

func (k Kind) String() string {
	switch k {
	case ActionRequest:
		return "api/request"
	case ActionSuccess:
		return "api/success"
	case ActionFailure:
		return "api/failure"
	default:
		panic("invalid action kind")
	}
}

// Action is a transition of the operation table. A zero Seq marks the action
// as unsequenced, it always applies.
type Action struct {
	Kind  Kind
	Key   Key
	Seq   uint64
	Data  any
	Error string
}

func Request(key Key, seq uint64) *Action {
	return &Action{Kind: ActionRequest, Key: key, Seq: seq}
}

func Success(key Key, seq uint64, data any) *Action {
	return &Action{Kind: ActionSuccess, Key: key, Seq: seq, Data: data}
}

func Failure(key Key, seq uint64, err string) *Action {
	return &Action{Kind: ActionFailure, Key: key, Seq: seq, Error: err}
}

func (a *Action) Type() string {
	return a.Kind.String()
}

func (a *Action) String() string {
	return fmt.Sprintf("Action(type=%s, key=%s, seq=%d)", a.Kind, a.Key, a.Seq)
}

// Table maps operation keys to their current record. Records are created
// lazily and never removed.
type Table map[Key]*Record

func NewTable() Table {
	return Table{}
}

// Get returns the record for key. The boolean is false when the key has never
// been touched, which callers must treat as "not yet requested".
func (t Table) Get(key Key) (Record, bool) {
	r, ok := t[key]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Apply reduces a into the table and reports whether the table changed.
// Sequenced completions that do not match the sequence of the current
// request are stale and dropped, as are requests older than the current one.
func (t Table) Apply(a *Action) bool {
	current, exists := t[a.Key]

	switch a.Kind {
	case ActionRequest:
		if exists && a.Seq != 0 && a.Seq < current.Seq {
			return false
		}
		t[a.Key] = &Record{Loading: true, Seq: a.Seq}
	case ActionSuccess:
		if exists && stale(current, a) {
			return false
		}
		t[a.Key] = &Record{Loading: false, Data: a.Data, Seq: a.Seq}
	case ActionFailure:
		if exists && stale(current, a) {
			return false
		}
		t[a.Key] = &Record{Loading: false, Error: util.ToPointer(a.Error), Seq: a.Seq}
	default:
		panic(fmt.Sprintf("unknown action kind: %d", a.Kind))
	}

	return true
}

// Copy returns a shallow copy, data values are shared.
func (t Table) Copy() Table {
	copied := make(Table, len(t))
	for k, r := range t { // nosemgrep: range-over-map
		r := *r
		copied[k] = &r
	}
	return copied
}

// Keys returns the keys of the table in lexical order.
func (t Table) Keys() []Key {
	keys := make([]Key, 0, len(t))
	for k := range t { // nosemgrep: range-over-map
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func stale(current *Record, a *Action) bool {
	return a.Seq != 0 && current.Seq != 0 && a.Seq != current.Seq
}
