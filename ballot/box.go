package ballot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
)

// Box keeps the ballots of federation. Join and exit ballots are keyed by
// subject and only one ballot can be open per kind and subject; a resolved
// one is replaced by the next. Stake ballots are indexed by the order of
// creation.
type Box struct {
	sync.RWMutex
	keyed   map[Kind]map[base.Address]*Ballot
	indexed []*Ballot
}

func NewBox() *Box {
	return &Box{
		keyed: map[Kind]map[base.Address]*Ballot{
			KindJoin: {},
			KindExit: {},
		},
	}
}

func KeyedRef(kind Kind, subject base.Address) string {
	return fmt.Sprintf("%s:%s", kind, subject)
}

func IndexedRef(index int) string {
	return fmt.Sprintf("%s:%d", KindStake, index)
}

// ParseRef parses the ref of KeyedRef or IndexedRef.
func ParseRef(ref string) (Kind, base.Address, int, error) {
	i := strings.Index(ref, ":")
	if i < 1 {
		return "", "", -1, base.BallotStateError.Wrap(BallotNotFoundError.Errorf("invalid ref, %q", ref))
	}

	kind, rest := Kind(ref[:i]), ref[i+1:]

	switch {
	case kind.IsKeyed():
		return kind, base.Address(rest), -1, nil
	case kind == KindStake:
		index, err := strconv.Atoi(rest)
		if err != nil {
			return "", "", -1, base.BallotStateError.Wrap(BallotNotFoundError.Errorf("invalid index, %q", ref))
		}

		return kind, "", index, nil
	default:
		return "", "", -1, base.BallotStateError.Wrap(BallotNotFoundError.Errorf("unknown kind, %q", ref))
	}
}

// Open stores the new ballot and returns its ref.
func (bb *Box) Open(b *Ballot) (string, error) {
	bb.Lock()
	defer bb.Unlock()

	if !b.kind.IsKeyed() {
		b.ref = IndexedRef(len(bb.indexed))
		bb.indexed = append(bb.indexed, b)

		return b.ref, nil
	}

	if o, found := bb.keyed[b.kind][b.subject]; found && !o.IsResolved() {
		return "", base.BallotStateError.Wrap(BallotOpenedError.Errorf("ref=%q", o.ref))
	}

	b.ref = KeyedRef(b.kind, b.subject)
	bb.keyed[b.kind][b.subject] = b

	return b.ref, nil
}

func (bb *Box) Keyed(kind Kind, subject base.Address) (*Ballot, error) {
	bb.RLock()
	defer bb.RUnlock()

	m, found := bb.keyed[kind]
	if !found {
		return nil, base.BallotStateError.Wrap(BallotNotFoundError.Errorf("not keyed kind, %q", kind))
	}

	b, found := m[subject]
	if !found {
		return nil, base.BallotStateError.Wrap(BallotNotFoundError.Errorf("ref=%q", KeyedRef(kind, subject)))
	}

	return b, nil
}

func (bb *Box) Indexed(index int) (*Ballot, error) {
	bb.RLock()
	defer bb.RUnlock()

	if index < 0 || index >= len(bb.indexed) {
		return nil, base.BallotStateError.Wrap(BallotNotFoundError.Errorf("ref=%q", IndexedRef(index)))
	}

	return bb.indexed[index], nil
}

// Ballot finds ballot by ref.
func (bb *Box) Ballot(ref string) (*Ballot, error) {
	kind, subject, index, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	if kind.IsKeyed() {
		return bb.Keyed(kind, subject)
	}

	return bb.Indexed(index)
}

// OpenBallots returns the open ballots of kind. Keyed ballots are sorted by ref.
func (bb *Box) OpenBallots(kind Kind) []*Ballot {
	bb.RLock()
	defer bb.RUnlock()

	var bs []*Ballot

	if !kind.IsKeyed() {
		for i := range bb.indexed {
			if !bb.indexed[i].IsResolved() {
				bs = append(bs, bb.indexed[i])
			}
		}

		return bs
	}

	for _, b := range bb.keyed[kind] {
		if !b.IsResolved() {
			bs = append(bs, b)
		}
	}

	sort.Slice(bs, func(i, j int) bool {
		return bs[i].ref < bs[j].ref
	})

	return bs
}

// Ballots returns the copies of every ballot; keyed ballots first, sorted
// by ref, then indexed ballots by index.
func (bb *Box) Ballots() []*Ballot {
	bb.RLock()
	defer bb.RUnlock()

	var keyed []*Ballot
	for _, m := range bb.keyed {
		for _, b := range m {
			keyed = append(keyed, b.Clone())
		}
	}

	sort.Slice(keyed, func(i, j int) bool {
		return keyed[i].ref < keyed[j].ref
	})

	bs := keyed
	for i := range bb.indexed {
		bs = append(bs, bb.indexed[i].Clone())
	}

	return bs
}

// Restore loads ballots which were returned by Ballots.
func (bb *Box) Restore(bs []*Ballot) error {
	bb.Lock()
	defer bb.Unlock()

	keyed := map[Kind]map[base.Address]*Ballot{
		KindJoin: {},
		KindExit: {},
	}

	var indexed []*Ballot

	for i := range bs {
		b := bs[i].Clone()
		if err := b.IsValid(nil); err != nil {
			return err
		}

		if b.kind.IsKeyed() {
			if b.ref != KeyedRef(b.kind, b.subject) {
				return base.PreconditionError.Errorf("wrong keyed ref, %q", b.ref)
			}

			keyed[b.kind][b.subject] = b

			continue
		}

		if b.ref != IndexedRef(len(indexed)) {
			return base.PreconditionError.Errorf("wrong indexed ref, %q; expected=%q", b.ref, IndexedRef(len(indexed)))
		}

		indexed = append(indexed, b)
	}

	bb.keyed = keyed
	bb.indexed = indexed

	return nil
}
