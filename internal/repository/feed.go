package repository

import "sync"

// Collection names a kind of record that can change
type Collection string

const (
	CollectionTournaments   Collection = "tournaments"
	CollectionProfiles      Collection = "profiles"
	CollectionDebates       Collection = "debates"
	CollectionResults       Collection = "results"
	CollectionNotifications Collection = "notifications"
)

// AllCollections lists every collection in delivery order
var AllCollections = []Collection{
	CollectionTournaments,
	CollectionProfiles,
	CollectionDebates,
	CollectionResults,
	CollectionNotifications,
}

// Change tells a subscriber that a collection of a tournament was mutated.
// It carries no payload; consumers re-read the whole collection.
type Change struct {
	TournamentID string     `json:"tournament_id"`
	Collection   Collection `json:"collection"`
}

// Feed fans out changes to subscriptions. A nil *Feed drops everything.
type Feed struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewFeed creates an empty change feed
func NewFeed() *Feed {
	return &Feed{subs: make(map[*Subscription]struct{})}
}

// Subscribe watches a tournament. With no collections every collection is watched.
func (f *Feed) Subscribe(tournamentID string, collections ...Collection) *Subscription {
	return f.subscribe(tournamentID, false, collections)
}

// SubscribeAll watches every tournament
func (f *Feed) SubscribeAll(collections ...Collection) *Subscription {
	return f.subscribe("", true, collections)
}

func (f *Feed) subscribe(tournamentID string, all bool, collections []Collection) *Subscription {
	s := &Subscription{
		feed:         f,
		tournamentID: tournamentID,
		all:          all,
		watch:        make(map[Collection]bool),
		pending:      make(map[Change]bool),
		wake:         make(chan struct{}, 1),
		out:          make(chan Change),
		done:         make(chan struct{}),
	}
	if len(collections) == 0 {
		collections = AllCollections
	}
	for _, c := range collections {
		s.watch[c] = true
	}

	if f != nil {
		f.mu.Lock()
		f.subs[s] = struct{}{}
		f.mu.Unlock()
	}

	go s.pump()
	return s
}

// Publish delivers c to every matching subscription without blocking.
func (f *Feed) Publish(c Change) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		if (s.all || s.tournamentID == c.TournamentID) && s.watch[c.Collection] {
			s.mark(c)
		}
	}
}

// Subscribers returns the number of open subscriptions
func (f *Feed) Subscribers() int {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) remove(s *Subscription) {
	if f == nil {
		return
	}
	f.mu.Lock()
	delete(f.subs, s)
	f.mu.Unlock()
}

// Subscription receives changes for one tournament, or for all of them.
// Repeated changes to a collection that the consumer has not picked up yet
// are coalesced into one.
type Subscription struct {
	feed         *Feed
	tournamentID string
	all          bool
	watch        map[Collection]bool

	mu      sync.Mutex
	pending map[Change]bool
	order   []Change
	wake    chan struct{}

	out       chan Change
	done      chan struct{}
	closeOnce sync.Once
}

// TournamentID returns the watched tournament, empty for SubscribeAll
func (s *Subscription) TournamentID() string {
	return s.tournamentID
}

// C returns the delivery channel. It is closed after Close.
func (s *Subscription) C() <-chan Change {
	return s.out
}

// Close stops delivery. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.feed.remove(s)
		close(s.done)
	})
}

func (s *Subscription) mark(c Change) {
	s.mu.Lock()
	if !s.pending[c] {
		s.pending[c] = true
		s.order = append(s.order, c)
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// drain returns pending changes grouped by tournament in first-seen order,
// collections within a tournament in AllCollections order
func (s *Subscription) drain() []Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tournaments []string
	seen := make(map[string]bool)
	for _, c := range s.order {
		if !seen[c.TournamentID] {
			seen[c.TournamentID] = true
			tournaments = append(tournaments, c.TournamentID)
		}
	}
	var ready []Change
	for _, t := range tournaments {
		for _, col := range AllCollections {
			c := Change{TournamentID: t, Collection: col}
			if s.pending[c] {
				ready = append(ready, c)
			}
		}
	}
	s.pending = make(map[Change]bool)
	s.order = s.order[:0]
	return ready
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for _, c := range s.drain() {
			select {
			case s.out <- c:
			case <-s.done:
				return
			}
		}
	}
}
