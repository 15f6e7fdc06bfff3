package store

import (
	"sync"

	"drift-observer/src/models"
)

// -----------------------------------------------------------------------------
// SubaccountStore holds the discovered subaccounts and the derived data of
// the selected one. Each fetch cycle gets a generation number; results from
// superseded cycles (rapid subaccount switching) are discarded instead of
// overwriting newer state.
// -----------------------------------------------------------------------------

type SubaccountStore struct {
	mu sync.RWMutex

	subaccounts   []models.MSubaccount
	selectedIndex int

	balances  map[string]models.MTokenBalance
	positions []models.MPerpPosition
	orders    []models.MOrder

	loading          bool
	balancesLoading  bool
	positionsLoading bool
	ordersLoading    bool

	lastError  string
	generation uint64
}

// -----------------------------------------------------------------------------

func NewSubaccountStore() *SubaccountStore {
	return &SubaccountStore{
		balances: make(map[string]models.MTokenBalance),
	}
}

// -----------------------------------------------------------------------------
// Subaccount list and selection
// -----------------------------------------------------------------------------

// SetSubaccounts replaces the discovered list. The selected index is kept
// when still valid, otherwise reset to 0.
func (s *SubaccountStore) SetSubaccounts(subaccounts []models.MSubaccount) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subaccounts = subaccounts
	if s.selectedIndex >= len(subaccounts) {
		s.selectedIndex = 0
	}
}

// -----------------------------------------------------------------------------

func (s *SubaccountStore) Subaccounts() []models.MSubaccount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MSubaccount, len(s.subaccounts))
	copy(out, s.subaccounts)
	return out
}

// -----------------------------------------------------------------------------

// SetSelectedIndex changes the selection. Returns false for an out-of-range
// index; the current selection is kept in that case.
func (s *SubaccountStore) SetSelectedIndex(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.subaccounts) {
		return false
	}
	s.selectedIndex = index
	return true
}

// -----------------------------------------------------------------------------

func (s *SubaccountStore) SelectedIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedIndex
}

// -----------------------------------------------------------------------------

// SelectedSubaccount returns the subaccount under view, if any.
func (s *SubaccountStore) SelectedSubaccount() (models.MSubaccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selectedIndex < 0 || s.selectedIndex >= len(s.subaccounts) {
		return models.MSubaccount{}, false
	}
	return s.subaccounts[s.selectedIndex], true
}

// -----------------------------------------------------------------------------
// Fetch cycles
// -----------------------------------------------------------------------------

// StartCycle begins a new balances/positions/orders fetch cycle and returns
// its generation. clearData drops the previous data first (used when the
// viewed subaccount changed, so no data for the wrong account shows);
// refreshes of the same subaccount keep the old data visible instead.
func (s *SubaccountStore) StartCycle(clearData bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.balancesLoading = true
	s.positionsLoading = true
	s.ordersLoading = true
	s.lastError = ""

	if clearData {
		s.balances = make(map[string]models.MTokenBalance)
		s.positions = nil
		s.orders = nil
	}

	return s.generation
}

// -----------------------------------------------------------------------------

// Generation returns the current fetch-cycle generation.
func (s *SubaccountStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// -----------------------------------------------------------------------------

// CommitBalances stores fetched balances if gen is still current. A stale
// commit is dropped and reported as false.
func (s *SubaccountStore) CommitBalances(gen uint64, balances map[string]models.MTokenBalance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.balances = balances
	s.balancesLoading = false
	return true
}

// -----------------------------------------------------------------------------

// CommitPositions stores fetched positions if gen is still current.
func (s *SubaccountStore) CommitPositions(gen uint64, positions []models.MPerpPosition) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.positions = positions
	s.positionsLoading = false
	return true
}

// -----------------------------------------------------------------------------

// CommitOrders stores fetched orders if gen is still current.
func (s *SubaccountStore) CommitOrders(gen uint64, orders []models.MOrder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.orders = orders
	s.ordersLoading = false
	return true
}

// -----------------------------------------------------------------------------

// FailFetch clears the loading flag of one fetch kind and records the error
// indicator. Previously committed data stays visible.
func (s *SubaccountStore) FailFetch(gen uint64, kind string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}

	switch kind {
	case "balances":
		s.balancesLoading = false
	case "positions":
		s.positionsLoading = false
	case "orders":
		s.ordersLoading = false
	}
	s.lastError = message
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

func (s *SubaccountStore) Balances() map[string]models.MTokenBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.MTokenBalance, len(s.balances))
	for k, v := range s.balances {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

func (s *SubaccountStore) Positions() []models.MPerpPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MPerpPosition, len(s.positions))
	copy(out, s.positions)
	return out
}

// -----------------------------------------------------------------------------

func (s *SubaccountStore) Orders() []models.MOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MOrder, len(s.orders))
	copy(out, s.orders)
	return out
}

// -----------------------------------------------------------------------------

// SetLoading marks the subaccount-list discovery in progress.
func (s *SubaccountStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// -----------------------------------------------------------------------------

// LoadingFlags returns (list, balances, positions, orders) loading states.
func (s *SubaccountStore) LoadingFlags() (bool, bool, bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading, s.balancesLoading, s.positionsLoading, s.ordersLoading
}

// -----------------------------------------------------------------------------

func (s *SubaccountStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// -----------------------------------------------------------------------------

// Reset clears everything back to the empty state. Bumps the generation so
// in-flight fetches from the old session cannot commit afterwards.
func (s *SubaccountStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.subaccounts = nil
	s.selectedIndex = 0
	s.balances = make(map[string]models.MTokenBalance)
	s.positions = nil
	s.orders = nil
	s.loading = false
	s.balancesLoading = false
	s.positionsLoading = false
	s.ordersLoading = false
	s.lastError = ""
}
