package services

import "sync"

const (
	historyCapacity = 100
	historyEvict    = 50
)

// DeliveryHistory suppresses re-delivery of the same swap to the same user.
// Per-user bounded insertion-ordered sets, process memory only: a restart
// forgets history, which is the accepted trade-off for this pipeline.
type DeliveryHistory struct {
	mu    sync.Mutex
	users map[int64]*userHistory
}

type userHistory struct {
	seen  map[string]struct{}
	order []string
}

func NewDeliveryHistory() *DeliveryHistory {
	return &DeliveryHistory{users: make(map[int64]*userHistory)}
}

// Seen reports whether the swap was already delivered to the user.
func (h *DeliveryHistory) Seen(userID int64, signature string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	uh, ok := h.users[userID]
	if !ok {
		return false
	}
	_, delivered := uh.seen[signature]
	return delivered
}

// Record marks the swap as delivered to the user. When the per-user set
// exceeds capacity, the oldest half is evicted.
func (h *DeliveryHistory) Record(userID int64, signature string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	uh, ok := h.users[userID]
	if !ok {
		uh = &userHistory{seen: make(map[string]struct{})}
		h.users[userID] = uh
	}
	if _, exists := uh.seen[signature]; exists {
		return
	}
	uh.seen[signature] = struct{}{}
	uh.order = append(uh.order, signature)

	if len(uh.order) > historyCapacity {
		for _, old := range uh.order[:historyEvict] {
			delete(uh.seen, old)
		}
		uh.order = append(uh.order[:0], uh.order[historyEvict:]...)
	}
}

// Size returns the number of remembered swaps for a user.
func (h *DeliveryHistory) Size(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if uh, ok := h.users[userID]; ok {
		return len(uh.order)
	}
	return 0
}
