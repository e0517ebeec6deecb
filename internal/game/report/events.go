package report

import (
	"sync"
)

// EventType indicates the category of a semantic log entry.
type EventType string

const (
	// Setup
	EventPlayersEstablished EventType = "PLAYERS_ESTABLISHED"
	EventFactionAssigned    EventType = "FACTION_ASSIGNED"
	EventTraitorsDealt      EventType = "TRAITORS_DEALT"
	EventTraitorSelected    EventType = "TRAITOR_SELECTED"
	EventPredictionMade     EventType = "PREDICTION_MADE"
	EventForcesPlaced       EventType = "FORCES_PLACED"
	EventStartingHandsDealt EventType = "STARTING_HANDS_DEALT"

	// Turn structure
	EventTurnStarted      EventType = "TURN_STARTED"
	EventMainPhaseStarted EventType = "MAIN_PHASE_STARTED"
	EventPhaseEntered     EventType = "PHASE_ENTERED"
	EventTransitionFault  EventType = "TRANSITION_FAULT"

	// Storm
	EventStormDialled      EventType = "STORM_DIALLED"
	EventStormMoved        EventType = "STORM_MOVED"
	EventStormHeld         EventType = "STORM_HELD"
	EventForcesKilledStorm EventType = "FORCES_KILLED_BY_STORM"
	EventSpiceBlownAway    EventType = "SPICE_BLOWN_AWAY"

	// Blow
	EventSpiceBlow       EventType = "SPICE_BLOW"
	EventSpiceInStorm    EventType = "SPICE_IN_STORM"
	EventWormSetAside    EventType = "WORM_SET_ASIDE"
	EventWormDevoured    EventType = "WORM_DEVOURED"
	EventMonsterRidden   EventType = "MONSTER_RIDDEN"
	EventNexus           EventType = "NEXUS"
	EventAllianceOffered EventType = "ALLIANCE_OFFERED"
	EventAllianceFormed  EventType = "ALLIANCE_FORMED"
	EventAllianceBroken  EventType = "ALLIANCE_BROKEN"

	// Charity and bidding
	EventCharityClaimed   EventType = "CHARITY_CLAIMED"
	EventCardsOnAuction   EventType = "CARDS_ON_AUCTION"
	EventAuctionAnnounced EventType = "AUCTION_ANNOUNCED"
	EventBid              EventType = "BID"
	EventPassed           EventType = "PASSED"
	EventCardWon          EventType = "CARD_WON"
	EventCardReturned     EventType = "CARD_RETURNED"
	EventBonusCardDrawn   EventType = "BONUS_CARD_DRAWN"
	EventCardDiscarded    EventType = "CARD_DISCARDED"
	EventDeckReshuffled   EventType = "DECK_RESHUFFLED"

	// Revival, shipment and movement
	EventForcesRevived EventType = "FORCES_REVIVED"
	EventLeaderRevived EventType = "LEADER_REVIVED"
	EventMomentChosen  EventType = "MOMENT_CHOSEN"
	EventShipped       EventType = "SHIPPED"
	EventAccompanied   EventType = "ACCOMPANIED"
	EventMoved         EventType = "MOVED"
	EventHajrPlayed    EventType = "HAJR_PLAYED"

	// Battle
	EventBattleStarted   EventType = "BATTLE_STARTED"
	EventBattlePlanned   EventType = "BATTLE_PLANNED"
	EventTraitorRevealed EventType = "TRAITOR_REVEALED"
	EventLeaderKilled    EventType = "LEADER_KILLED"
	EventForcesLost      EventType = "FORCES_LOST"
	EventBattleWon       EventType = "BATTLE_WON"
	EventBattleDrawn     EventType = "BATTLE_DRAWN"

	// Economy
	EventSpicePaid      EventType = "SPICE_PAID"
	EventSpiceReceived  EventType = "SPICE_RECEIVED"
	EventSpiceCollected EventType = "SPICE_COLLECTED"
	EventDonated        EventType = "DONATED"

	// End
	EventGameWon   EventType = "GAME_WON"
	EventGameEnded EventType = "GAME_ENDED"
)

// Entry is one semantic log record. Entries carry no wall-clock time so that
// replaying a command log reproduces them exactly.
type Entry struct {
	Type     EventType         `json:"type"`
	Faction  string            `json:"faction,omitempty"`
	Target   string            `json:"target,omitempty"`
	Amount   int               `json:"amount,omitempty"`
	Data     string            `json:"data,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewEntry creates an entry with common fields populated.
func NewEntry(eventType EventType, faction, target string) Entry {
	return Entry{
		Type:    eventType,
		Faction: faction,
		Target:  target,
	}
}

// NewEntryWithAmount creates an entry with an amount value.
func NewEntryWithAmount(eventType EventType, faction, target string, amount int) Entry {
	e := NewEntry(eventType, faction, target)
	e.Amount = amount
	return e
}

// With returns a copy of the entry with an extra metadata key.
func (e Entry) With(key, value string) Entry {
	meta := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	e.Metadata = meta
	return e
}

// Listener defines a callback that reacts to published entries.
type Listener func(Entry)

// TypedListener defines a callback that reacts to a specific entry type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Entry)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all entries and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific entry type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Entry)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the entry to all registered listeners synchronously.
func (bus *EventBus) Publish(entry Entry) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(entry)
	}
	for _, listener := range bus.typedListeners[entry.Type] {
		listener.Callback(entry)
	}
}

// PublishBatch publishes multiple entries in order.
func (bus *EventBus) PublishBatch(entries []Entry) {
	for _, entry := range entries {
		bus.Publish(entry)
	}
}
