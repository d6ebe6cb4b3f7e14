package push

import "strings"

// TopicKind names one stream family on the push channel. Seat and price
// updates feed the reconciliation engine; flight status and booking
// confirmations are consumed by the surrounding pages.
type TopicKind string

const (
	TopicSeatUpdates          TopicKind = "seat-updates"
	TopicPriceUpdates         TopicKind = "flight-price-updates"
	TopicFlightStatus         TopicKind = "flight-status-updates"
	TopicBookingConfirmations TopicKind = "booking-confirmations"
)

// Key identifies one subscription: a topic kind scoped to an entity
// (flight id, user id). Subscriptions are unique per key.
type Key struct {
	Kind     TopicKind
	EntityID string
}

// Topic renders the channel name, e.g. "seat-updates/flight-42".
func (k Key) Topic() string {
	return string(k.Kind) + "/" + k.EntityID
}

func keyFromTopic(topic string) (Key, bool) {
	idx := strings.LastIndex(topic, "/")
	if idx <= 0 || idx == len(topic)-1 {
		return Key{}, false
	}
	return Key{Kind: TopicKind(topic[:idx]), EntityID: topic[idx+1:]}, true
}
