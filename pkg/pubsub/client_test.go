package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/discope/discope-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	assert.Equal(t, "projects/discope/topics/bookings", TopicResourceName("discope", "bookings"))
	assert.Equal(t, "projects/other/topics/x", TopicResourceName("discope", "projects/other/topics/x"))
	assert.Equal(t, "", TopicResourceName("", "bookings"))
	assert.Equal(t, "", TopicResourceName("discope", "  "))
}

func TestTopicNamesDeduplicates(t *testing.T) {
	names := TopicNames(config.PubSubConfig{BookingsTopic: "events", PaymentsTopic: " events "})
	assert.Equal(t, []string{"events"}, names)

	names = TopicNames(config.PubSubConfig{BookingsTopic: "bookings", PaymentsTopic: "payments"})
	assert.Equal(t, []string{"bookings", "payments"}, names)
}
