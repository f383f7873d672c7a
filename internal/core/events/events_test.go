package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectPrefix(t *testing.T) {
	p := &NATSPublisher{prefix: "realty"}
	assert.Equal(t, "realty.listing.created", p.Subject(ListingCreated))
	p.prefix = ""
	assert.Equal(t, "inquiry.created", p.Subject(InquiryCreated))
}

func TestRecorderAndNop(t *testing.T) {
	var r Recorder
	_ = r.Publish(context.Background(), CustomerCreated, map[string]string{"id": "1"})
	_ = r.Publish(context.Background(), CustomerLinked, nil)
	assert.Equal(t, []string{CustomerCreated, CustomerLinked}, r.Subjects())
	assert.NoError(t, Nop{}.Publish(context.Background(), ListingDeleted, nil))
}
