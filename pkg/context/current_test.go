package context

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
)

func TestCurrent(t *testing.T) {
	RegisterTestingT(t)

	current := NewCurrent()
	current.Set(RequestIDKey, "req-1")
	current.Set("attempt", 2)

	Expect(current.RequestID()).To(Equal("req-1"))
	Expect(current.Exists("attempt")).To(BeTrue())

	_, ok := current.GetString("attempt")
	Expect(ok).To(BeFalse())

	all := current.All()
	all["mutated"] = true
	Expect(current.Exists("mutated")).To(BeFalse())
}

func TestCurrentFromContext(t *testing.T) {
	RegisterTestingT(t)

	current := NewCurrent()
	ctx := WithCurrent(context.Background(), current)

	found, ok := FromContext(ctx)
	Expect(ok).To(BeTrue())
	Expect(found).To(BeIdenticalTo(current))

	Expect(GetCurrent(context.Background())).NotTo(BeNil())
}
